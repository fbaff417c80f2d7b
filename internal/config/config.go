package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 3000
	defaultMaxConnections = 1000
	defaultRedisAddr      = "localhost:6379"
	defaultTurnTimeout    = 30
	defaultMinPlayers     = 3
	defaultMaxPlayers     = 7
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"` // 最大并发连接数
	StaticDir      string `yaml:"static_dir"`      // 静态资源目录，为空则不提供
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	TurnTimeout           int `yaml:"turn_timeout"`            // 每回合给线索的时间（秒）
	TickIntervalMs        int `yaml:"tick_interval_ms"`        // 倒计时精度（毫秒）
	MinPlayers            int `yaml:"min_players"`             // 开局最少人数
	MaxPlayers            int `yaml:"max_players"`             // 房间容量
	RoomTimeout           int `yaml:"room_timeout"`            // 空房间保留时间（分钟）
	ShutdownTimeout       int `yaml:"shutdown_timeout"`        // 优雅关闭等待对局结束的时间（秒）
	ShutdownCheckInterval int `yaml:"shutdown_check_interval"` // 优雅关闭检查间隔（秒）
	RoomCleanupDelay      int `yaml:"room_cleanup_delay"`      // 关闭前的通知延迟（秒）
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	AllowedIPs     []string           `yaml:"allowed_ips"` // 白名单，IP 或 CIDR，为空不限制
	BlockedIPs     []string           `yaml:"blocked_ips"` // 黑名单，IP 或 CIDR
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
	ChatLimit      ChatLimitConfig    `yaml:"chat_limit"`
}

// RateLimitConfig 连接速率限制（按 IP）
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 封禁时长（秒）
}

// MessageLimitConfig 单连接消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	Burst        int `yaml:"burst"`
}

// ChatLimitConfig 聊天速率限制
type ChatLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	Cooldown     int `yaml:"cooldown"` // 触发限制后的冷却时间（秒）
}

// TurnTimeoutDuration 返回回合超时时长
func (c *GameConfig) TurnTimeoutDuration() time.Duration {
	return time.Duration(c.TurnTimeout) * time.Second
}

// TickInterval 返回倒计时的 tick 间隔
func (c *GameConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// RoomTimeoutDuration 返回空房间保留时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// ShutdownTimeoutDuration 返回优雅关闭等待时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// ShutdownCheckIntervalDuration 返回优雅关闭检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// RoomCleanupDelayDuration 返回关闭前的延迟
func (c *GameConfig) RoomCleanupDelayDuration() time.Duration {
	return time.Duration(c.RoomCleanupDelay) * time.Second
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// CooldownDuration 返回聊天冷却时长
func (c *ChatLimitConfig) CooldownDuration() time.Duration {
	return time.Duration(c.Cooldown) * time.Second
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

// applyEnv 环境变量覆盖配置文件（容器部署时使用）
func (c *Config) applyEnv() {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v, ok := envInt("SERVER_PORT"); ok {
		c.Server.Port = v
	}
	if v := os.Getenv("SERVER_STATIC_DIR"); v != "" {
		c.Server.StaticDir = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v, ok := envInt("GAME_TURN_TIMEOUT"); ok {
		c.Game.TurnTimeout = v
	}
	if v, ok := envList("SECURITY_ALLOWED_ORIGINS"); ok {
		c.Security.AllowedOrigins = v
	}
	if v, ok := envList("SECURITY_BLOCKED_IPS"); ok {
		c.Security.BlockedIPs = v
	}
}

// envList 逗号分隔的列表
func envList(key string) ([]string, bool) {
	v := os.Getenv(key)
	if v == "" {
		return nil, false
	}
	items := strings.Split(v, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return items, true
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// applyDefaults 为未设置的字段填充默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}

	g := &c.Game
	if g.TurnTimeout == 0 {
		g.TurnTimeout = defaultTurnTimeout
	}
	if g.TickIntervalMs == 0 {
		g.TickIntervalMs = 1000
	}
	if g.MinPlayers == 0 {
		g.MinPlayers = defaultMinPlayers
	}
	if g.MaxPlayers == 0 {
		g.MaxPlayers = defaultMaxPlayers
	}
	if g.RoomTimeout == 0 {
		g.RoomTimeout = 10
	}
	if g.ShutdownTimeout == 0 {
		g.ShutdownTimeout = 300
	}
	if g.ShutdownCheckInterval == 0 {
		g.ShutdownCheckInterval = 10
	}
	if g.RoomCleanupDelay == 0 {
		g.RoomCleanupDelay = 5
	}

	s := &c.Security
	if len(s.AllowedOrigins) == 0 {
		s.AllowedOrigins = []string{"*"}
	}
	if s.RateLimit.MaxPerSecond == 0 {
		s.RateLimit.MaxPerSecond = 10
	}
	if s.RateLimit.MaxPerMinute == 0 {
		s.RateLimit.MaxPerMinute = 60
	}
	if s.RateLimit.BanDuration == 0 {
		s.RateLimit.BanDuration = 60
	}
	if s.MessageLimit.MaxPerSecond == 0 {
		s.MessageLimit.MaxPerSecond = 20
	}
	if s.MessageLimit.Burst == 0 {
		s.MessageLimit.Burst = s.MessageLimit.MaxPerSecond * 2
	}
	if s.ChatLimit.MaxPerSecond == 0 {
		s.ChatLimit.MaxPerSecond = 1
	}
	if s.ChatLimit.MaxPerMinute == 0 {
		s.ChatLimit.MaxPerMinute = 30
	}
	if s.ChatLimit.Cooldown == 0 {
		s.ChatLimit.Cooldown = 5
	}
}
