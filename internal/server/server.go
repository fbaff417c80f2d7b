package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/palemoky/impostor/internal/config"
	"github.com/palemoky/impostor/internal/game/room"
	"github.com/palemoky/impostor/internal/server/handler"
	"github.com/palemoky/impostor/internal/server/storage"
)

// 来源已在 admissions 中检查过
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1 << 10,
	WriteBufferSize: 1 << 10,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const (
	redisDialWait  = 5 * time.Second
	headerTimeout  = 10 * time.Second
	requestTimeout = 30 * time.Second
	idleTimeout    = time.Minute
)

func dialRedis(rc config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	ctx, cancel := context.WithTimeout(context.Background(), redisDialWait)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s 不可用: %w", rc.Addr, err)
	}
	return rdb, nil
}

// guards 连接和消息的安全检查
type guards struct {
	conn    *RateLimiter
	origin  *OriginChecker
	ip      *IPFilter
	message *MessageRateLimiter
	chat    *ChatRateLimiter
}

func newGuards(sec *config.SecurityConfig) (*guards, error) {
	ip, err := NewIPFilter(sec.AllowedIPs, sec.BlockedIPs)
	if err != nil {
		return nil, err
	}
	return &guards{
		conn:    NewRateLimiter(sec.RateLimit.MaxPerSecond, sec.RateLimit.MaxPerMinute, sec.RateLimit.BanDurationTime()),
		origin:  NewOriginChecker(sec.AllowedOrigins),
		ip:      ip,
		message: NewMessageRateLimiter(sec.MessageLimit.MaxPerSecond, sec.MessageLimit.Burst),
		chat:    NewChatRateLimiter(sec.ChatLimit.MaxPerSecond, sec.ChatLimit.MaxPerMinute, sec.ChatLimit.CooldownDuration()),
	}, nil
}

// Server 游戏服务器：WebSocket 接入、房间注册表和持久化
type Server struct {
	config      *config.Config
	redis       *redis.Client
	store       *storage.RedisStore
	roomManager *room.RoomManager
	leaderboard *storage.LeaderboardManager
	handler     *handler.Handler
	guards      *guards
	httpServer  *http.Server

	clientsMu sync.RWMutex
	clients   map[string]*Client

	maxConnections int
	semaphore      chan struct{} // 占用数即活跃连接数

	maintenanceMode atomic.Bool
	shutdownOnce    sync.Once
}

// NewServer 连接 Redis 并组装服务器
func NewServer(cfg *config.Config) (*Server, error) {
	rdb, err := dialRedis(cfg.Redis)
	if err != nil {
		return nil, err
	}

	g, err := newGuards(&cfg.Security)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("安全配置无效: %w", err)
	}

	s := &Server{
		config:         cfg,
		redis:          rdb,
		store:          storage.NewRedisStore(rdb),
		leaderboard:    storage.NewLeaderboardManager(rdb),
		guards:         g,
		clients:        make(map[string]*Client),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}
	s.roomManager = room.NewRoomManager(
		s.store,
		s.leaderboard,
		room.SettingsFromConfig(&cfg.Game),
		cfg.Game.RoomTimeoutDuration(),
	)
	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		RoomManager: s.roomManager,
		ChatLimiter: g.chat,
		Leaderboard: s.leaderboard,
	})

	sec := cfg.Security
	log.Printf("🔒 安全配置: 连接 %d/s, 消息 %d/s, 聊天 %d/s, 黑名单 %d 条, 最大连接数 %d",
		sec.RateLimit.MaxPerSecond, sec.MessageLimit.MaxPerSecond, sec.ChatLimit.MaxPerSecond, len(sec.BlockedIPs), cfg.Server.MaxConnections)
	log.Printf("🎲 游戏配置: 每回合 %ds, %d-%d 人", cfg.Game.TurnTimeout, cfg.Game.MinPlayers, cfg.Game.MaxPlayers)

	return s, nil
}

// Routes 返回 HTTP 路由
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("GET /rooms", s.handleListRooms)
	mux.HandleFunc("GET /rooms/{code}", s.handleRoomSnapshot)
	if dir := s.config.Server.StaticDir; dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}
	return mux
}

// Start 阻塞直到 Shutdown
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: headerTimeout,
		ReadTimeout:       requestTimeout,
		WriteTimeout:      requestTimeout,
		IdleTimeout:       idleTimeout,
	}
	go s.monitorStats()

	log.Printf("🚀 监听 ws://%s/ws (CPU: %d)", addr, runtime.NumCPU())
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RoomManager 返回房间管理器
func (s *Server) RoomManager() *room.RoomManager {
	return s.roomManager
}
