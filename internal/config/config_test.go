package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "impostor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_GameSection(t *testing.T) {
	path := writeConfig(t, `
game:
  turn_timeout: 45
  tick_interval_ms: 250
  min_players: 4
  max_players: 5
  room_timeout: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	g := cfg.Game
	assert.Equal(t, 45*time.Second, g.TurnTimeoutDuration())
	assert.Equal(t, 250*time.Millisecond, g.TickInterval())
	assert.Equal(t, 4, g.MinPlayers)
	assert.Equal(t, 5, g.MaxPlayers)
	assert.Equal(t, 3*time.Minute, g.RoomTimeoutDuration())
	assert.Equal(t, 300*time.Second, g.ShutdownTimeoutDuration(), "omitted fields still get defaults")
}

func TestLoad_SecuritySection(t *testing.T) {
	path := writeConfig(t, `
security:
  allowed_origins: ["https://play.impostor.test"]
  blocked_ips: ["203.0.113.0/24", "198.51.100.7"]
  rate_limit:
    max_per_second: 4
    ban_duration: 30
  message_limit:
    max_per_second: 12
  chat_limit:
    max_per_minute: 10
    cooldown: 20
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	s := cfg.Security
	assert.Equal(t, []string{"https://play.impostor.test"}, s.AllowedOrigins)
	assert.Equal(t, []string{"203.0.113.0/24", "198.51.100.7"}, s.BlockedIPs)
	assert.Empty(t, s.AllowedIPs)
	assert.Equal(t, 4, s.RateLimit.MaxPerSecond)
	assert.Equal(t, 60, s.RateLimit.MaxPerMinute)
	assert.Equal(t, 30*time.Second, s.RateLimit.BanDurationTime())
	assert.Equal(t, 24, s.MessageLimit.Burst, "burst follows the configured rate")
	assert.Equal(t, 1, s.ChatLimit.MaxPerSecond)
	assert.Equal(t, 10, s.ChatLimit.MaxPerMinute)
	assert.Equal(t, 20*time.Second, s.ChatLimit.CooldownDuration())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "absent.yaml")
		}},
		{"broken yaml", func(t *testing.T) string {
			return writeConfig(t, "game: [turn_timeout: 1")
		}},
		{"wrong type", func(t *testing.T) string {
			return writeConfig(t, "game:\n  max_players: lots\n")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.path(t))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestDefault_MatchesEmptyFile(t *testing.T) {
	fromFile, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, Default(), fromFile)
}

func TestDefault_Values(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Game.MinPlayers)
	assert.Equal(t, 7, cfg.Game.MaxPlayers)
	assert.Equal(t, 30*time.Second, cfg.Game.TurnTimeoutDuration())
	assert.Equal(t, time.Second, cfg.Game.TickInterval())
	assert.Equal(t, 10*time.Second, cfg.Game.ShutdownCheckIntervalDuration())
	assert.Equal(t, 5*time.Second, cfg.Game.RoomCleanupDelayDuration())
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 40, cfg.Security.MessageLimit.Burst)
}

func TestApplyEnv_Overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 4000
game:
  turn_timeout: 20
`)
	t.Setenv("SERVER_PORT", "5000")
	t.Setenv("SERVER_STATIC_DIR", "/srv/web")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("GAME_TURN_TIMEOUT", "90")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "https://a.test, https://b.test ,https://c.test")
	t.Setenv("SECURITY_BLOCKED_IPS", "10.0.0.0/8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, "/srv/web", cfg.Server.StaticDir)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, 90*time.Second, cfg.Game.TurnTimeoutDuration())
	assert.Equal(t, []string{"https://a.test", "https://b.test", "https://c.test"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Security.BlockedIPs)
}

func TestApplyEnv_BadNumbersKeepFileValue(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 4000\ngame:\n  turn_timeout: 20\n")
	t.Setenv("SERVER_PORT", "four-thousand")
	t.Setenv("GAME_TURN_TIMEOUT", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Game.TurnTimeout)
}

func TestDefault_UsesEnvironment(t *testing.T) {
	t.Setenv("SERVER_HOST", "127.0.0.1")

	assert.Equal(t, "127.0.0.1", Default().Server.Host)
}
