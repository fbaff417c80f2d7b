package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
)

const (
	statsEvery     = 30 * time.Second
	webhookTimeout = 3 * time.Second
	httpStopWait   = 5 * time.Second
)

func (s *Server) monitorStats() {
	for range time.Tick(statsEvery) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		log.Printf("📊 [监控] 在线: %d | 房间: %d | 对局: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
			s.GetOnlineCount(), s.roomManager.GetRoomCount(), s.roomManager.GetActiveGamesCount(),
			runtime.NumGoroutine(), len(s.semaphore), s.maxConnections,
			float64(mem.Alloc)/(1<<20))
	}
}

// EnterMaintenanceMode 拒绝新连接、建房和加入，已在进行的对局不受影响
func (s *Server) EnterMaintenanceMode() {
	if s.maintenanceMode.Swap(true) {
		return
	}
	s.BroadcastToLobby(codec.MustNewMessage(protocol.MsgMaintenance, protocol.MaintenancePayload{Maintenance: true}))
	log.Println("🔧 进入维护模式")
}

func (s *Server) IsMaintenanceMode() bool {
	return s.maintenanceMode.Load()
}

// awaitGames 轮询直到没有进行中的对局或 ctx 结束，返回剩余对局数
func (s *Server) awaitGames(ctx context.Context, every time.Duration) int {
	poll := time.NewTicker(every)
	defer poll.Stop()
	for {
		active := s.roomManager.GetActiveGamesCount()
		if active == 0 {
			return 0
		}
		log.Printf("⏳ 等待 %d 个对局结束...", active)
		select {
		case <-ctx.Done():
			return s.roomManager.GetActiveGamesCount()
		case <-poll.C:
		}
	}
}

// GracefulShutdown 先进入维护模式，最多等 timeout 让对局打完，再通知并关闭
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	left := s.awaitGames(ctx, s.config.Game.ShutdownCheckIntervalDuration())
	cancel()
	if left > 0 {
		log.Printf("⚠️ 等待超时，强制结束 %d 个对局", left)
	}

	delay := s.config.Game.RoomCleanupDelayDuration()
	log.Printf("✅ 将在 %v 后关闭服务器", delay)
	s.Broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance,
		fmt.Sprintf("server shutting down in %d seconds", int(delay.Seconds()))))

	hookCtx, hookCancel := context.WithTimeout(context.Background(), webhookTimeout)
	if err := notifyShutdown(hookCtx, os.Getenv("SHUTDOWN_WEBHOOK_URL"), os.Getenv("SHUTDOWN_WEBHOOK_SECRET")); err != nil {
		log.Printf("关闭通知发送失败: %v", err)
	}
	hookCancel()

	time.Sleep(delay)
	s.Shutdown()
}

// notifyShutdown 向 webhook POST 一条 {"text": ...}，url 为空时什么都不做
func notifyShutdown(ctx context.Context, url, secret string) error {
	if url == "" {
		return nil
	}
	body, err := json.Marshal(map[string]string{"text": "impostor server has shut down gracefully"})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook 返回 %d", resp.StatusCode)
	}
	log.Println("🔔 已发送关闭通知")
	return nil
}

// Shutdown 断开所有连接并释放资源，可重复调用
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		for _, c := range s.snapshotClients() {
			c.Close()
		}
		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), httpStopWait)
			defer cancel()
			_ = s.httpServer.Shutdown(ctx)
		}
		s.roomManager.Stop()
		_ = s.redis.Close()
		log.Println("服务器已关闭")
	})
}
