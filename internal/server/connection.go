package server

import (
	"log"
	"net/http"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
)

// admission 一项入场检查，返回拒绝时的状态码和说明
type admission struct {
	name   string
	reject func(r *http.Request, ip string) bool
	status int
	body   string
}

// admissions 按顺序执行的入场检查，维护模式最先
func (s *Server) admissions() []admission {
	return []admission{
		{"maintenance", func(*http.Request, string) bool { return s.IsMaintenanceMode() },
			http.StatusServiceUnavailable, "Server is under maintenance, please try again later"},
		{"ip filter", func(_ *http.Request, ip string) bool { return !s.guards.ip.IsAllowed(ip) },
			http.StatusForbidden, "Forbidden"},
		{"origin", func(r *http.Request, _ string) bool { return !s.guards.origin.Check(r) },
			http.StatusForbidden, "Origin not allowed"},
		{"rate limit", func(_ *http.Request, ip string) bool { return !s.guards.conn.Allow(ip) },
			http.StatusTooManyRequests, "Too Many Requests"},
	}
}

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	for _, a := range s.admissions() {
		if a.reject(r, ip) {
			log.Printf("🚫 拒绝来自 %s 的连接: %s (Origin: %q)", ip, a.name, r.Header.Get("Origin"))
			http.Error(w, a.body, a.status)
			return
		}
	}

	// 信号量在连接断开时释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Printf("🚫 达到最大连接数限制 (%d), IP: %s", s.maxConnections, ip)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		log.Printf("WebSocket 升级失败: %v", err)
		return
	}

	client := NewClient(s, conn)
	client.IP = ip
	s.registerClient(client)
	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID: client.ID,
	}))
	log.Printf("✅ 玩家连接 %s 已建立 (IP: %s)", client.ID, ip)

	go func() {
		defer func() { <-s.semaphore }()
		client.ReadPump()
	}()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		log.Printf("❌ 连接 %s 已断开", client.ID)
	}
}

// GetClientByID 按 ID 查找在线连接
func (s *Server) GetClientByID(id string) *Client {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return s.clients[id]
}
