package server

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
)

// 连接参数
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	outboxSize     = 256

	maxRateWarnings = 5 // 累计超速警告超过该值后断开
)

type outFrame struct {
	payload []byte
	kind    int // websocket.TextMessage 或 websocket.BinaryMessage
}

// Client 一条玩家 WebSocket 连接
type Client struct {
	ID string
	IP string

	server *Server
	ws     *websocket.Conn
	outbox chan outFrame

	framing atomic.Int32 // 回复沿用对方最近一帧的格式

	mu     sync.RWMutex
	room   string
	closed bool
	gone   sync.Once
}

func NewClient(s *Server, ws *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		server: s,
		ws:     ws,
		outbox: make(chan outFrame, outboxSize),
	}
}

func (c *Client) Framing() codec.Framing {
	return codec.Framing(c.framing.Load())
}

func (c *Client) extendReadDeadline(string) error {
	return c.ws.SetReadDeadline(time.Now().Add(pongWait))
}

// ReadPump 读循环，返回即视为玩家断线
func (c *Client) ReadPump() {
	defer func() {
		c.disconnect()
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.extendReadDeadline("")
	c.ws.SetPongHandler(c.extendReadDeadline)

	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️ 连接 %s 读取失败: %v", c.ID, err)
			}
			return
		}
		if !c.dispatch(kind, data) {
			return
		}
	}
}

// dispatch 处理一帧，返回 false 时断开连接
func (c *Client) dispatch(kind int, data []byte) bool {
	framing := codec.FramingText
	if kind == websocket.BinaryMessage {
		framing = codec.FramingBinary
	}
	c.framing.Store(int32(framing))

	if !c.withinBudget() {
		return false
	}

	msg, err := codec.Decode(data, framing)
	if err != nil {
		log.Printf("连接 %s 发来无法解析的消息: %v", c.ID, err)
		c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return true
	}
	defer codec.PutMessage(msg)

	c.server.handler.Handle(c, msg)
	return true
}

func (c *Client) withinBudget() bool {
	limiter := c.server.guards.message
	allowed, warning := limiter.AllowMessage(c.ID)
	switch {
	case allowed && warning:
		c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "slow down"))
	case !allowed:
		log.Printf("⚠️ 连接 %s (IP: %s) 消息过于频繁", c.ID, c.IP)
		c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "too many messages"))
		if limiter.GetWarningCount(c.ID) > maxRateWarnings {
			log.Printf("🚫 连接 %s 多次超速，已断开", c.ID)
			return false
		}
	}
	return true
}

// WritePump 写循环，同时负责心跳 ping
func (c *Client) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.ws.Close()
	}()

	write := func(kind int, payload []byte) error {
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		return c.ws.WriteMessage(kind, payload)
	}

	for {
		select {
		case f, ok := <-c.outbox:
			if !ok {
				_ = write(websocket.CloseMessage, nil)
				return
			}
			if write(f.kind, f.payload) != nil {
				return
			}
		case <-ping.C:
			if write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

// SendMessage 非阻塞投递，发送队列堆满说明对端过慢，直接关闭
func (c *Client) SendMessage(msg *protocol.Message) {
	framing := c.Framing()
	payload, err := codec.Encode(msg, framing)
	if err != nil {
		log.Printf("消息 %s 编码失败: %v", msg.Type, err)
		return
	}
	f := outFrame{payload: payload, kind: websocket.TextMessage}
	if framing == codec.FramingBinary {
		f.kind = websocket.BinaryMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.outbox <- f:
	default:
		log.Printf("🐢 连接 %s 发送队列已满，关闭连接", c.ID)
		c.shut()
	}
}

func (c *Client) disconnect() {
	c.gone.Do(func() {
		c.server.roomManager.HandleDisconnect(c)
		c.server.guards.message.RemoveClient(c.ID)
		c.server.guards.chat.RemoveClient(c.ID)
		c.server.unregisterClient(c)
		c.Close()
	})
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shut()
}

// shut 调用方持有 c.mu
func (c *Client) shut() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.outbox)
}

func (c *Client) GetID() string { return c.ID }

func (c *Client) SetRoom(code string) {
	c.mu.Lock()
	c.room = code
	c.mu.Unlock()
}

func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}
