package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/impostor/internal/protocol"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
	handshakeWait = 10 * time.Second
	queueSize     = 256

	heartbeatInterval = 5 * time.Second // 应用层 ping，用来测延迟
)

var (
	ErrClosed     = errors.New("client: connection closed")
	ErrBufferFull = errors.New("client: send queue full")
	ErrTimeout    = errors.New("client: receive timed out")
)

// Client 终端侧的 WebSocket 连接，上行一律用二进制帧
type Client struct {
	ServerURL string

	ws      *websocket.Conn
	outbox  chan []byte
	inbox   chan *protocol.Message
	life    context.Context
	finish  context.CancelFunc
	stopped atomic.Bool

	playerID atomic.Pointer[string]
	latency  atomic.Int64 // ms

	OnMessage       func(*protocol.Message)
	OnError         func(error)
	OnClose         func()
	OnLatencyUpdate func(ms int64)

	mu sync.RWMutex
}

func NewClient(serverURL string) *Client {
	life, finish := context.WithCancel(context.Background())
	return &Client{
		ServerURL: serverURL,
		outbox:    make(chan []byte, queueSize),
		inbox:     make(chan *protocol.Message, queueSize),
		life:      life,
		finish:    finish,
	}
}

// Connect 拨号成功后启动收发循环
func (c *Client) Connect() error {
	d := websocket.Dialer{HandshakeTimeout: handshakeWait}
	ws, _, err := d.DialContext(c.life, c.ServerURL, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()

	go c.readLoop(ws)
	go c.writeLoop(ws)
	return nil
}

func (c *Client) SendMessage(msg *protocol.Message) error {
	if c.stopped.Load() {
		return ErrClosed
	}
	select {
	case c.outbox <- encodeFrame(msg):
		return nil
	default:
		return ErrBufferFull
	}
}

// Receive 阻塞到下一条消息或连接关闭
func (c *Client) Receive() (*protocol.Message, error) {
	return c.ReceiveWithTimeout(0)
}

// ReceiveWithTimeout timeout 不大于 0 时不设超时
func (c *Client) ReceiveWithTimeout(timeout time.Duration) (*protocol.Message, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	if c.stopped.Load() {
		return nil, ErrClosed
	}
	select {
	case msg := <-c.inbox:
		return msg, nil
	case <-expired:
		return nil, ErrTimeout
	case <-c.life.Done():
		return nil, ErrClosed
	}
}

// Close 可重复调用
func (c *Client) Close() {
	if !c.stopped.CompareAndSwap(false, true) {
		return
	}
	c.finish()

	c.mu.RLock()
	ws := c.ws
	c.mu.RUnlock()
	if ws != nil {
		_ = ws.Close()
	}
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ws != nil && !c.stopped.Load()
}

// PlayerID 服务器在 connected 消息里分配的连接 ID
func (c *Client) PlayerID() string {
	if id := c.playerID.Load(); id != nil {
		return *id
	}
	return ""
}

func (c *Client) Latency() int64 { return c.latency.Load() }

// StartHeartbeat 每隔 heartbeatInterval 发一次 ping，直到连接关闭
func (c *Client) StartHeartbeat() {
	go func() {
		tick := time.NewTicker(heartbeatInterval)
		defer tick.Stop()
		for {
			select {
			case <-c.life.Done():
				return
			case <-tick.C:
				_, _ = c.Ping()
			}
		}
	}()
}
