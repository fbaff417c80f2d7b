package client

import (
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/impostor/internal/logger"
	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
)

func frameFraming(kind int) codec.Framing {
	if kind == websocket.TextMessage {
		return codec.FramingText
	}
	return codec.FramingBinary
}

// readLoop 服务器下行可能是文本帧也可能是二进制帧
func (c *Client) readLoop(ws *websocket.Conn) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.Close()
		if c.OnClose != nil {
			c.OnClose()
		}
	}()

	refresh := func(string) error { return ws.SetReadDeadline(time.Now().Add(pongWait)) }
	_ = refresh("")
	ws.SetPongHandler(refresh)

	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			unexpected := websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure)
			if unexpected && c.OnError != nil {
				c.OnError(err)
			}
			return
		}

		msg, err := codec.Decode(data, frameFraming(kind))
		if err != nil {
			log.Printf("⚠️ 丢弃无法解析的消息: %v", err)
			continue
		}
		c.track(msg)
		if c.OnMessage != nil {
			c.OnMessage(msg)
		}

		select {
		case c.inbox <- msg:
		default: // UI 跟不上时丢弃
		}
	}
}

// track 从 connected 和 pong 中提取连接 ID 与延迟
func (c *Client) track(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgConnected:
		p, err := codec.ParsePayload[protocol.ConnectedPayload](msg)
		if err == nil {
			c.playerID.Store(&p.PlayerID)
		}
	case protocol.MsgPong:
		p, err := codec.ParsePayload[protocol.PongPayload](msg)
		if err != nil || p.ClientTimestamp <= 0 {
			return
		}
		ms := time.Now().UnixMilli() - p.ClientTimestamp
		c.latency.Store(ms)
		if c.OnLatencyUpdate != nil {
			c.OnLatencyUpdate(ms)
		}
	}
}

func (c *Client) writeLoop(ws *websocket.Conn) {
	keepalive := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		keepalive.Stop()
		_ = ws.Close()
	}()

	put := func(kind int, data []byte) error {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		return ws.WriteMessage(kind, data)
	}

	for {
		select {
		case <-c.life.Done():
			_ = put(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-c.outbox:
			if put(websocket.BinaryMessage, data) != nil {
				return
			}
		case <-keepalive.C:
			if put(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}
