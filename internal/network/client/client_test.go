package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
)

var upgrader = websocket.Upgrader{}

func echoHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer c.Close()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			break
		}
		_ = c.WriteMessage(mt, message)
	}
}

// greetingHandler 先下发 connected，再对 ping 以文本帧回复 pong
func greetingHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer c.Close()

	hello, _ := codec.EncodeJSON(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{PlayerID: "p-1"}))
	_ = c.WriteMessage(websocket.TextMessage, hello)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		msg, err := codec.DecodeBinary(data)
		if err != nil || msg.Type != protocol.MsgPing {
			continue
		}
		ping, _ := codec.ParsePayload[protocol.PingPayload](msg)
		reply := codec.NewReply(msg.ReqID, protocol.MsgPong, protocol.PongPayload{
			ClientTimestamp: ping.Timestamp,
			ServerTimestamp: time.Now().UnixMilli(),
		})
		out, _ := codec.EncodeJSON(reply)
		_ = c.WriteMessage(websocket.TextMessage, out)
	}
}

func dial(t *testing.T, h http.HandlerFunc, setup ...func(*Client)) *Client {
	t.Helper()
	s := httptest.NewServer(h)
	t.Cleanup(s.Close)

	c := NewClient("ws" + strings.TrimPrefix(s.URL, "http"))
	for _, fn := range setup {
		fn(c)
	}
	require.NoError(t, c.Connect())
	t.Cleanup(c.Close)
	return c
}

func TestClient_ConnectAndSend(t *testing.T) {
	c := dial(t, echoHandler)
	assert.True(t, c.IsConnected())

	reqID, err := c.JoinRoom("ABCDE", "Alice", "Lion")
	require.NoError(t, err)
	assert.NotEmpty(t, reqID)

	// 回显服务器原样返回二进制帧
	msg, err := c.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgJoinRoom, msg.Type)
	assert.Equal(t, reqID, msg.ReqID)

	p, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "Lion", p.Character)
}

func TestClient_UniqueRequestIDs(t *testing.T) {
	c := dial(t, echoHandler)

	a, err := c.CreateRoom()
	require.NoError(t, err)
	b, err := c.CreateRoom()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestClient_ConnectedAndLatency(t *testing.T) {
	latencies := make(chan int64, 1)
	c := dial(t, greetingHandler, func(c *Client) {
		c.OnLatencyUpdate = func(l int64) { latencies <- l }
	})

	msg, err := c.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgConnected, msg.Type)
	assert.Equal(t, "p-1", c.PlayerID())

	reqID, err := c.Ping()
	require.NoError(t, err)

	pong, err := c.ReceiveWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgPong, pong.Type)
	assert.Equal(t, reqID, pong.ReqID)

	select {
	case l := <-latencies:
		assert.GreaterOrEqual(t, l, int64(0))
	case <-time.After(time.Second):
		t.Fatal("latency not reported")
	}
}

func TestClient_SendAfterClose(t *testing.T) {
	c := dial(t, echoHandler)
	c.Close()

	assert.False(t, c.IsConnected())
	_, err := c.CreateRoom()
	assert.ErrorIs(t, err, ErrClosed)

	_, err = c.Receive()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClient_OnCloseWhenServerGoesAway(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.Close()
	}))
	defer s.Close()

	c := NewClient("ws" + strings.TrimPrefix(s.URL, "http"))
	closed := make(chan struct{})
	c.OnClose = func() { close(closed) }
	require.NoError(t, c.Connect())

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not called")
	}
	assert.False(t, c.IsConnected())
}
