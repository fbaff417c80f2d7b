package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
)

// encodeFrame 编码为二进制帧并归还消息对象
func encodeFrame(msg *protocol.Message) []byte {
	data := codec.EncodeBinary(msg)
	codec.PutMessage(msg)
	return data
}

// request 发送带 req_id 的请求，返回 req_id 以便匹配响应
func (c *Client) request(msgType protocol.MessageType, payload any) (string, error) {
	msg, err := codec.NewMessage(msgType, payload)
	if err != nil {
		return "", err
	}
	reqID := uuid.NewString()
	msg.ReqID = reqID
	return reqID, c.SendMessage(msg)
}

// --- 便捷方法 ---

// Ping 发送心跳
func (c *Client) Ping() (string, error) {
	return c.request(protocol.MsgPing, protocol.PingPayload{Timestamp: time.Now().UnixMilli()})
}

// CreateRoom 创建房间
func (c *Client) CreateRoom() (string, error) {
	return c.request(protocol.MsgCreateRoom, nil)
}

// CheckCharacters 查询房间内可选角色
func (c *Client) CheckCharacters(roomCode string) (string, error) {
	return c.request(protocol.MsgCheckCharacters, protocol.RoomCodePayload{RoomCode: roomCode})
}

// JoinRoom 以指定名字和角色加入房间
func (c *Client) JoinRoom(roomCode, name, character string) (string, error) {
	return c.request(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode:  roomCode,
		Name:      name,
		Character: character,
	})
}

// StartGame 房主开局
func (c *Client) StartGame(roomCode string) (string, error) {
	return c.request(protocol.MsgStartGame, protocol.RoomCodePayload{RoomCode: roomCode})
}

// SubmitClue 提交线索
func (c *Client) SubmitClue(roomCode, clue string) (string, error) {
	return c.request(protocol.MsgSubmitClue, protocol.SubmitCluePayload{RoomCode: roomCode, Clue: clue})
}

// CastVote 投票
func (c *Client) CastVote(roomCode, votedName string) (string, error) {
	return c.request(protocol.MsgCastVote, protocol.CastVotePayload{RoomCode: roomCode, VotedName: votedName})
}

// Chat 发送聊天消息
func (c *Client) Chat(roomCode, text string) (string, error) {
	return c.request(protocol.MsgChat, protocol.ChatRequestPayload{RoomCode: roomCode, Message: text})
}

// GetStats 获取个人统计
func (c *Client) GetStats(name string) (string, error) {
	return c.request(protocol.MsgGetStats, protocol.GetStatsPayload{Name: name})
}

// GetLeaderboard 获取排行榜
func (c *Client) GetLeaderboard(boardType string, limit int) (string, error) {
	return c.request(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{Type: boardType, Limit: limit})
}
