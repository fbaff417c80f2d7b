package handler

import (
	"context"
	"errors"
	"log"

	"github.com/palemoky/impostor/internal/apperrors"
	"github.com/palemoky/impostor/internal/game/room"
	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/server/storage"
	"github.com/palemoky/impostor/internal/types"
)

// Leaderboard 排行榜查询
type Leaderboard interface {
	GetPlayerStats(ctx context.Context, name string) (*storage.PlayerStats, error)
	GetPlayerRank(ctx context.Context, name string) (int64, error)
	GetLeaderboard(ctx context.Context, leaderboardType string, limit int) ([]*storage.LeaderboardEntry, error)
}

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerState
	RoomManager *room.RoomManager
	ChatLimiter types.ChatLimiter
	Leaderboard Leaderboard
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerState
	roomManager *room.RoomManager
	chatLimiter types.ChatLimiter
	leaderboard Leaderboard
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.Peer, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
		chatLimiter: deps.ChatLimiter,
		leaderboard: deps.Leaderboard,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgCreateRoom:      h.handleCreateRoom,
		protocol.MsgCheckCharacters: h.handleCheckCharacters,
		protocol.MsgJoinRoom:        h.handleJoinRoom,

		// 游戏操作
		protocol.MsgStartGame:  h.handleStartGame,
		protocol.MsgSubmitClue: h.handleSubmitClue,
		protocol.MsgCastVote:   h.handleCastVote,
		protocol.MsgChat:       h.handleChat,

		// 信息查询
		protocol.MsgGetStats:       h.handleGetStats,
		protocol.MsgGetLeaderboard: h.handleGetLeaderboard,
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.Peer, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Printf("⚠️  未知消息类型: '%s' (连接: %s)", msg.Type, client.GetID())
	log.Printf("    消息详情: Payload长度=%d bytes", len(msg.Payload))
	sendError(client, msg, codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// sendError 回复错误，带回请求的 req_id
func sendError(client types.Peer, req *protocol.Message, errMsg *protocol.Message) {
	errMsg.ReqID = req.ReqID
	client.SendMessage(errMsg)
}

// replyError 把业务错误转换成错误消息
func replyError(client types.Peer, req *protocol.Message, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		sendError(client, req, codec.NewErrorMessageWithText(gameErr.Code, gameErr.Message))
		return
	}
	log.Printf("⚠️ 处理 %s 失败 (连接: %s): %v", req.Type, client.GetID(), err)
	sendError(client, req, codec.NewErrorMessage(protocol.ErrCodeUnknown))
}

// replyInvalid payload 无法解析
func replyInvalid(client types.Peer, req *protocol.Message) {
	sendError(client, req, codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// ack 操作已受理
func ack(client types.Peer, req *protocol.Message) {
	client.SendMessage(codec.NewReply(req.ReqID, protocol.MsgAck, nil))
}
