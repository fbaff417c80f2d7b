package handler

import (
	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/types"
)

// handleChat 处理聊天消息，只在投票阶段转发给房间
func (h *Handler) handleChat(client types.Peer, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ChatRequestPayload](msg)
	if err != nil {
		return
	}

	code := roomCodeOf(client, payload.RoomCode)
	if !h.roomManager.ChatOpen(code) {
		return
	}

	if h.chatLimiter != nil {
		allowed, reason := h.chatLimiter.AllowChat(client.GetID())
		if !allowed {
			sendError(client, msg, codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, reason))
			return
		}
	}

	h.roomManager.Chat(code, client.GetID(), payload.Message)
}
