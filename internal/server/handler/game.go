package handler

import (
	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/types"
)

// handleStartGame 房主开局
func (h *Handler) handleStartGame(client types.Peer, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.RoomCodePayload](msg)
	if err != nil {
		replyInvalid(client, msg)
		return
	}

	if err := h.roomManager.StartGame(roomCodeOf(client, payload.RoomCode), client.GetID()); err != nil {
		replyError(client, msg, err)
		return
	}
	ack(client, msg)
}

// handleSubmitClue 提交线索
func (h *Handler) handleSubmitClue(client types.Peer, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.SubmitCluePayload](msg)
	if err != nil {
		replyInvalid(client, msg)
		return
	}

	if err := h.roomManager.SubmitClue(roomCodeOf(client, payload.RoomCode), client.GetID(), payload.Clue); err != nil {
		replyError(client, msg, err)
		return
	}
	ack(client, msg)
}

// handleCastVote 投票
func (h *Handler) handleCastVote(client types.Peer, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.CastVotePayload](msg)
	if err != nil {
		replyInvalid(client, msg)
		return
	}

	if err := h.roomManager.CastVote(roomCodeOf(client, payload.RoomCode), client.GetID(), payload.VotedName); err != nil {
		replyError(client, msg, err)
		return
	}
	ack(client, msg)
}

// roomCodeOf 请求未带房间号时使用连接当前所在房间
func roomCodeOf(client types.Peer, requested string) string {
	if requested != "" {
		return requested
	}
	return client.GetRoom()
}
