package handler

import (
	"github.com/palemoky/impostor/internal/game/catalog"
	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/types"
)

// rejectInMaintenance 维护模式下拒绝新房间和加入
func (h *Handler) rejectInMaintenance(client types.Peer, msg *protocol.Message) bool {
	if !h.server.IsMaintenanceMode() {
		return false
	}
	sendError(client, msg, codec.NewErrorMessage(protocol.ErrCodeServerMaintenance))
	return true
}

// handleCreateRoom 处理创建房间，创建者还需要 join 才会成为玩家
func (h *Handler) handleCreateRoom(client types.Peer, msg *protocol.Message) {
	if h.rejectInMaintenance(client, msg) {
		return
	}

	room := h.roomManager.CreateRoom(client)

	client.SendMessage(codec.NewReply(msg.ReqID, protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode: room.Code,
	}))
}

// handleCheckCharacters 查询房间已被占用的角色
func (h *Handler) handleCheckCharacters(client types.Peer, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.RoomCodePayload](msg)
	if err != nil {
		replyInvalid(client, msg)
		return
	}

	client.SendMessage(codec.NewReply(msg.ReqID, protocol.MsgCharactersResult, protocol.CharactersResultPayload{
		RoomCode:   payload.RoomCode,
		Characters: catalog.Characters,
		Taken:      h.roomManager.CheckCharacters(payload.RoomCode),
	}))
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.Peer, msg *protocol.Message) {
	if h.rejectInMaintenance(client, msg) {
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		replyInvalid(client, msg)
		return
	}

	character, err := h.roomManager.JoinRoom(client, payload.RoomCode, payload.Name, payload.Character)
	if err != nil {
		replyError(client, msg, err)
		return
	}

	client.SendMessage(codec.NewReply(msg.ReqID, protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomCode:  payload.RoomCode,
		PlayerID:  client.GetID(),
		Character: character,
	}))
}
