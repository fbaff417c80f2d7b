package handler

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/ui/model"
)

func handleMsgRoomCreated(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
	if err != nil {
		return nil
	}
	m.State().RoomCode = payload.RoomCode
	if _, err := m.Sender().CheckCharacters(payload.RoomCode); err != nil {
		return Notify(m, model.NotifyError, "⚠️ 发送请求失败: "+err.Error())
	}
	return nil
}

func handleMsgCharactersResult(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.CharactersResultPayload](msg)
	if err != nil {
		return nil
	}

	state := m.State()
	state.RoomCode = payload.RoomCode
	state.SetCharacters(payload.Characters, payload.Taken)

	if m.Phase() != model.PhaseJoin {
		m.SetPhase(model.PhaseJoin)
		m.Input().Reset()
		m.Input().CharLimit = 20
		m.Input().SetValue(m.PlayerName())
		m.Input().Placeholder = "输入昵称"
		m.Input().Focus()
	}
	return nil
}

func handleMsgRoomJoined(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.RoomJoinedPayload](msg)
	if err != nil {
		return nil
	}

	state := m.State()
	state.RoomCode = payload.RoomCode
	state.Character = payload.Character
	m.SetPlayerID(payload.PlayerID)

	m.SetPhase(model.PhaseLobby)
	m.Input().Reset()
	m.Input().Placeholder = "等待房主开局..."
	m.Input().Blur()
	return nil
}

func handleMsgRosterUpdate(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.RosterPayload](msg)
	if err != nil {
		return nil
	}
	m.State().Players = payload.Players
	m.State().HostID = payload.HostID
	return nil
}
