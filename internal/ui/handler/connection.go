package handler

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/ui/model"
)

func handleMsgConnected(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.ConnectedPayload](msg)
	if err != nil {
		return nil
	}
	m.SetPlayerID(payload.PlayerID)
	return nil
}

func handleMsgPong(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.PongPayload](msg)
	if err != nil || payload.ClientTimestamp == 0 {
		return nil
	}
	m.SetLatency(time.Now().UnixMilli() - payload.ClientTimestamp)
	return nil
}

func handleMsgError(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	if err != nil {
		return nil
	}

	switch payload.Code {
	case protocol.ErrCodeServerMaintenance:
		m.SetMaintenanceMode(true)
		m.SetNotification(model.NotifyMaintenance, "⚠️ 服务器维护中，暂停创建房间", false)
		return nil

	case protocol.ErrCodeRateLimit:
		return Notify(m, model.NotifyRateLimit, fmt.Sprintf("⏳ %s", payload.Message))

	case protocol.ErrCodeRoomNotFound:
		// 房间已销毁，回到菜单
		if m.Phase() == model.PhaseJoin || m.Phase() == model.PhaseMenu {
			m.EnterMenu()
		}

	case protocol.ErrCodeCharacterTaken:
		// 角色被抢先选走，刷新可选列表
		if m.Phase() == model.PhaseJoin {
			_, _ = m.Sender().CheckCharacters(m.State().RoomCode)
		}
	}

	return Notify(m, model.NotifyError, fmt.Sprintf("⚠️ %s", payload.Message))
}

func handleMsgMaintenance(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.MaintenancePayload](msg)
	if err != nil {
		return nil
	}
	m.SetMaintenanceMode(payload.Maintenance)
	if payload.Maintenance {
		m.SetNotification(model.NotifyMaintenance, "⚠️ 服务器即将维护，当前对局结束后将关闭", false)
	} else {
		m.ClearNotification(model.NotifyMaintenance)
	}
	return nil
}
