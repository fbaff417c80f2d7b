// Package handler processes server messages.
package handler

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/ui/model"
)

// 临时通知的显示时长
const notificationTTL = 3 * time.Second

// messageHandler 消息处理函数类型
type messageHandler func(m model.Model, msg *protocol.Message) tea.Cmd

// messageHandlers 消息处理器映射表
var messageHandlers = map[protocol.MessageType]messageHandler{
	// Connection
	protocol.MsgConnected:   handleMsgConnected,
	protocol.MsgPong:        handleMsgPong,
	protocol.MsgError:       handleMsgError,
	protocol.MsgAck:         func(model.Model, *protocol.Message) tea.Cmd { return nil },
	protocol.MsgMaintenance: handleMsgMaintenance,

	// Room
	protocol.MsgRoomCreated:      handleMsgRoomCreated,
	protocol.MsgCharactersResult: handleMsgCharactersResult,
	protocol.MsgRoomJoined:       handleMsgRoomJoined,
	protocol.MsgRosterUpdate:     handleMsgRosterUpdate,

	// Game
	protocol.MsgGameStarted:  handleMsgGameStarted,
	protocol.MsgTurnUpdate:   handleMsgTurnUpdate,
	protocol.MsgTimerTick:    handleMsgTimerTick,
	protocol.MsgCluesUpdate:  handleMsgCluesUpdate,
	protocol.MsgPhaseChanged: handleMsgPhaseChanged,
	protocol.MsgVoteProgress: handleMsgVoteProgress,
	protocol.MsgReveal:       handleMsgReveal,

	// Chat
	protocol.MsgChat: handleMsgChat,
}

// HandleServerMessage dispatches server messages to appropriate handlers.
func HandleServerMessage(m model.Model, msg *protocol.Message) tea.Cmd {
	if handler, ok := messageHandlers[msg.Type]; ok {
		return handler(m, msg)
	}
	return nil
}

// Notify 显示临时通知并在到期后清除
func Notify(m model.Model, notifyType model.NotificationType, text string) tea.Cmd {
	m.SetNotification(notifyType, text, true)
	return tea.Tick(notificationTTL, func(time.Time) tea.Msg {
		return model.ClearSystemNotificationMsg{}
	})
}
