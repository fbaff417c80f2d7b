// Package model 终端客户端的状态模型，处理器、输入和渲染通过 Model 接口访问它
package model

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/sound"
)

// GamePhase 当前所在的界面
type GamePhase int

const (
	PhaseConnecting GamePhase = iota
	PhaseMenu                 // 创建 / 加入房间
	PhaseJoin                 // 输入昵称、选择角色
	PhaseLobby                // 等待房主开局
	PhaseClue                 // 轮流给线索
	PhaseVoting               // 投票与聊天
	PhaseReveal               // 揭晓
)

// NotificationType 系统通知种类，数值越小越优先显示
type NotificationType int

const (
	NotifyError       NotificationType = iota // 临时
	NotifyRateLimit                           // 临时
	NotifyMaintenance                         // 持续到维护结束
	notifyKinds
)

// SystemNotification 状态栏上的系统通知
type SystemNotification struct {
	Message   string
	Type      NotificationType
	Temporary bool // 由 ClearSystemNotificationMsg 清除
}

// ServerMessage 收到的服务器消息
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg 连接建立
type ConnectedMsg struct{}

// ConnectionErrorMsg 连接失败或断开
type ConnectionErrorMsg struct {
	Err error
}

// ClearSystemNotificationMsg 清除临时通知
type ClearSystemNotificationMsg struct{}

// Sender 发送游戏请求，由 network/client.Client 实现，返回请求 ID
type Sender interface {
	CreateRoom() (string, error)
	CheckCharacters(roomCode string) (string, error)
	JoinRoom(roomCode, name, character string) (string, error)
	StartGame(roomCode string) (string, error)
	SubmitClue(roomCode, clue string) (string, error)
	CastVote(roomCode, votedName string) (string, error)
	Chat(roomCode, text string) (string, error)
}

// Session 本机玩家和连接信息
type Session interface {
	PlayerID() string
	SetPlayerID(string)
	PlayerName() string
	SetPlayerName(string)
	Sender() Sender
	Latency() int64
	SetLatency(int64)
	IsMaintenanceMode() bool
	SetMaintenanceMode(bool)
}

// Notifier 状态栏通知
type Notifier interface {
	SetNotification(notifyType NotificationType, message string, temporary bool)
	ClearNotification(notifyType NotificationType)
	GetCurrentNotification() *SystemNotification
}

// Model 供 handler、input、view 使用的模型视图
type Model interface {
	Session
	Notifier

	Phase() GamePhase
	SetPhase(GamePhase)
	EnterMenu()

	State() *RoomState
	Input() *textinput.Model
	PlaySound(sound.Effect)

	Width() int
	Height() int
}

// ServerMessageHandler 把服务器消息应用到模型上
type ServerMessageHandler func(m Model, msg *protocol.Message) tea.Cmd

// KeyHandler 处理按键，handled 为 true 时输入框不再收到该按键
type KeyHandler func(m Model, msg tea.KeyMsg) (handled bool, cmd tea.Cmd)

// ViewRenderer 渲染某个阶段的界面
type ViewRenderer func(m Model, phase GamePhase) string
