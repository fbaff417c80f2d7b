package model

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/impostor/internal/network/client"
	"github.com/palemoky/impostor/internal/sound"
	"github.com/palemoky/impostor/internal/ui/common"
)

const (
	menuPlaceholder = "输入 1 创建房间，或输入房间号加入"
	menuCharLimit   = 60
)

// session 本机玩家信息
type session struct {
	id          string
	name        string
	latency     int64
	maintenance bool
}

// OnlineModel 终端客户端的 tea.Model
type OnlineModel struct {
	conn   *client.Client // 测试时为 nil
	sender Sender
	me     session

	phase   GamePhase
	connErr error

	notices [notifyKinds]*SystemNotification
	state   *RoomState
	sound   *sound.Player
	input   *textinput.Model

	width, height int

	onServer ServerMessageHandler
	onKey    KeyHandler
	render   ViewRenderer
}

// NewOnlineModel 创建连接 serverURL 的模型，name 为空时随机取名
func NewOnlineModel(serverURL, name string) *OnlineModel {
	conn := client.NewClient(serverURL)
	m := NewWithSender(conn, name)
	m.conn = conn
	return m
}

// NewWithSender 创建不持有连接的模型，请求经 s 发出
func NewWithSender(s Sender, name string) *OnlineModel {
	if name == "" {
		name = common.GenerateNickname()
	}
	in := textinput.New()
	in.Width = 40

	m := &OnlineModel{
		sender: s,
		me:     session{name: name},
		phase:  PhaseConnecting,
		state:  NewRoomState(),
		sound:  sound.NewPlayer(sound.DefaultDir),
		input:  &in,
	}
	m.resetInput()
	return m
}

func (m *OnlineModel) resetInput() {
	m.input.Reset()
	m.input.CharLimit = menuCharLimit
	m.input.Placeholder = menuPlaceholder
	m.input.Focus()
}

func (m *OnlineModel) Init() tea.Cmd {
	go func() { _ = m.sound.Init() }()

	if m.conn == nil {
		return textinput.Blink
	}
	conn := m.conn
	dial := func() tea.Msg {
		if err := conn.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
	return tea.Batch(dial, textinput.Blink)
}

// nextMessage 阻塞等待下一条服务器消息
func (m *OnlineModel) nextMessage() tea.Cmd {
	conn := m.conn
	return func() tea.Msg {
		msg, err := conn.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

func (m *OnlineModel) Phase() GamePhase         { return m.phase }
func (m *OnlineModel) SetPhase(p GamePhase)     { m.phase = p }
func (m *OnlineModel) State() *RoomState        { return m.state }
func (m *OnlineModel) Input() *textinput.Model  { return m.input }
func (m *OnlineModel) PlaySound(e sound.Effect) { m.sound.Play(e) }
func (m *OnlineModel) Width() int               { return m.width }
func (m *OnlineModel) Height() int              { return m.height }
func (m *OnlineModel) Sender() Sender           { return m.sender }

func (m *OnlineModel) PlayerID() string           { return m.me.id }
func (m *OnlineModel) SetPlayerID(id string)      { m.me.id = id }
func (m *OnlineModel) PlayerName() string         { return m.me.name }
func (m *OnlineModel) SetPlayerName(name string)  { m.me.name = name }
func (m *OnlineModel) Latency() int64             { return m.me.latency }
func (m *OnlineModel) SetLatency(ms int64)        { m.me.latency = ms }
func (m *OnlineModel) IsMaintenanceMode() bool    { return m.me.maintenance }
func (m *OnlineModel) SetMaintenanceMode(on bool) { m.me.maintenance = on }

func (m *OnlineModel) SetNotification(kind NotificationType, message string, temporary bool) {
	if kind < 0 || kind >= notifyKinds {
		return
	}
	m.notices[kind] = &SystemNotification{Message: message, Type: kind, Temporary: temporary}
}

func (m *OnlineModel) ClearNotification(kind NotificationType) {
	if kind >= 0 && kind < notifyKinds {
		m.notices[kind] = nil
	}
}

// GetCurrentNotification 返回优先级最高的通知
func (m *OnlineModel) GetCurrentNotification() *SystemNotification {
	for _, n := range m.notices {
		if n != nil {
			return n
		}
	}
	return nil
}

// EnterMenu 清空房间状态回到主菜单
func (m *OnlineModel) EnterMenu() {
	m.phase = PhaseMenu
	m.connErr = nil
	m.state.Reset()
	m.resetInput()
}

func (m *OnlineModel) SetViewRenderer(fn ViewRenderer)                 { m.render = fn }
func (m *OnlineModel) SetKeyHandler(fn KeyHandler)                     { m.onKey = fn }
func (m *OnlineModel) SetServerMessageHandler(fn ServerMessageHandler) { m.onServer = fn }

func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	add := func(c tea.Cmd) {
		if c != nil {
			cmds = append(cmds, c)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case ConnectedMsg:
		m.EnterMenu()
		m.me.id = m.conn.PlayerID()
		m.conn.StartHeartbeat()
		add(m.nextMessage())

	case ConnectionErrorMsg:
		m.phase = PhaseConnecting
		m.connErr = msg.Err

	case ClearSystemNotificationMsg:
		for kind, n := range m.notices {
			if n != nil && n.Temporary {
				m.notices[kind] = nil
			}
		}

	case ServerMessage:
		if m.onServer != nil {
			add(m.onServer(m, msg.Msg))
		}
		if m.conn != nil && m.conn.IsConnected() {
			add(m.nextMessage())
		}

	case tea.KeyMsg:
		if quit := msg.Type == tea.KeyCtrlC || (m.phase == PhaseConnecting && msg.Type == tea.KeyEsc); quit {
			m.shutdown()
			return m, tea.Quit
		}
		if m.onKey != nil {
			handled, cmd := m.onKey(m, msg)
			add(cmd)
			if handled {
				return m, tea.Batch(cmds...)
			}
		}
	}

	in, cmd := m.input.Update(msg)
	*m.input = in
	add(cmd)
	return m, tea.Batch(cmds...)
}

func (m *OnlineModel) shutdown() {
	m.sound.Close()
	if m.conn != nil {
		m.conn.Close()
	}
}

func (m *OnlineModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var body string
	switch {
	case m.phase == PhaseConnecting:
		text := "正在连接服务器..."
		if m.connErr != nil {
			text = common.ErrorStyle.Render(fmt.Sprintf("无法连接到服务器: %v\n\n按 ESC 退出", m.connErr))
		}
		body = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, text)
	case m.render != nil:
		body = m.render(m, m.phase)
	default:
		body = "View renderer not initialized"
	}
	return common.DocStyle.Render(body)
}
