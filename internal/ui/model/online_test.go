package model

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/palemoky/impostor/internal/protocol"
)

type nopSender struct{}

func (nopSender) CreateRoom() (string, error)                     { return "", nil }
func (nopSender) CheckCharacters(string) (string, error)          { return "", nil }
func (nopSender) JoinRoom(string, string, string) (string, error) { return "", nil }
func (nopSender) StartGame(string) (string, error)                { return "", nil }
func (nopSender) SubmitClue(string, string) (string, error)       { return "", nil }
func (nopSender) CastVote(string, string) (string, error)         { return "", nil }
func (nopSender) Chat(string, string) (string, error)             { return "", nil }

func TestNewWithSender_DefaultName(t *testing.T) {
	m := NewWithSender(nopSender{}, "")
	assert.NotEmpty(t, m.PlayerName())
	assert.Equal(t, PhaseConnecting, m.Phase())

	m = NewWithSender(nopSender{}, "Alice")
	assert.Equal(t, "Alice", m.PlayerName())
}

func TestOnlineModel_Notifications(t *testing.T) {
	m := NewWithSender(nopSender{}, "Alice")
	assert.Nil(t, m.GetCurrentNotification())

	m.SetNotification(NotifyMaintenance, "maintenance", false)
	m.SetNotification(NotifyError, "oops", true)
	assert.Equal(t, "oops", m.GetCurrentNotification().Message)

	m.Update(ClearSystemNotificationMsg{})
	assert.Equal(t, "maintenance", m.GetCurrentNotification().Message)
}

func TestOnlineModel_EnterMenuResetsState(t *testing.T) {
	m := NewWithSender(nopSender{}, "Alice")
	m.State().RoomCode = "ABCDE"
	m.Input().SetValue("hello")

	m.EnterMenu()

	assert.Equal(t, PhaseMenu, m.Phase())
	assert.Empty(t, m.State().RoomCode)
	assert.Empty(t, m.Input().Value())
}

func TestOnlineModel_DispatchesToInjectedHandlers(t *testing.T) {
	m := NewWithSender(nopSender{}, "Alice")
	m.EnterMenu()

	var gotMsg *protocol.Message
	m.SetServerMessageHandler(func(_ Model, msg *protocol.Message) tea.Cmd {
		gotMsg = msg
		return nil
	})
	var gotKey string
	m.SetKeyHandler(func(_ Model, msg tea.KeyMsg) (bool, tea.Cmd) {
		gotKey = msg.String()
		return true, nil
	})
	m.SetViewRenderer(func(_ Model, phase GamePhase) string {
		if phase == PhaseMenu {
			return "menu"
		}
		return "other"
	})

	m.Update(ServerMessage{Msg: &protocol.Message{Type: protocol.MsgPong}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, protocol.MsgPong, gotMsg.Type)
	assert.Equal(t, "x", gotKey)
	assert.Contains(t, m.View(), "menu")
}

func TestOnlineModel_ConnectionError(t *testing.T) {
	m := NewWithSender(nopSender{}, "Alice")
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m.Update(ConnectionErrorMsg{Err: errors.New("refused")})

	assert.Equal(t, PhaseConnecting, m.Phase())
	assert.Contains(t, m.View(), "refused")
}

func TestOnlineModel_ViewBeforeResize(t *testing.T) {
	m := NewWithSender(nopSender{}, "Alice")
	assert.Equal(t, "Loading...", m.View())
}

func TestOnlineModel_NotificationPriority(t *testing.T) {
	m := NewWithSender(nopSender{}, "Alice")
	m.SetNotification(NotificationType(99), "ignored", true)
	assert.Nil(t, m.GetCurrentNotification())

	m.SetNotification(NotifyMaintenance, "maintenance", false)
	m.SetNotification(NotifyRateLimit, "slow down", true)
	assert.Equal(t, NotifyRateLimit, m.GetCurrentNotification().Type)

	m.ClearNotification(NotifyRateLimit)
	assert.Equal(t, NotifyMaintenance, m.GetCurrentNotification().Type)

	m.Update(ClearSystemNotificationMsg{})
	assert.NotNil(t, m.GetCurrentNotification(), "persistent notices survive the timed clear")
}
