package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/ui/model"
)

type recordingSender struct{ created int }

func (r *recordingSender) CreateRoom() (string, error)                     { r.created++; return "", nil }
func (r *recordingSender) CheckCharacters(string) (string, error)          { return "", nil }
func (r *recordingSender) JoinRoom(string, string, string) (string, error) { return "", nil }
func (r *recordingSender) StartGame(string) (string, error)                { return "", nil }
func (r *recordingSender) SubmitClue(string, string) (string, error)       { return "", nil }
func (r *recordingSender) CastVote(string, string) (string, error)         { return "", nil }
func (r *recordingSender) Chat(string, string) (string, error)             { return "", nil }

func TestWire_EndToEnd(t *testing.T) {
	s := &recordingSender{}
	m := model.NewWithSender(s, "Alice")
	wire(m)
	m.EnterMenu()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Contains(t, m.View(), "创建房间")

	m.Input().SetValue("1")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, s.created)

	m.Update(model.ServerMessage{Msg: codec.MustNewMessage(protocol.MsgCharactersResult, protocol.CharactersResultPayload{
		RoomCode:   "ABCDE",
		Characters: []string{"Lion", "Wolf"},
	})})
	assert.Equal(t, model.PhaseJoin, m.Phase())
	assert.Contains(t, m.View(), "选择角色")
}
