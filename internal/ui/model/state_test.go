package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/impostor/internal/protocol"
)

func TestRoomState_Available(t *testing.T) {
	s := NewRoomState()
	s.SetCharacters([]string{"Lion", "Wolf", "Owl", "Fox"}, []string{"Wolf", "Fox"})

	assert.Equal(t, []string{"Lion", "Owl"}, s.Available())
	assert.Equal(t, "Lion", s.SelectedCharacter())
}

func TestRoomState_MoveSelectionWraps(t *testing.T) {
	s := NewRoomState()
	s.SetCharacters([]string{"Lion", "Wolf", "Owl"}, nil)

	s.MoveSelection(-1)
	assert.Equal(t, "Owl", s.SelectedCharacter())
	s.MoveSelection(1)
	assert.Equal(t, "Lion", s.SelectedCharacter())
	s.MoveSelection(4)
	assert.Equal(t, "Wolf", s.SelectedCharacter())
}

func TestRoomState_SetCharactersKeepsOwnCharacter(t *testing.T) {
	s := NewRoomState()
	s.Character = "Owl"
	s.SetCharacters([]string{"Lion", "Wolf", "Owl"}, []string{"Wolf"})

	assert.Equal(t, "Owl", s.SelectedCharacter())
}

func TestRoomState_NoneAvailable(t *testing.T) {
	s := NewRoomState()
	s.SetCharacters([]string{"Lion"}, []string{"Lion"})

	assert.Empty(t, s.SelectedCharacter())
	s.MoveSelection(1)
	assert.Empty(t, s.SelectedCharacter())
}

func TestRoomState_Roles(t *testing.T) {
	s := NewRoomState()
	s.HostID = "p1"
	s.CurrentPlayerID = "p2"
	s.Role = RoleImpostor

	assert.True(t, s.IsHost("p1"))
	assert.False(t, s.IsHost(""))
	assert.True(t, s.IsMyTurn("p2"))
	assert.False(t, s.IsMyTurn("p1"))
	assert.True(t, s.IsImpostor())
}

func TestRoomState_PlayerAt(t *testing.T) {
	s := NewRoomState()
	s.Players = []protocol.PlayerInfo{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}}

	p, ok := s.PlayerAt(2)
	require.True(t, ok)
	assert.Equal(t, "Bob", p.Name)

	_, ok = s.PlayerAt(0)
	assert.False(t, ok)
	_, ok = s.PlayerAt(3)
	assert.False(t, ok)
}

func TestRoomState_ChatHistoryLimit(t *testing.T) {
	s := NewRoomState()
	for i := range maxChatHistory + 5 {
		s.AddChat(fmt.Sprintf("msg %d", i))
	}

	require.Len(t, s.ChatHistory, maxChatHistory)
	assert.Equal(t, "msg 5", s.ChatHistory[0])
}

func TestRoomState_ResetRoundKeepsRoom(t *testing.T) {
	s := NewRoomState()
	s.RoomCode = "ABCDE"
	s.Players = []protocol.PlayerInfo{{ID: "a"}}
	s.Role = RoleImpostor
	s.VotedFor = "Bob"
	s.Reveal = &protocol.RevealPayload{Chosen: "Bob"}
	s.AddChat("hi")

	s.ResetRound()

	assert.Equal(t, "ABCDE", s.RoomCode)
	assert.Len(t, s.Players, 1)
	assert.Empty(t, s.Role)
	assert.Empty(t, s.VotedFor)
	assert.Nil(t, s.Reveal)
	assert.Empty(t, s.ChatHistory)
}
