package model

import (
	"slices"

	"github.com/palemoky/impostor/internal/protocol"
)

const maxChatHistory = 50

// RoleImpostor 服务端下发的内鬼身份
const RoleImpostor = "impostor"

// RoomState 客户端视角的房间状态
type RoomState struct {
	RoomCode string

	// 角色选择
	Characters []string
	Taken      []string
	selected   int
	Character  string

	// 成员
	Players []protocol.PlayerInfo
	HostID  string

	// 本局
	Role     string
	Category string
	Secret   string

	CurrentPlayerID   string
	CurrentPlayerName string
	TimeRemaining     int
	CluesRemaining    int
	Clues             []protocol.ClueInfo

	TotalVotes   int
	TotalPlayers int
	VotedFor     string

	Reveal *protocol.RevealPayload

	ChatHistory []string
}

// NewRoomState creates an empty room state.
func NewRoomState() *RoomState {
	return &RoomState{}
}

// Reset 离开房间时清空
func (s *RoomState) Reset() {
	*s = RoomState{}
}

// ResetRound 新一局开始前清空上一局的数据
func (s *RoomState) ResetRound() {
	s.Role = ""
	s.Category = ""
	s.Secret = ""
	s.CurrentPlayerID = ""
	s.CurrentPlayerName = ""
	s.TimeRemaining = 0
	s.CluesRemaining = 0
	s.Clues = nil
	s.TotalVotes = 0
	s.TotalPlayers = 0
	s.VotedFor = ""
	s.Reveal = nil
	s.ChatHistory = nil
}

// SetCharacters 更新可选角色并把光标移到第一个可用角色
func (s *RoomState) SetCharacters(all, taken []string) {
	s.Characters = all
	s.Taken = taken
	s.selected = 0
	if available := s.Available(); len(available) > 0 && s.Character != "" {
		if i := slices.Index(available, s.Character); i >= 0 {
			s.selected = i
		}
	}
}

// Available 未被占用的角色
func (s *RoomState) Available() []string {
	out := make([]string, 0, len(s.Characters))
	for _, c := range s.Characters {
		if !slices.Contains(s.Taken, c) {
			out = append(out, c)
		}
	}
	return out
}

// SelectedCharacter 当前光标所在角色，没有可用角色时返回空
func (s *RoomState) SelectedCharacter() string {
	available := s.Available()
	if len(available) == 0 {
		return ""
	}
	return available[s.selected%len(available)]
}

// MoveSelection 循环移动角色光标
func (s *RoomState) MoveSelection(delta int) {
	n := len(s.Available())
	if n == 0 {
		return
	}
	s.selected = ((s.selected+delta)%n + n) % n
}

// IsHost 是否为房主
func (s *RoomState) IsHost(playerID string) bool {
	return playerID != "" && s.HostID == playerID
}

// IsImpostor 本地玩家是否为内鬼
func (s *RoomState) IsImpostor() bool {
	return s.Role == RoleImpostor
}

// IsMyTurn 是否轮到本地玩家
func (s *RoomState) IsMyTurn(playerID string) bool {
	return playerID != "" && s.CurrentPlayerID == playerID
}

// PlayerAt 按 1 开始的序号取玩家
func (s *RoomState) PlayerAt(n int) (protocol.PlayerInfo, bool) {
	if n < 1 || n > len(s.Players) {
		return protocol.PlayerInfo{}, false
	}
	return s.Players[n-1], true
}

// AddChat 追加聊天记录，超出上限时丢弃最早的
func (s *RoomState) AddChat(line string) {
	s.ChatHistory = append(s.ChatHistory, line)
	if len(s.ChatHistory) > maxChatHistory {
		s.ChatHistory = s.ChatHistory[len(s.ChatHistory)-maxChatHistory:]
	}
}
