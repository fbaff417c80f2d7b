// Package input handles keyboard input processing.
package input

import (
	"strconv"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/impostor/internal/ui/handler"
	"github.com/palemoky/impostor/internal/ui/model"
)

// 房间号长度
const roomCodeLength = 5

// HandleKeyPress handles keyboard input and returns whether it was handled.
func HandleKeyPress(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch m.Phase() {
	case model.PhaseMenu:
		return handleMenuKey(m, msg)
	case model.PhaseJoin:
		return handleJoinKey(m, msg)
	case model.PhaseLobby, model.PhaseReveal:
		return handleStartKey(m, msg)
	case model.PhaseClue:
		return handleClueKey(m, msg)
	case model.PhaseVoting:
		return handleVotingKey(m, msg)
	}
	return false, nil
}

func handleMenuKey(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return true, tea.Quit
	case tea.KeyEnter:
		value := strings.ToUpper(strings.TrimSpace(m.Input().Value()))
		m.Input().Reset()

		switch {
		case value == "1":
			if m.IsMaintenanceMode() {
				return true, handler.Notify(m, model.NotifyError, "⚠️ 服务器维护中，暂停创建房间")
			}
			return true, sendOrNotify(m, func() error {
				_, err := m.Sender().CreateRoom()
				return err
			})
		case utf8.RuneCountInString(value) == roomCodeLength:
			m.State().RoomCode = value
			return true, sendOrNotify(m, func() error {
				_, err := m.Sender().CheckCharacters(value)
				return err
			})
		default:
			return true, handler.Notify(m, model.NotifyError, "⚠️ 请输入 1 或 5 位房间号")
		}
	}
	return false, nil
}

func handleJoinKey(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	state := m.State()

	switch msg.Type {
	case tea.KeyEsc:
		m.EnterMenu()
		return true, nil
	case tea.KeyLeft, tea.KeyUp:
		state.MoveSelection(-1)
		return true, nil
	case tea.KeyRight, tea.KeyDown, tea.KeyTab:
		state.MoveSelection(1)
		return true, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.Input().Value())
		if name == "" {
			return true, handler.Notify(m, model.NotifyError, "⚠️ 昵称不能为空")
		}
		character := state.SelectedCharacter()
		if character == "" {
			return true, handler.Notify(m, model.NotifyError, "⚠️ 没有可选的角色了")
		}
		m.SetPlayerName(name)
		return true, sendOrNotify(m, func() error {
			_, err := m.Sender().JoinRoom(state.RoomCode, name, character)
			return err
		})
	}
	return false, nil
}

// handleStartKey 等待与揭晓阶段，房主按 S 开局
func handleStartKey(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.Type != tea.KeyRunes || !strings.EqualFold(msg.String(), "s") {
		return true, nil
	}
	if !m.State().IsHost(m.PlayerID()) {
		return true, handler.Notify(m, model.NotifyError, "⚠️ 只有房主可以开局")
	}
	return true, sendOrNotify(m, func() error {
		_, err := m.Sender().StartGame(m.State().RoomCode)
		return err
	})
}

func handleClueKey(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	state := m.State()
	if !state.IsMyTurn(m.PlayerID()) {
		return true, nil
	}
	if msg.Type != tea.KeyEnter {
		return false, nil
	}

	clue := m.Input().Value()
	m.Input().Reset()
	m.Input().Placeholder = "线索已提交"
	m.Input().Blur()
	return true, sendOrNotify(m, func() error {
		_, err := m.Sender().SubmitClue(state.RoomCode, clue)
		return err
	})
}

// handleVotingKey 数字投票，其他文本作为聊天
func handleVotingKey(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		return false, nil
	}

	state := m.State()
	text := strings.TrimSpace(m.Input().Value())
	m.Input().Reset()
	if text == "" {
		return true, nil
	}

	if n, err := strconv.Atoi(text); err == nil {
		target, ok := state.PlayerAt(n)
		if !ok {
			return true, handler.Notify(m, model.NotifyError, "⚠️ 没有这个序号的玩家")
		}
		if state.VotedFor != "" {
			return true, handler.Notify(m, model.NotifyError, "⚠️ 你已经投过票了")
		}
		state.VotedFor = target.Name
		return true, sendOrNotify(m, func() error {
			_, err := m.Sender().CastVote(state.RoomCode, target.Name)
			return err
		})
	}

	return true, sendOrNotify(m, func() error {
		_, err := m.Sender().Chat(state.RoomCode, text)
		return err
	})
}

// sendOrNotify 发送失败时提示
func sendOrNotify(m model.Model, send func() error) tea.Cmd {
	if err := send(); err != nil {
		return handler.Notify(m, model.NotifyError, "⚠️ 发送消息失败: "+err.Error())
	}
	return nil
}
