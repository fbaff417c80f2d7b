package handler

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/sound"
	"github.com/palemoky/impostor/internal/ui/model"
)

// 服务端投票阶段名
const phaseVoting = "voting"

func handleMsgGameStarted(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.GameStartedPayload](msg)
	if err != nil {
		return nil
	}

	state := m.State()
	state.ResetRound()
	state.Role = payload.Role
	state.Category = payload.Category
	state.Secret = payload.Secret
	state.TotalPlayers = len(state.Players)

	m.SetPhase(model.PhaseClue)
	m.Input().Reset()
	m.Input().CharLimit = 60
	m.Input().Blur()
	return nil
}

func handleMsgTurnUpdate(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.TurnUpdatePayload](msg)
	if err != nil {
		return nil
	}

	state := m.State()
	wasMyTurn := state.IsMyTurn(m.PlayerID())
	state.CurrentPlayerID = payload.CurrentPlayerID
	state.CurrentPlayerName = payload.CurrentPlayerName
	state.TimeRemaining = payload.TimeRemaining
	state.CluesRemaining = payload.CluesRemaining

	if state.IsMyTurn(m.PlayerID()) {
		if !wasMyTurn {
			m.PlaySound(sound.EffectTurn)
		}
		m.Input().Reset()
		m.Input().Placeholder = "轮到你了，输入线索后按 Enter"
		m.Input().Focus()
	} else {
		m.Input().Reset()
		m.Input().Placeholder = fmt.Sprintf("等待 %s 给出线索...", payload.CurrentPlayerName)
		m.Input().Blur()
	}
	return nil
}

func handleMsgTimerTick(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.TimerTickPayload](msg)
	if err != nil {
		return nil
	}
	m.State().TimeRemaining = payload.TimeRemaining
	return nil
}

func handleMsgCluesUpdate(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.CluesUpdatePayload](msg)
	if err != nil {
		return nil
	}
	m.State().Clues = payload.Clues
	return nil
}

func handleMsgPhaseChanged(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.PhaseChangedPayload](msg)
	if err != nil || payload.Phase != phaseVoting {
		return nil
	}

	state := m.State()
	state.CurrentPlayerID = ""
	state.CurrentPlayerName = ""
	state.TimeRemaining = 0

	m.SetPhase(model.PhaseVoting)
	m.Input().Reset()
	m.Input().CharLimit = 200
	m.Input().Placeholder = "输入序号投票，或输入文字聊天"
	m.Input().Focus()
	return nil
}

func handleMsgVoteProgress(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.VoteProgressPayload](msg)
	if err != nil {
		return nil
	}
	m.State().TotalVotes = payload.TotalVotes
	m.State().TotalPlayers = payload.TotalPlayers
	return nil
}

func handleMsgReveal(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.RevealPayload](msg)
	if err != nil {
		return nil
	}

	m.State().Reveal = payload
	m.State().CurrentPlayerID = ""
	m.SetPhase(model.PhaseReveal)
	m.PlaySound(sound.EffectReveal)

	m.Input().Reset()
	m.Input().Blur()
	return nil
}
