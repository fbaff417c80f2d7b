package room

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/palemoky/impostor/internal/apperrors"
	"github.com/palemoky/impostor/internal/game/catalog"
	"github.com/palemoky/impostor/internal/protocol"
)

// StartGame 房主开局：随机内鬼、分类和秘密词，然后进入第一个回合
func (r *Room) StartGame(connID string) error {
	return r.exec(func() error {
		if _, ok := r.players[connID]; !ok {
			return apperrors.ErrNotInRoom
		}
		if connID != r.hostID {
			return apperrors.ErrNotHost
		}
		if r.phase.InGame() {
			return apperrors.ErrGameInProgress
		}
		if len(r.players) < r.settings.MinPlayers {
			return apperrors.ErrTooFewPlayers
		}

		impostorID := r.pickImpostor(r.order)
		for id, p := range r.players {
			p.Role = RoleInvestigator
			if id == impostorID {
				p.Role = RoleImpostor
			}
			p.clue = nil
		}

		r.category, r.secret = catalog.RandomSecret()
		r.votes = nil
		r.phase = PhaseClue

		for _, id := range r.order {
			p := r.players[id]
			payload := protocol.GameStartedPayload{Role: p.Role.String(), Category: r.category}
			if p.Role == RoleInvestigator {
				payload.Secret = r.secret
			}
			r.sendTo(id, protocol.MsgGameStarted, payload)
		}

		log.Printf("🎮 房间 %s 开局，%d 名玩家，分类 %s", r.Code, len(r.players), r.category)

		r.nextTurn()
		r.persist()
		return nil
	})
}

// SubmitClue 当前回合玩家提交线索，提交后立即进入下一回合
func (r *Room) SubmitClue(connID, text string) error {
	return r.exec(func() error {
		p, ok := r.players[connID]
		if !ok {
			return apperrors.ErrNotInRoom
		}
		if r.phase != PhaseClue {
			return apperrors.ErrWrongPhase
		}
		if r.turn == nil || r.turn.playerID != connID || p.clue != nil {
			return apperrors.ErrNotYourTurn
		}

		clue := normalizeClue(text)
		p.clue = &clue
		r.broadcastClues()

		r.nextTurn()
		r.persist()
		return nil
	})
}

func normalizeClue(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ClueEmpty
	}
	if runes := []rune(text); len(runes) > maxClueLength {
		text = string(runes[:maxClueLength])
	}
	return text
}

// nextTurn 从还没给线索的玩家中随机选下一位；全部给完则进入投票
func (r *Room) nextTurn() {
	r.stopTimer()

	if len(r.players) == 0 {
		r.destroy()
		return
	}

	pending := r.pendingClueIDs()
	if len(pending) == 0 {
		r.phase = PhaseVoting
		r.votes = nil
		log.Printf("🗳️ 房间 %s 进入投票阶段", r.Code)
		r.broadcast(protocol.MsgPhaseChanged, protocol.PhaseChangedPayload{Phase: PhaseVoting.String()})
		return
	}

	id := catalog.Choice(pending)
	r.timerSeq++
	r.turn = &turn{playerID: id, remaining: r.settings.TurnSeconds, seq: r.timerSeq}

	r.broadcast(protocol.MsgTurnUpdate, protocol.TurnUpdatePayload{
		CurrentPlayerID:   id,
		CurrentPlayerName: r.players[id].Name,
		TimeRemaining:     r.turn.remaining,
		CluesRemaining:    len(pending),
	})

	r.startTimer(r.turn)
}

func (r *Room) pendingClueIDs() []string {
	var pending []string
	for _, id := range r.order {
		if r.players[id].clue == nil {
			pending = append(pending, id)
		}
	}
	return pending
}

// startTimer 启动当前回合的倒计时，每跳作为一次操作投递给 actor
func (r *Room) startTimer(t *turn) {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	seq := t.seq
	tick := job{fn: func() error {
		r.tick(seq)
		return nil
	}}

	go func() {
		ticker := time.NewTicker(r.settings.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case <-ticker.C:
			}

			select {
			case r.inbox <- tick:
			case <-ctx.Done():
				return
			case <-r.done:
				return
			}
		}
	}()
}

// stopTimer 取消当前回合的倒计时
func (r *Room) stopTimer() {
	if r.turn != nil && r.turn.cancel != nil {
		r.turn.cancel()
		r.turn.cancel = nil
	}
	r.turn = nil
}

// tick 倒计时一跳；过期回合的 tick 直接忽略
func (r *Room) tick(seq uint64) {
	if r.closed || r.phase != PhaseClue || r.turn == nil || r.turn.seq != seq {
		return
	}

	r.turn.remaining--
	r.broadcast(protocol.MsgTimerTick, protocol.TimerTickPayload{TimeRemaining: r.turn.remaining})
	if r.turn.remaining > 0 {
		return
	}

	if p, ok := r.players[r.turn.playerID]; ok && p.clue == nil {
		timedOut := ClueTimedOut
		p.clue = &timedOut
		log.Printf("⏰ 房间 %s 玩家 %s 超时", r.Code, p.Name)
		r.broadcastClues()
	}

	r.nextTurn()
	r.persist()
}
