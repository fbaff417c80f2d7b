package room

import (
	"log"
	"slices"

	"github.com/palemoky/impostor/internal/protocol"
)

// Leave 连接断开：移除玩家，处理内鬼逃跑、房主转移和回合推进，最后广播名单
//
// 连接不在房间中时什么也不做。房间空了会被销毁。
func (r *Room) Leave(connID string) error {
	return r.exec(func() error {
		p, ok := r.players[connID]
		if !ok {
			return nil
		}

		wasHost := r.hostID == connID
		wasImpostor := p.Role == RoleImpostor
		wasTurn := r.turn != nil && r.turn.playerID == connID

		delete(r.players, connID)
		r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == connID })
		r.votes = slices.DeleteFunc(r.votes, func(v vote) bool { return v.voterID == connID })
		log.Printf("👋 玩家 %s 离开房间 %s", p.Name, r.Code)

		if wasImpostor && r.phase.InGame() {
			r.impostorFled(p)
		}

		if wasHost || len(r.players) == 0 {
			r.hostID = ""
			if len(r.order) > 0 {
				r.hostID = r.order[0]
			}
		}

		switch {
		case r.phase == PhaseClue && wasTurn:
			r.nextTurn()
		case r.phase == PhaseVoting && len(r.votes) > 0 && len(r.votes) == len(r.players):
			r.resolveVotes()
		}

		if r.closed {
			return nil
		}
		r.broadcastRoster()

		if len(r.players) == 0 {
			r.destroy()
			return nil
		}
		r.persist()
		return nil
	})
}

// impostorFled 内鬼在对局中离开：直接揭晓，算侦探失败
func (r *Room) impostorFled(impostor *Player) {
	r.stopTimer()
	r.phase = PhaseReveal

	r.broadcast(protocol.MsgReveal, protocol.RevealPayload{
		Chosen:       impostor.Name,
		IsImpostor:   false,
		ImpostorName: impostor.Name,
		Secret:       r.secret,
		VoteResults:  []protocol.VoteResult{},
		RanAway:      true,
	})
	log.Printf("🏃 房间 %s 内鬼 %s 逃跑了", r.Code, impostor.Name)

	outcomes := []gameResult{{name: impostor.Name, wasImpostor: true, won: true}}
	for _, id := range r.order {
		p := r.players[id]
		outcomes = append(outcomes, gameResult{name: p.Name, wasImpostor: false, won: false})
		p.Role = RoleUnset
		p.clue = nil
	}
	r.recordResults(outcomes)
	r.votes = nil
}
