package room

import (
	"log"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/palemoky/impostor/internal/apperrors"
	"github.com/palemoky/impostor/internal/protocol"
)

// CastVote 投票；不在投票阶段时静默忽略
func (r *Room) CastVote(connID, votedName string) error {
	return r.exec(func() error {
		if r.phase != PhaseVoting {
			return nil
		}
		if _, ok := r.players[connID]; !ok {
			return apperrors.ErrNotInRoom
		}
		if r.hasVoted(connID) {
			return apperrors.ErrAlreadyVoted
		}

		r.votes = append(r.votes, vote{voterID: connID, votedName: strings.TrimSpace(votedName)})
		r.broadcast(protocol.MsgVoteProgress, protocol.VoteProgressPayload{
			TotalVotes:   len(r.votes),
			TotalPlayers: len(r.players),
		})

		if len(r.votes) == len(r.players) {
			r.resolveVotes()
		}
		return nil
	})
}

func (r *Room) hasVoted(connID string) bool {
	return slices.ContainsFunc(r.votes, func(v vote) bool { return v.voterID == connID })
}

// tally 计票：得票严格最多者当选，平票时取最早被投的名字
func tally(votes []vote) (chosen string, counts map[string]int) {
	counts = make(map[string]int, len(votes))
	var firstSeen []string
	for _, v := range votes {
		if counts[v.votedName] == 0 {
			firstSeen = append(firstSeen, v.votedName)
		}
		counts[v.votedName]++
	}

	best := 0
	for _, name := range firstSeen {
		if counts[name] > best {
			best = counts[name]
			chosen = name
		}
	}
	return chosen, counts
}

// resolveVotes 全员投完后揭晓
func (r *Room) resolveVotes() {
	chosen, _ := tally(r.votes)
	chosenID, _ := r.playerByName(chosen)
	impostorID := r.impostorID()
	isImpostor := chosenID != "" && chosenID == impostorID

	results := make([]protocol.VoteResult, 0, len(r.votes))
	for _, v := range r.votes {
		voter := ""
		if p, ok := r.players[v.voterID]; ok {
			voter = p.Name
		}
		results = append(results, protocol.VoteResult{Voter: voter, Voted: v.votedName})
	}

	impostorName := ""
	if p, ok := r.players[impostorID]; ok {
		impostorName = p.Name
	}

	r.phase = PhaseReveal
	r.broadcast(protocol.MsgReveal, protocol.RevealPayload{
		Chosen:       chosen,
		IsImpostor:   isImpostor,
		ImpostorName: impostorName,
		Secret:       r.secret,
		VoteResults:  results,
	})

	if isImpostor {
		log.Printf("🎯 房间 %s 揭晓：内鬼 %s 被抓到", r.Code, impostorName)
	} else {
		log.Printf("🎭 房间 %s 揭晓：选中 %s，内鬼 %s 逃脱", r.Code, chosen, impostorName)
	}

	outcomes := make([]gameResult, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		wasImpostor := p.Role == RoleImpostor
		outcomes = append(outcomes, gameResult{name: p.Name, wasImpostor: wasImpostor, won: wasImpostor != isImpostor})
	}
	r.recordResults(outcomes)

	r.votes = nil
	r.persist()
}

func (r *Room) impostorID() string {
	for _, id := range r.order {
		if r.players[id].Role == RoleImpostor {
			return id
		}
	}
	return ""
}

// Chat 投票阶段的聊天，其余阶段或非房间成员的消息直接丢弃
func (r *Room) Chat(connID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) > maxChatLength {
		text = string([]rune(text)[:maxChatLength])
	}

	return r.exec(func() error {
		p, ok := r.players[connID]
		if !ok || r.phase != PhaseVoting {
			return nil
		}
		r.broadcast(protocol.MsgChat, protocol.ChatPayload{
			Name:      p.Name,
			Message:   text,
			Character: p.Character,
			Time:      time.Now().UnixMilli(),
		})
		return nil
	})
}
