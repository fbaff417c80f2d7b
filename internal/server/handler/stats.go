package handler

import (
	"context"
	"strings"
	"time"

	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/types"
)

const (
	queryTimeout       = 3 * time.Second
	defaultBoardLimit  = 10
	maxBoardLimit      = 50
	defaultBoardPeriod = "total"
)

// --- 排行榜处理 ---

// handleGetStats 获取某个昵称的统计
func (h *Handler) handleGetStats(client types.Peer, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GetStatsPayload](msg)
	if err != nil {
		replyInvalid(client, msg)
		return
	}
	name := strings.TrimSpace(payload.Name)

	if h.leaderboard == nil {
		client.SendMessage(codec.NewReply(msg.ReqID, protocol.MsgStatsResult, protocol.StatsResultPayload{Name: name}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	playerStats, err := h.leaderboard.GetPlayerStats(ctx, name)
	if err != nil {
		sendError(client, msg, codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "failed to load stats"))
		return
	}

	if playerStats == nil {
		// 没有统计数据，返回空数据
		client.SendMessage(codec.NewReply(msg.ReqID, protocol.MsgStatsResult, protocol.StatsResultPayload{Name: name}))
		return
	}

	// 获取排名
	rank, _ := h.leaderboard.GetPlayerRank(ctx, name)

	client.SendMessage(codec.NewReply(msg.ReqID, protocol.MsgStatsResult, protocol.StatsResultPayload{
		Name:              playerStats.Name,
		TotalGames:        playerStats.TotalGames,
		Wins:              playerStats.Wins,
		Losses:            playerStats.Losses,
		WinRate:           playerStats.WinRate(),
		ImpostorGames:     playerStats.ImpostorGames,
		ImpostorWins:      playerStats.ImpostorWins,
		InvestigatorGames: playerStats.InvestigatorGames,
		InvestigatorWins:  playerStats.InvestigatorWins,
		Score:             playerStats.Score,
		Rank:              int(rank),
		CurrentStreak:     playerStats.CurrentStreak,
		MaxWinStreak:      playerStats.MaxWinStreak,
	}))
}

// handleGetLeaderboard 获取排行榜
func (h *Handler) handleGetLeaderboard(client types.Peer, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		// 默认获取总排行榜前 10
		payload = &protocol.GetLeaderboardPayload{Type: defaultBoardPeriod, Limit: defaultBoardLimit}
	}

	// 限制请求数量
	if payload.Limit <= 0 || payload.Limit > maxBoardLimit {
		payload.Limit = defaultBoardLimit
	}
	if payload.Type == "" {
		payload.Type = defaultBoardPeriod
	}

	protocolEntries := make([]protocol.LeaderboardEntry, 0, payload.Limit)
	if h.leaderboard != nil {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()

		entries, err := h.leaderboard.GetLeaderboard(ctx, payload.Type, payload.Limit)
		if err != nil {
			sendError(client, msg, codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "failed to load leaderboard"))
			return
		}

		// 转换为协议格式
		for _, entry := range entries {
			protocolEntries = append(protocolEntries, protocol.LeaderboardEntry{
				Rank:    entry.Rank,
				Name:    entry.Name,
				Score:   entry.Score,
				Wins:    entry.Wins,
				WinRate: entry.WinRate,
			})
		}
	}

	client.SendMessage(codec.NewReply(msg.ReqID, protocol.MsgLeaderboardResult, protocol.LeaderboardResultPayload{
		Type:    payload.Type,
		Entries: protocolEntries,
	}))
}
