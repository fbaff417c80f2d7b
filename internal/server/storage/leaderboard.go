package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statsKeyPrefix = "impostor:stats:"
	boardKeyPrefix = "impostor:board:"

	dailyBoardTTL  = 48 * time.Hour
	weeklyBoardTTL = 8 * 24 * time.Hour

	maxRecordRetries = 5 // 并发写同一玩家时 WATCH 事务的重试次数
)

// 积分规则
const (
	WinAsImpostor      = 30  // 内鬼获胜
	WinAsInvestigator  = 15  // 侦探获胜
	LoseAsImpostor     = -20 // 内鬼被抓
	LoseAsInvestigator = -10 // 侦探失败

	StreakBonus3  = 5
	StreakBonus5  = 10
	StreakBonus10 = 20
)

var ErrRecordContention = errors.New("storage: too many concurrent updates for player")

// PlayerStats 玩家统计，以 Redis hash 保存，按昵称区分
type PlayerStats struct {
	Name string `json:"name" redis:"name"`

	TotalGames int `json:"total_games" redis:"total_games"`
	Wins       int `json:"wins" redis:"wins"`
	Losses     int `json:"losses" redis:"losses"`

	ImpostorGames     int `json:"impostor_games" redis:"impostor_games"`
	ImpostorWins      int `json:"impostor_wins" redis:"impostor_wins"`
	InvestigatorGames int `json:"investigator_games" redis:"investigator_games"`
	InvestigatorWins  int `json:"investigator_wins" redis:"investigator_wins"`

	Score         int `json:"score" redis:"score"`
	CurrentStreak int `json:"current_streak" redis:"current_streak"` // 正数连胜，负数连败
	MaxWinStreak  int `json:"max_win_streak" redis:"max_win_streak"`

	LastPlayedAt int64 `json:"last_played_at" redis:"last_played_at"`
	CreatedAt    int64 `json:"created_at" redis:"created_at"`
}

// WinRate 胜率（百分比）
func (s *PlayerStats) WinRate() float64 {
	if s.TotalGames == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.TotalGames) * 100
}

type outcome struct {
	impostor bool
	won      bool
}

var basePoints = map[outcome]int{
	{impostor: true, won: true}:   WinAsImpostor,
	{impostor: true, won: false}:  LoseAsImpostor,
	{impostor: false, won: true}:  WinAsInvestigator,
	{impostor: false, won: false}: LoseAsInvestigator,
}

// 从高到低匹配
var streakBonuses = []struct{ streak, bonus int }{
	{10, StreakBonus10},
	{5, StreakBonus5},
	{3, StreakBonus3},
}

func streakBonus(streak int) int {
	for _, b := range streakBonuses {
		if streak >= b.streak {
			return b.bonus
		}
	}
	return 0
}

// record 计入一局结果，积分不低于 0
func (s *PlayerStats) record(o outcome, now time.Time) {
	if s.CreatedAt == 0 {
		s.CreatedAt = now.Unix()
	}
	s.LastPlayedAt = now.Unix()
	s.TotalGames++

	if o.impostor {
		s.ImpostorGames++
	} else {
		s.InvestigatorGames++
	}

	if o.won {
		s.Wins++
		if o.impostor {
			s.ImpostorWins++
		} else {
			s.InvestigatorWins++
		}
		s.CurrentStreak = max(1, s.CurrentStreak+1)
		s.MaxWinStreak = max(s.MaxWinStreak, s.CurrentStreak)
	} else {
		s.Losses++
		s.CurrentStreak = min(-1, s.CurrentStreak-1)
	}

	s.Score = max(0, s.Score+basePoints[o]+streakBonus(s.CurrentStreak))
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank    int     `json:"rank"`
	Name    string  `json:"name"`
	Score   int     `json:"score"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`
}

// LeaderboardManager 玩家统计和总榜/日榜/周榜
type LeaderboardManager struct {
	redis *redis.Client
}

func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client}
}

// boardKey period 为 daily、weekly，其余都视为总榜
func boardKey(period string, now time.Time) string {
	switch period {
	case "daily":
		return boardKeyPrefix + "daily:" + now.Format("2006-01-02")
	case "weekly":
		year, week := now.ISOWeek()
		return fmt.Sprintf("%sweekly:%d-W%02d", boardKeyPrefix, year, week)
	default:
		return boardKeyPrefix + "total"
	}
}

type hashGetter interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func loadStats(ctx context.Context, r hashGetter, name string) (*PlayerStats, error) {
	cmd := r.HGetAll(ctx, statsKeyPrefix+name)
	fields, err := cmd.Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	var stats PlayerStats
	if err := cmd.Scan(&stats); err != nil {
		return nil, fmt.Errorf("解析玩家 %s 的统计失败: %w", name, err)
	}
	return &stats, nil
}

// GetPlayerStats 没有记录时返回 nil, nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, name string) (*PlayerStats, error) {
	return loadStats(ctx, lm.redis, name)
}

// RecordGameResult 在 WATCH 事务内更新玩家统计和三个榜单
func (lm *LeaderboardManager) RecordGameResult(ctx context.Context, name string, wasImpostor, won bool) error {
	key := statsKeyPrefix + name
	update := func(tx *redis.Tx) error {
		stats, err := loadStats(ctx, tx, name)
		if err != nil {
			return err
		}
		if stats == nil {
			stats = &PlayerStats{Name: name}
		}
		now := time.Now()
		stats.record(outcome{impostor: wasImpostor, won: won}, now)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, stats)
			addToBoards(ctx, pipe, stats, now)
			return nil
		})
		return err
	}

	for range maxRecordRetries {
		err := lm.redis.Watch(ctx, update, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrRecordContention
}

func addToBoards(ctx context.Context, pipe redis.Pipeliner, stats *PlayerStats, now time.Time) {
	z := redis.Z{Score: float64(stats.Score), Member: stats.Name}
	pipe.ZAdd(ctx, boardKey("total", now), z)
	for period, ttl := range map[string]time.Duration{"daily": dailyBoardTTL, "weekly": weeklyBoardTTL} {
		key := boardKey(period, now)
		pipe.ZAdd(ctx, key, z)
		pipe.Expire(ctx, key, ttl)
	}
}

// GetLeaderboard 按积分从高到低返回前 limit 名，limit 非正时取 10
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, period string, limit int) ([]*LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	top, err := lm.redis.ZRevRangeWithScores(ctx, boardKey(period, time.Now()), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	pipe := lm.redis.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(top))
	for i, z := range top {
		name, _ := z.Member.(string)
		cmds[i] = pipe.HGetAll(ctx, statsKeyPrefix+name)
	}
	if len(top) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, err
		}
	}

	entries := make([]*LeaderboardEntry, 0, len(top))
	for i, z := range top {
		var stats PlayerStats
		if len(cmds[i].Val()) == 0 || cmds[i].Scan(&stats) != nil {
			continue
		}
		entries = append(entries, &LeaderboardEntry{
			Rank:    i + 1,
			Name:    stats.Name,
			Score:   int(z.Score),
			Wins:    stats.Wins,
			WinRate: stats.WinRate(),
		})
	}
	return entries, nil
}

// GetPlayerRank 总榜名次，从 1 开始，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, boardKey("total", time.Now()), name).Result()
	if errors.Is(err, redis.Nil) {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return rank + 1, nil
}
