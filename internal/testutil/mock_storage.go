//go:build !production

package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/impostor/internal/server/storage"
)

// MockLeaderboard 排行榜 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) RecordGameResult(ctx context.Context, name string, wasImpostor, won bool) error {
	args := m.Called(ctx, name, wasImpostor, won)
	return args.Error(0)
}

func (m *MockLeaderboard) GetPlayerStats(ctx context.Context, name string) (*storage.PlayerStats, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PlayerStats), args.Error(1)
}

func (m *MockLeaderboard) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaderboard) GetLeaderboard(ctx context.Context, leaderboardType string, limit int) ([]*storage.LeaderboardEntry, error) {
	args := m.Called(ctx, leaderboardType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.LeaderboardEntry), args.Error(1)
}

// GameResult 一条记录下来的对局结果
type GameResult struct {
	Name        string
	WasImpostor bool
	Won         bool
}

// RecordingLeaderboard 只记录对局结果的排行榜，并发安全
type RecordingLeaderboard struct {
	mu      sync.Mutex
	results []GameResult
}

func (r *RecordingLeaderboard) RecordGameResult(_ context.Context, name string, wasImpostor, won bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, GameResult{Name: name, WasImpostor: wasImpostor, Won: won})
	return nil
}

// Results 返回已记录结果的副本
func (r *RecordingLeaderboard) Results() []GameResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]GameResult(nil), r.results...)
}

// MemoryRoomStore 内存房间快照存储，并发安全
type MemoryRoomStore struct {
	mu    sync.Mutex
	rooms map[string]*storage.RoomData
}

// NewMemoryRoomStore 创建内存房间快照存储
func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{rooms: make(map[string]*storage.RoomData)}
}

func (s *MemoryRoomStore) SaveRoom(_ context.Context, code string, data *storage.RoomData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[code] = data
	return nil
}

func (s *MemoryRoomStore) DeleteRoom(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	return nil
}

// Get 返回房间快照
func (s *MemoryRoomStore) Get(code string) (*storage.RoomData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.rooms[code]
	return data, ok
}
