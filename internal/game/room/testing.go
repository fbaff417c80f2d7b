//go:build !production

package room

import "time"

// TestSettings 测试用的快速参数：每跳 5ms
func TestSettings(turnSeconds int) Settings {
	return Settings{
		TurnSeconds:  turnSeconds,
		TickInterval: 5 * time.Millisecond,
		MinPlayers:   3,
		MaxPlayers:   7,
	}
}

// CreateRoomWithCode 用指定房间号创建房间
func (rm *RoomManager) CreateRoomWithCode(code string) *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.newRoomLocked(code)
}
