package room

import (
	"log"
	"math/rand/v2"
	"time"
)

// generateRoomCode 生成房间号，重复时重新生成（调用方持有写锁）
func (rm *RoomManager) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := rm.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}

// cleanupLoop 定期清理超时房间
func (rm *RoomManager) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rm.stop:
			return
		case <-ticker.C:
			rm.cleanup()
		}
	}
}

// cleanup 清理创建后一直没人加入的房间
func (rm *RoomManager) cleanup() {
	now := time.Now()

	for _, room := range rm.snapshotRooms() {
		if room.PlayerCount() != 0 || now.Sub(room.CreatedAt) <= rm.roomTimeout {
			continue
		}
		if room.destroyIfEmpty() {
			log.Printf("🧹 房间 %s 超时无人加入，已清理", room.Code)
		}
	}
}
