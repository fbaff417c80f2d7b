package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/palemoky/impostor/internal/server/storage"
)

const inspectTimeout = 2 * time.Second

// handleListRooms 列出 Redis 中的房间快照
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), inspectTimeout)
	defer cancel()

	codes, err := s.store.GetAllRoomCodes(ctx)
	if err != nil {
		log.Printf("读取房间列表失败: %v", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}
	if codes == nil {
		codes = []string{}
	}
	writeJSON(w, map[string]any{"rooms": codes, "live": s.roomManager.GetRoomCount()})
}

// handleRoomSnapshot 返回单个房间的最新快照
func (s *Server) handleRoomSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), inspectTimeout)
	defer cancel()

	code := r.PathValue("code")
	data, err := s.store.LoadRoom(ctx, code)
	switch {
	case err != nil:
		log.Printf("读取房间 %s 快照失败: %v", code, err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	case data == nil:
		http.NotFound(w, r)
	default:
		writeJSON(w, redactRoles(data))
	}
}

// redactRoles 揭晓前不对外暴露身份
func redactRoles(data *storage.RoomData) *storage.RoomData {
	if data.Phase == "reveal" {
		return data
	}
	for i := range data.Players {
		data.Players[i].Role = ""
	}
	return data
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("写入响应失败: %v", err)
	}
}
