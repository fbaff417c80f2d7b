package room

import (
	"log"
	"sync"
	"time"

	"github.com/palemoky/impostor/internal/apperrors"
	"github.com/palemoky/impostor/internal/types"
)

// RoomManager 房间管理器
//
// 持有 mu 时从不等待房间 actor；房间清空后由 actor 回调 remove 把自己摘掉。
type RoomManager struct {
	store       SnapshotStore
	recorder    ResultRecorder
	settings    Settings
	roomTimeout time.Duration
	rooms       map[string]*Room
	mu          sync.RWMutex
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewRoomManager 创建房间管理器，store 和 recorder 可以为 nil
func NewRoomManager(store SnapshotStore, recorder ResultRecorder, settings Settings, roomTimeout time.Duration) *RoomManager {
	rm := &RoomManager{
		store:       store,
		recorder:    recorder,
		settings:    settings,
		roomTimeout: roomTimeout,
		rooms:       make(map[string]*Room),
		stop:        make(chan struct{}),
	}

	// 启动房间清理协程
	go rm.cleanupLoop()

	return rm
}

// Stop 停止清理协程
func (rm *RoomManager) Stop() {
	rm.stopOnce.Do(func() { close(rm.stop) })
}

// CreateRoom 创建房间，创建者需要再 join 才会成为玩家
func (rm *RoomManager) CreateRoom(client types.Peer) *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	code := rm.generateRoomCode()
	room := rm.newRoomLocked(code)

	log.Printf("🏠 房间 %s 已创建 (连接 %s)", code, client.GetID())
	return room
}

func (rm *RoomManager) newRoomLocked(code string) *Room {
	room := newRoom(code, rm.settings, rm.store, rm.recorder, rm.remove)
	rm.rooms[code] = room
	return room
}

// remove 房间 actor 退出时回调
func (rm *RoomManager) remove(room *Room) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.rooms[room.Code] == room {
		delete(rm.rooms, room.Code)
	}
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[code]
}

func (rm *RoomManager) mustGetRoom(code string) (*Room, error) {
	room := rm.GetRoom(code)
	if room == nil {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

// JoinRoom 加入房间
//
// 已在别的房间时，新房间接纳成功后才离开旧房间；旧房间对局进行中不能换房。
func (rm *RoomManager) JoinRoom(client types.Peer, code, name, character string) (string, error) {
	target, err := rm.mustGetRoom(code)
	if err != nil {
		return "", err
	}

	var prev *Room
	if current := client.GetRoom(); current != "" && current != code {
		prev = rm.GetRoom(current)
		if prev != nil && prev.Phase().InGame() {
			return "", apperrors.ErrGameInProgress
		}
	}

	assigned, err := target.Join(client, name, character)
	if err != nil {
		return "", err
	}
	if prev != nil {
		_ = prev.Leave(client.GetID())
	}
	return assigned, nil
}

// CheckCharacters 返回房间已被占用的角色，房间不存在时视为没有占用
func (rm *RoomManager) CheckCharacters(code string) []string {
	room := rm.GetRoom(code)
	if room == nil {
		return []string{}
	}
	taken, err := room.Characters()
	if err != nil {
		return []string{}
	}
	return taken
}

// StartGame 开局
func (rm *RoomManager) StartGame(code, connID string) error {
	room, err := rm.mustGetRoom(code)
	if err != nil {
		return err
	}
	return room.StartGame(connID)
}

// SubmitClue 提交线索
func (rm *RoomManager) SubmitClue(code, connID, clue string) error {
	room, err := rm.mustGetRoom(code)
	if err != nil {
		return err
	}
	return room.SubmitClue(connID, clue)
}

// CastVote 投票
func (rm *RoomManager) CastVote(code, connID, votedName string) error {
	room, err := rm.mustGetRoom(code)
	if err != nil {
		return err
	}
	return room.CastVote(connID, votedName)
}

// ChatOpen 房间存在且处于投票阶段
func (rm *RoomManager) ChatOpen(code string) bool {
	room := rm.GetRoom(code)
	return room != nil && room.Phase() == PhaseVoting
}

// Chat 聊天，房间不存在时丢弃
func (rm *RoomManager) Chat(code, connID, text string) {
	if room := rm.GetRoom(code); room != nil {
		_ = room.Chat(connID, text)
	}
}

// HandleDisconnect 连接断开：从所有包含它的房间离开
func (rm *RoomManager) HandleDisconnect(client types.Peer) {
	for _, room := range rm.snapshotRooms() {
		_ = room.Leave(client.GetID())
	}
	client.SetRoom("")
}

// DestroyIfEmpty 房间没有玩家时销毁
func (rm *RoomManager) DestroyIfEmpty(code string) bool {
	room := rm.GetRoom(code)
	if room == nil {
		return false
	}
	return room.destroyIfEmpty()
}

func (r *Room) destroyIfEmpty() bool {
	destroyed := false
	_ = r.exec(func() error {
		if len(r.players) == 0 {
			r.destroy()
			destroyed = true
		}
		return nil
	})
	return destroyed
}

func (rm *RoomManager) snapshotRooms() []*Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, room := range rm.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// GetRoomCount 获取房间数量
func (rm *RoomManager) GetRoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// GetActiveGamesCount 获取进行中的对局数量（给线索或投票阶段）
func (rm *RoomManager) GetActiveGamesCount() int {
	count := 0
	for _, room := range rm.snapshotRooms() {
		if room.Phase().InGame() {
			count++
		}
	}
	return count
}
