package room

import (
	"time"

	"github.com/palemoky/impostor/internal/server/storage"
)

// PlayerView 玩家只读视图
type PlayerView struct {
	ID        string
	Name      string
	Character string
	Role      Role
	Clue      *string
}

// Snapshot 房间只读快照
type Snapshot struct {
	Code            string
	Phase           Phase
	HostID          string
	Category        string
	Secret          string
	Players         []PlayerView // 按加入顺序
	CurrentPlayerID string
	TimeRemaining   int
	Votes           int
}

// Snapshot 获取房间快照
func (r *Room) Snapshot() (Snapshot, error) {
	var s Snapshot
	err := r.exec(func() error {
		s = r.snapshot()
		return nil
	})
	return s, err
}

func (r *Room) snapshot() Snapshot {
	s := Snapshot{
		Code:     r.Code,
		Phase:    r.phase,
		HostID:   r.hostID,
		Category: r.category,
		Secret:   r.secret,
		Players:  make([]PlayerView, 0, len(r.order)),
		Votes:    len(r.votes),
	}
	if r.turn != nil {
		s.CurrentPlayerID = r.turn.playerID
		s.TimeRemaining = r.turn.remaining
	}
	for _, id := range r.order {
		p := r.players[id]
		view := PlayerView{ID: id, Name: p.Name, Character: p.Character, Role: p.Role}
		if p.clue != nil {
			clue := *p.clue
			view.Clue = &clue
		}
		s.Players = append(s.Players, view)
	}
	return s
}

// Player 按名字查找玩家视图
func (s Snapshot) Player(name string) (PlayerView, bool) {
	for _, p := range s.Players {
		if p.Name == name {
			return p, true
		}
	}
	return PlayerView{}, false
}

// toRoomData 转换为 Redis 快照，秘密词不落盘
func (r *Room) toRoomData() *storage.RoomData {
	s := r.snapshot()
	data := &storage.RoomData{
		Code:      s.Code,
		Phase:     s.Phase.String(),
		HostID:    s.HostID,
		Category:  s.Category,
		Players:   make([]storage.PlayerData, 0, len(s.Players)),
		Order:     make([]string, 0, len(s.Players)),
		Votes:     s.Votes,
		CreatedAt: r.CreatedAt.Unix(),
		UpdatedAt: time.Now().Unix(),
	}
	for _, p := range s.Players {
		data.Players = append(data.Players, storage.PlayerData{
			ID:        p.ID,
			Name:      p.Name,
			Character: p.Character,
			Role:      p.Role.String(),
			HasClue:   p.Clue != nil,
		})
		data.Order = append(data.Order, p.ID)
	}
	return data
}
