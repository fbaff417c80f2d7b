package room

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/palemoky/impostor/internal/apperrors"
	"github.com/palemoky/impostor/internal/config"
	"github.com/palemoky/impostor/internal/game/catalog"
	"github.com/palemoky/impostor/internal/protocol"
	"github.com/palemoky/impostor/internal/protocol/codec"
	"github.com/palemoky/impostor/internal/server/storage"
	"github.com/palemoky/impostor/internal/types"
)

const (
	roomCodeLength = 5                                  // 房间号长度
	roomCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // 去掉易混淆字符

	saveQueueSize  = 32              // 快照写入队列长度
	storageTimeout = 3 * time.Second // 单次 Redis 写入超时
)

// SnapshotStore 房间快照存储
type SnapshotStore interface {
	SaveRoom(ctx context.Context, code string, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, code string) error
}

// ResultRecorder 对局结果记录（排行榜）
type ResultRecorder interface {
	RecordGameResult(ctx context.Context, name string, wasImpostor, won bool) error
}

// Settings 房间规则参数
type Settings struct {
	TurnSeconds  int           // 每回合秒数
	TickInterval time.Duration // 倒计时每跳间隔
	MinPlayers   int
	MaxPlayers   int
}

// SettingsFromConfig 从游戏配置生成房间参数
func SettingsFromConfig(cfg *config.GameConfig) Settings {
	return Settings{
		TurnSeconds:  cfg.TurnTimeout,
		TickInterval: cfg.TickInterval(),
		MinPlayers:   cfg.MinPlayers,
		MaxPlayers:   cfg.MaxPlayers,
	}
}

// Player 房间中的玩家
type Player struct {
	Client    types.Peer
	Name      string
	Character string
	Role      Role
	clue      *string // nil 表示本轮还未提交
}

// turn 当前回合
type turn struct {
	playerID  string
	remaining int
	seq       uint64
	cancel    context.CancelFunc
}

// vote 一张选票，按投票先后保存
type vote struct {
	voterID   string
	votedName string
}

// job 投递给房间 actor 的操作
type job struct {
	fn  func() error
	res chan error // 计时器的 tick 为 nil
}

// Room 游戏房间
//
// 房间状态只由 run 协程读写，所有操作都通过 exec 投递进来串行执行；
// 倒计时协程只负责投递 tick，从不直接修改状态。
type Room struct {
	Code      string    // 房间号
	CreatedAt time.Time // 创建时间

	settings Settings
	store    SnapshotStore
	recorder ResultRecorder
	onEmpty  func(*Room)

	pickImpostor func(ids []string) string

	// 以下字段只在 actor 协程内访问
	phase    Phase
	players  map[string]*Player
	order    []string // 加入顺序
	hostID   string
	category string
	secret   string
	turn     *turn
	timerSeq uint64
	votes    []vote
	closed   bool

	inbox chan job
	done  chan struct{}
	saves chan func(context.Context)

	// 供房间管理器无锁读取
	phaseView   atomic.Int32
	playersView atomic.Int32
}

// newRoom 创建房间并启动 actor
func newRoom(code string, settings Settings, store SnapshotStore, recorder ResultRecorder, onEmpty func(*Room)) *Room {
	r := &Room{
		Code:      code,
		CreatedAt: time.Now(),
		settings:  settings,
		store:     store,
		recorder:  recorder,
		onEmpty:   onEmpty,

		pickImpostor: catalog.Choice[string],

		phase:   PhaseLobby,
		players: make(map[string]*Player),
		order:   make([]string, 0, settings.MaxPlayers),
		inbox:   make(chan job),
		done:    make(chan struct{}),
	}
	if store != nil {
		r.saves = make(chan func(context.Context), saveQueueSize)
		go r.saveLoop()
	}
	go r.run()
	return r
}

// run actor 主循环
func (r *Room) run() {
	for {
		j := <-r.inbox
		err := j.fn()
		r.publish()

		if r.closed {
			close(r.done)
			if r.saves != nil {
				close(r.saves)
			}
			if r.onEmpty != nil {
				r.onEmpty(r)
			}
			if j.res != nil {
				j.res <- err
			}
			return
		}

		if j.res != nil {
			j.res <- err
		}
	}
}

// exec 在 actor 中执行 fn 并等待结果，房间已销毁时返回 ErrRoomNotFound
func (r *Room) exec(fn func() error) error {
	res := make(chan error, 1)
	select {
	case r.inbox <- job{fn: fn, res: res}:
	case <-r.done:
		return apperrors.ErrRoomNotFound
	}
	return <-res
}

// Done 房间销毁后关闭
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Phase 返回房间阶段（可在 actor 外调用）
func (r *Room) Phase() Phase {
	return Phase(r.phaseView.Load())
}

// PlayerCount 返回玩家数量（可在 actor 外调用）
func (r *Room) PlayerCount() int {
	return int(r.playersView.Load())
}

func (r *Room) publish() {
	r.phaseView.Store(int32(r.phase))
	r.playersView.Store(int32(len(r.players)))
}

// destroy 停止计时并标记销毁，actor 在本次操作结束后退出
func (r *Room) destroy() {
	if r.closed {
		return
	}
	r.stopTimer()
	r.closed = true
	r.enqueueSave(func(ctx context.Context) {
		if err := r.store.DeleteRoom(ctx, r.Code); err != nil {
			log.Printf("⚠️ 删除房间 %s 快照失败: %v", r.Code, err)
		}
	})
	log.Printf("🏠 房间 %s 已解散", r.Code)
}

// --- 消息 ---

func (r *Room) broadcast(msgType protocol.MessageType, payload any) {
	msg := codec.MustNewMessage(msgType, payload)
	for _, id := range r.order {
		if p, ok := r.players[id]; ok && p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

func (r *Room) sendTo(id string, msgType protocol.MessageType, payload any) {
	if p, ok := r.players[id]; ok && p.Client != nil {
		p.Client.SendMessage(codec.MustNewMessage(msgType, payload))
	}
}

func (r *Room) broadcastRoster() {
	r.broadcast(protocol.MsgRosterUpdate, r.rosterPayload())
}

func (r *Room) rosterPayload() protocol.RosterPayload {
	players := make([]protocol.PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		players = append(players, protocol.PlayerInfo{ID: id, Name: p.Name, Character: p.Character})
	}
	return protocol.RosterPayload{Players: players, HostID: r.hostID}
}

func (r *Room) broadcastClues() {
	clues := make([]protocol.ClueInfo, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		clues = append(clues, protocol.ClueInfo{Name: p.Name, Clue: p.clue, Character: p.Character})
	}
	r.broadcast(protocol.MsgCluesUpdate, protocol.CluesUpdatePayload{Clues: clues})
}

// --- 持久化 ---

// persist 异步保存房间快照
func (r *Room) persist() {
	if r.closed {
		return
	}
	data := r.toRoomData()
	r.enqueueSave(func(ctx context.Context) {
		if err := r.store.SaveRoom(ctx, r.Code, data); err != nil {
			log.Printf("⚠️ 保存房间 %s 快照失败: %v", r.Code, err)
		}
	})
}

func (r *Room) enqueueSave(fn func(context.Context)) {
	if r.saves == nil {
		return
	}
	select {
	case r.saves <- fn:
	default:
		log.Printf("⚠️ 房间 %s 快照队列已满，丢弃一次写入", r.Code)
	}
}

// saveLoop 按顺序写入快照，保证删除在最后一次保存之后
func (r *Room) saveLoop() {
	for fn := range r.saves {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		fn(ctx)
		cancel()
	}
}

// recordResults 异步记录本局每位玩家的胜负
func (r *Room) recordResults(results []gameResult) {
	if r.recorder == nil || len(results) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()
		for _, res := range results {
			if err := r.recorder.RecordGameResult(ctx, res.name, res.wasImpostor, res.won); err != nil {
				log.Printf("⚠️ 记录 %s 的对局结果失败: %v", res.name, err)
			}
		}
	}()
}

type gameResult struct {
	name        string
	wasImpostor bool
	won         bool
}
