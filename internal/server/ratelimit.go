package server

import (
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = 10 * time.Minute // 超过该时长没有活动的记录会被清理
	limiterSweepEvery = 5 * time.Minute
)

// table 按 key 保存限流状态，所有访问都在锁内完成
type table[V any] struct {
	mu      sync.Mutex
	entries map[string]*V
	create  func() *V
}

func newTable[V any](create func() *V) *table[V] {
	return &table[V]{entries: make(map[string]*V), create: create}
}

// with 取出或创建 key 的状态后执行 fn
func (t *table[V]) with(key string, fn func(v *V)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.entries[key]
	if !ok {
		v = t.create()
		t.entries[key] = v
	}
	fn(v)
}

// peek 仅在 key 存在时执行 fn
func (t *table[V]) peek(key string, fn func(v *V)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.entries[key]; ok {
		fn(v)
	}
}

func (t *table[V]) remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}

// sweep 删除 stale 返回 true 的记录
func (t *table[V]) sweep(stale func(v *V) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for k, v := range t.entries {
		if stale(v) {
			delete(t.entries, k)
			n++
		}
	}
	return n
}

// perSecondAndMinute 同时按秒和按分钟限流，非正数表示不限
func perSecondAndMinute(maxPerSecond, maxPerMinute int) (second, minute *rate.Limiter) {
	second = rate.NewLimiter(rate.Inf, 0)
	if maxPerSecond > 0 {
		second = rate.NewLimiter(rate.Limit(maxPerSecond), maxPerSecond)
	}
	minute = rate.NewLimiter(rate.Inf, 0)
	if maxPerMinute > 0 {
		minute = rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), maxPerMinute)
	}
	return second, minute
}

// RateLimiter 按 IP 限制新连接，超限后封禁一段时间
type RateLimiter struct {
	ips    *table[ipBudget]
	banFor time.Duration
}

type ipBudget struct {
	second, minute *rate.Limiter
	lastSeen       time.Time
	bannedUntil    time.Time
}

// NewRateLimiter 创建连接限流器，并在后台定期清理闲置记录
func NewRateLimiter(maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	rl := &RateLimiter{
		banFor: banDuration,
		ips: newTable(func() *ipBudget {
			second, minute := perSecondAndMinute(maxPerSecond, maxPerMinute)
			return &ipBudget{second: second, minute: minute}
		}),
	}
	go rl.sweepLoop()
	return rl
}

// Allow 记录一次连接请求，返回是否放行
func (rl *RateLimiter) Allow(ip string) (ok bool) {
	now := time.Now()
	rl.ips.with(ip, func(b *ipBudget) {
		b.lastSeen = now
		switch {
		case now.Before(b.bannedUntil):
		case b.second.AllowN(now, 1) && b.minute.AllowN(now, 1):
			ok = true
		default:
			b.bannedUntil = now.Add(rl.banFor)
			log.Printf("⚠️ IP %s 连接过于频繁，封禁 %v", ip, rl.banFor)
		}
	})
	return ok
}

// IsBanned IP 当前是否处于封禁期
func (rl *RateLimiter) IsBanned(ip string) (banned bool) {
	rl.ips.peek(ip, func(b *ipBudget) {
		banned = time.Now().Before(b.bannedUntil)
	})
	return banned
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()
	for now := range ticker.C {
		rl.ips.sweep(func(b *ipBudget) bool {
			return now.Sub(b.lastSeen) > limiterIdleTTL && now.After(b.bannedUntil)
		})
	}
}

// MessageRateLimiter 单连接消息令牌桶，桶内令牌过半耗尽时提醒放慢
type MessageRateLimiter struct {
	conns     *table[connBudget]
	warnBelow float64
}

type connBudget struct {
	bucket  *rate.Limiter
	strikes int // 被拒次数
}

// NewMessageRateLimiter 创建消息限流器，burst 不小于每秒速率
func NewMessageRateLimiter(maxPerSecond, burst int) *MessageRateLimiter {
	burst = max(burst, maxPerSecond)
	return &MessageRateLimiter{
		warnBelow: float64(burst) / 2,
		conns: newTable(func() *connBudget {
			return &connBudget{bucket: rate.NewLimiter(rate.Limit(maxPerSecond), burst)}
		}),
	}
}

// AllowMessage 消耗一个令牌；被拒时 warning 恒为 true
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed, warning bool) {
	ml.conns.with(clientID, func(b *connBudget) {
		if !b.bucket.Allow() {
			b.strikes++
			warning = true
			return
		}
		allowed = true
		warning = b.bucket.Tokens() < ml.warnBelow
	})
	return allowed, warning
}

// GetWarningCount 连接被拒的次数
func (ml *MessageRateLimiter) GetWarningCount(clientID string) (n int) {
	ml.conns.peek(clientID, func(b *connBudget) { n = b.strikes })
	return n
}

func (ml *MessageRateLimiter) RemoveClient(clientID string) {
	ml.conns.remove(clientID)
}

// ChatRateLimiter 聊天限流：按秒、按分钟计数，触发后进入冷却
type ChatRateLimiter struct {
	players  *table[chatBudget]
	cooldown time.Duration
}

type chatBudget struct {
	second, minute *rate.Limiter
	coolUntil      time.Time
}

func NewChatRateLimiter(maxPerSecond, maxPerMinute int, cooldown time.Duration) *ChatRateLimiter {
	return &ChatRateLimiter{
		cooldown: cooldown,
		players: newTable(func() *chatBudget {
			second, minute := perSecondAndMinute(maxPerSecond, maxPerMinute)
			return &chatBudget{second: second, minute: minute}
		}),
	}
}

// AllowChat 检查能否发言，不能时返回展示给玩家的原因
func (cl *ChatRateLimiter) AllowChat(clientID string) (allowed bool, reason string) {
	now := time.Now()
	cl.players.with(clientID, func(b *chatBudget) {
		switch {
		case now.Before(b.coolUntil):
			reason = fmt.Sprintf("chat is cooling down, try again in %v", b.coolUntil.Sub(now).Round(time.Second))
		case !b.second.AllowN(now, 1):
			b.coolUntil = now.Add(cl.cooldown)
			reason = "you are chatting too fast"
		case !b.minute.AllowN(now, 1):
			b.coolUntil = now.Add(cl.cooldown)
			reason = "chat limit reached, take a break"
		default:
			allowed = true
		}
	})
	return allowed, reason
}

func (cl *ChatRateLimiter) RemoveClient(clientID string) {
	cl.players.remove(clientID)
}
