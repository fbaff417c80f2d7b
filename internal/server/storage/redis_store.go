package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	roomKeyPrefix = "room:"
	roomTTL       = 2 * time.Hour
	scanBatch     = 100
)

// RoomData 房间快照，仅供查看，重启后不会据此恢复
type RoomData struct {
	Code      string       `json:"code"`
	Phase     string       `json:"phase"`
	HostID    string       `json:"host_id"`
	Category  string       `json:"category,omitempty"`
	Players   []PlayerData `json:"players"`
	Order     []string     `json:"order"`
	Votes     int          `json:"votes"`
	CreatedAt int64        `json:"created_at"`
	UpdatedAt int64        `json:"updated_at"`
}

// PlayerData 快照中的玩家，Role 在开局前为空
type PlayerData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Role      string `json:"role,omitempty"`
	HasClue   bool   `json:"has_clue"`
}

// RedisStore 房间快照存储
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func roomKey(code string) string { return roomKeyPrefix + code }

// SaveRoom 覆盖写入快照并刷新过期时间，nil 忽略
func (rs *RedisStore) SaveRoom(ctx context.Context, code string, data *RoomData) error {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间 %s 失败: %w", code, err)
	}
	return rs.client.Set(ctx, roomKey(code), raw, roomTTL).Err()
}

// LoadRoom 快照不存在时返回 nil, nil
func (rs *RedisStore) LoadRoom(ctx context.Context, code string) (*RoomData, error) {
	raw, err := rs.client.Get(ctx, roomKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data := new(RoomData)
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("解析房间 %s 失败: %w", code, err)
	}
	return data, nil
}

func (rs *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	return rs.client.Del(ctx, roomKey(code)).Err()
}

// GetAllRoomCodes 用 SCAN 遍历快照，返回排序后的房间号
func (rs *RedisStore) GetAllRoomCodes(ctx context.Context) ([]string, error) {
	var codes []string
	iter := rs.client.Scan(ctx, 0, roomKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		codes = append(codes, strings.TrimPrefix(iter.Val(), roomKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	slices.Sort(codes)
	return codes, nil
}
