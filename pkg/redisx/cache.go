package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyGeo 地理数据缓存: geo:{kind}:{arg}
const KeyGeo = "geo:%s"

// staleFactor 过期后仍保留的倍数，用于上游失败时兜底
const staleFactor = 4

// envelope 缓存值与新鲜截止时间
type envelope struct {
	Value      json.RawMessage `json:"v"`
	FreshUntil time.Time       `json:"f"`
}

// StaleCache 带"过期可读"语义的 redis 缓存
type StaleCache struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

// NewStaleCache 创建缓存
func NewStaleCache(rdb *redis.Client, ttl time.Duration) *StaleCache {
	return &StaleCache{rdb: rdb, ttl: ttl, now: time.Now}
}

// Get 返回值、是否新鲜、是否存在
func (c *StaleCache) Get(ctx context.Context, key string) ([]byte, bool, bool) {
	raw, err := c.rdb.Get(ctx, fmt.Sprintf(KeyGeo, key)).Bytes()
	if err != nil {
		return nil, false, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, false
	}
	return env.Value, c.now().Before(env.FreshUntil), true
}

// Set 写入 JSON 值
func (c *StaleCache) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return errors.New("redisx: cache value must be valid JSON")
	}
	raw, err := json.Marshal(envelope{Value: value, FreshUntil: c.now().Add(c.ttl)})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf(KeyGeo, key), raw, c.ttl*staleFactor).Err()
}
