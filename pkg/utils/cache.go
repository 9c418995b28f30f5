package utils

import (
	"sync"
	"time"
)

// TTLCache 进程内缓存，sync.Map 保证并发安全
// 过期条目不会立即删除，GetStale 仍可读到，用于上游失败时兜底
type TTLCache struct {
	items sync.Map
	ttl   time.Duration
	now   func() time.Time
}

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      []byte
	expiration time.Time
}

// NewTTLCache 创建缓存
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{ttl: ttl, now: time.Now}
}

// Set 写入缓存
func (c *TTLCache) Set(key string, value []byte) {
	c.items.Store(key, cacheItem{
		value:      value,
		expiration: c.now().Add(c.ttl),
	})
}

// Get 获取未过期的值
func (c *TTLCache) Get(key string) ([]byte, bool) {
	val, ok := c.items.Load(key)
	if !ok {
		return nil, false
	}
	item := val.(cacheItem)
	if c.now().After(item.expiration) {
		return nil, false
	}
	return item.value, true
}

// GetStale 获取值，忽略过期时间
func (c *TTLCache) GetStale(key string) ([]byte, bool) {
	val, ok := c.items.Load(key)
	if !ok {
		return nil, false
	}
	return val.(cacheItem).value, true
}

// Delete 删除缓存
func (c *TTLCache) Delete(key string) {
	c.items.Delete(key)
}
