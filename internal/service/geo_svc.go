package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/pkg/georef"
	"teamwear_shop/pkg/redisx"
	"teamwear_shop/pkg/utils"
)

// ==================== 依赖接口 ====================

// GeoSource 地理数据来源
type GeoSource interface {
	Provinces(ctx context.Context) ([]georef.Entity, error)
	Localities(ctx context.Context, province string) ([]georef.Entity, error)
}

// GeoCache 地理数据缓存，fresh=false 表示已过期但仍可兜底
type GeoCache interface {
	Get(ctx context.Context, key string) (value []byte, fresh bool, ok bool)
	Set(ctx context.Context, key string, value []byte) error
}

// ==================== 缓存实现 ====================

// memoryGeoCache 进程内缓存
type memoryGeoCache struct {
	cache *utils.TTLCache
}

// NewMemoryGeoCache 基于 TTLCache 的进程内缓存
func NewMemoryGeoCache(cache *utils.TTLCache) GeoCache {
	return &memoryGeoCache{cache: cache}
}

func (c *memoryGeoCache) Get(_ context.Context, key string) ([]byte, bool, bool) {
	if v, ok := c.cache.Get(key); ok {
		return v, true, true
	}
	if v, ok := c.cache.GetStale(key); ok {
		return v, false, true
	}
	return nil, false, false
}

func (c *memoryGeoCache) Set(_ context.Context, key string, value []byte) error {
	c.cache.Set(key, value)
	return nil
}

// NewRedisGeoCache 多实例共享的 redis 缓存
func NewRedisGeoCache(cache *redisx.StaleCache) GeoCache {
	return cache
}

// ==================== GeoService 地理查询 ====================

// GeoService 省份/城镇查询，读穿缓存，上游失败时返回过期数据
type GeoService struct {
	source GeoSource
	cache  GeoCache
	group  singleflight.Group
	log    *zap.Logger
}

// NewGeoService 创建地理查询服务
func NewGeoService(source GeoSource, cache GeoCache, log *zap.Logger) *GeoService {
	return &GeoService{source: source, cache: cache, log: log}
}

// Provinces 全部省份
func (s *GeoService) Provinces(ctx context.Context) ([]dto.GeoEntity, error) {
	return s.load(ctx, "provinces", func(ctx context.Context) ([]georef.Entity, error) {
		return s.source.Provinces(ctx)
	})
}

// Localities 某省份的城镇，province 为名称或 id
func (s *GeoService) Localities(ctx context.Context, province string) ([]dto.GeoEntity, error) {
	province = strings.TrimSpace(province)
	if province == "" {
		return nil, NewValidationError("El parámetro province es obligatorio")
	}
	key := "localities:" + strings.ToLower(province)
	return s.load(ctx, key, func(ctx context.Context) ([]georef.Entity, error) {
		return s.source.Localities(ctx, province)
	})
}

func (s *GeoService) load(ctx context.Context, key string, fetch func(context.Context) ([]georef.Entity, error)) ([]dto.GeoEntity, error) {
	cached, fresh, ok := s.cache.Get(ctx, key)
	if ok && fresh {
		if entities, err := decodeGeo(cached); err == nil {
			return entities, nil
		}
	}

	// 同一 key 的并发请求只打一次上游
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		entities, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		result := make([]dto.GeoEntity, 0, len(entities))
		for _, e := range entities {
			result = append(result, dto.GeoEntity{ID: e.ID, Nombre: e.Nombre})
		}
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, raw); err != nil {
				s.log.Warn("写入地理缓存失败", zap.String("key", key), zap.Error(err))
			}
		}
		return result, nil
	})
	if err == nil {
		return v.([]dto.GeoEntity), nil
	}

	if ok {
		if entities, decErr := decodeGeo(cached); decErr == nil {
			s.log.Warn("上游地理服务失败，返回过期缓存", zap.String("key", key), zap.Error(err))
			return entities, nil
		}
	}
	return nil, fmt.Errorf("查询地理数据失败: %w", err)
}

func decodeGeo(raw []byte) ([]dto.GeoEntity, error) {
	var entities []dto.GeoEntity
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}
