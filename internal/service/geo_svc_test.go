package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teamwear_shop/pkg/georef"
	"teamwear_shop/pkg/utils"
)

type fakeGeoSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *fakeGeoSource) Provinces(context.Context) ([]georef.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []georef.Entity{{ID: "06", Nombre: "Buenos Aires"}, {ID: "14", Nombre: "Córdoba"}}, nil
}

func (s *fakeGeoSource) Localities(_ context.Context, province string) ([]georef.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []georef.Entity{{ID: "1", Nombre: "La Plata"}, {ID: "2", Nombre: province}}, nil
}

func TestGeoService_CachesFreshValues(t *testing.T) {
	source := &fakeGeoSource{}
	svc := NewGeoService(source, NewMemoryGeoCache(utils.NewTTLCache(time.Hour)), zap.NewNop())
	ctx := context.Background()

	first, err := svc.Provinces(ctx)
	require.NoError(t, err)
	second, err := svc.Provinces(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Córdoba", second[1].Nombre)
	assert.Equal(t, 1, source.calls)

	// 不同省份分别缓存，名称大小写不敏感
	_, err = svc.Localities(ctx, "Buenos Aires")
	require.NoError(t, err)
	_, err = svc.Localities(ctx, "buenos aires")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestGeoService_ServesStaleOnUpstreamError(t *testing.T) {
	source := &fakeGeoSource{}
	// 负 TTL：写入即过期
	svc := NewGeoService(source, NewMemoryGeoCache(utils.NewTTLCache(-time.Second)), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Provinces(ctx)
	require.NoError(t, err)

	source.err = errors.New("georef down")
	provinces, err := svc.Provinces(ctx)
	require.NoError(t, err)
	assert.Len(t, provinces, 2)
	assert.Equal(t, 2, source.calls)
}

func TestGeoService_ErrorWithoutCache(t *testing.T) {
	source := &fakeGeoSource{err: errors.New("georef down")}
	svc := NewGeoService(source, NewMemoryGeoCache(utils.NewTTLCache(time.Hour)), zap.NewNop())

	_, err := svc.Provinces(context.Background())
	assert.Error(t, err)

	_, err = svc.Localities(context.Background(), "  ")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}
