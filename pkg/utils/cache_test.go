package utils

import (
	"testing"
	"time"
)

func TestTTLCache_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache(time.Hour)
	c.now = func() time.Time { return now }

	c.Set("provinces", []byte(`["Córdoba"]`))

	if v, ok := c.Get("provinces"); !ok || string(v) != `["Córdoba"]` {
		t.Fatalf("Get() = %q, %v", v, ok)
	}

	// 过期后 Get 取不到，GetStale 仍可取到
	now = now.Add(2 * time.Hour)
	if _, ok := c.Get("provinces"); ok {
		t.Error("过期条目不应被 Get 返回")
	}
	if _, ok := c.GetStale("provinces"); !ok {
		t.Error("GetStale 应返回过期条目")
	}

	c.Delete("provinces")
	if _, ok := c.GetStale("provinces"); ok {
		t.Error("删除后不应再返回")
	}
}
