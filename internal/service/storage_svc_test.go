package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamwear_shop/internal/config"
)

// 1x1 透明 PNG
var tinyPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

// pngOfSize PNG 头加填充，mimetype 只看文件头
func pngOfSize(size int) []byte {
	data := make([]byte, size)
	copy(data, tinyPNG)
	return data
}

func newLocalUploadService(t *testing.T) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	provider, err := NewStorageProvider(config.StorageConfig{Provider: "local", LocalDir: dir}, "http://localhost:8080")
	require.NoError(t, err)
	svc := NewUploadService(provider)
	svc.now = func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) }
	return svc, dir
}

func TestNewStorageProvider_InvalidProvider(t *testing.T) {
	_, err := NewStorageProvider(config.StorageConfig{Provider: "ftp"}, "")
	assert.Error(t, err)

	_, err = NewStorageProvider(config.StorageConfig{Provider: "supabase"}, "")
	assert.Error(t, err, "缺少 service-role key 时应报错")
}

func TestUploadService_UploadLocal(t *testing.T) {
	svc, dir := newLocalUploadService(t)

	res, err := svc.Upload(context.Background(), pngOfSize(1<<20), "clubs")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Path, "clubs/2025/03/09/"))
	assert.True(t, strings.HasSuffix(res.Path, ".png"))
	assert.Equal(t, "http://localhost:8080/uploads/"+res.Path, res.URL)

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(res.Path)))
	require.NoError(t, err)
	assert.Len(t, stored, 1<<20)
}

func TestUploadService_DefaultFolder(t *testing.T) {
	svc, _ := newLocalUploadService(t)

	res, err := svc.Upload(context.Background(), tinyPNG, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Path, "products/"))
}

func TestUploadService_Rejections(t *testing.T) {
	svc, _ := newLocalUploadService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		data   []byte
		folder string
	}{
		{"空文件", nil, "products"},
		{"超过 5MB", pngOfSize(6 << 20), "products"},
		{"纯文本", []byte("hola, esto no es una imagen"), "products"},
		{"非法目录", tinyPNG, "../etc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.data, tt.folder)
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestUploadService_Delete(t *testing.T) {
	svc, dir := newLocalUploadService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, tinyPNG, "misc")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, res.Path))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(res.Path)))
	assert.True(t, os.IsNotExist(err))

	// 再删一次
	assert.ErrorIs(t, svc.Delete(ctx, res.Path), ErrNotFound)

	var vErr *ValidationError
	assert.ErrorAs(t, svc.Delete(ctx, "../../etc/passwd"), &vErr)
	assert.ErrorAs(t, svc.Delete(ctx, ""), &vErr)
}

func TestSupabaseStorage_Upload(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.Bytes()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Key":"images/products/a.png"}`))
	}))
	defer server.Close()

	storage, err := NewSupabaseStorage(config.StorageConfig{
		SupabaseURL:    server.URL,
		ServiceRoleKey: "service-key",
		Bucket:         "images",
	})
	require.NoError(t, err)

	url, err := storage.Upload(context.Background(), "products/a.png", tinyPNG, "image/png")
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/images/products/a.png", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, tinyPNG, gotBody)
	assert.Equal(t, server.URL+"/storage/v1/object/public/images/products/a.png", url)
}

func TestSupabaseStorage_UploadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"new row violates row-level security policy"}`))
	}))
	defer server.Close()

	storage, err := NewSupabaseStorage(config.StorageConfig{
		SupabaseURL:    server.URL,
		ServiceRoleKey: "service-key",
		Bucket:         "images",
	})
	require.NoError(t, err)

	_, err = storage.Upload(context.Background(), "products/a.png", tinyPNG, "image/png")
	assert.Error(t, err)
}
