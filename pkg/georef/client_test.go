package georef

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ProvincesAndLocalities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/provincias":
			_, _ = w.Write([]byte(`{"cantidad":2,"provincias":[{"id":"14","nombre":"Córdoba"},{"id":"82","nombre":"Santa Fe"}]}`))
		case "/localidades":
			assert.Equal(t, "Córdoba", r.URL.Query().Get("provincia"))
			_, _ = w.Write([]byte(`{"cantidad":1,"localidades":[{"id":"1401401","nombre":"Alta Gracia"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, false)

	provinces, err := c.Provinces(context.Background())
	require.NoError(t, err)
	require.Len(t, provinces, 2)
	assert.Equal(t, "Córdoba", provinces[0].Nombre)

	localities, err := c.Localities(context.Background(), "Córdoba")
	require.NoError(t, err)
	require.Len(t, localities, 1)
	assert.Equal(t, "Alta Gracia", localities[0].Nombre)
}

func TestClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, false).Provinces(context.Background())
	assert.Error(t, err)
}
