package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreatePreference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer TEST-TOKEN", r.Header.Get("Authorization"))
		assert.Equal(t, "ORD-1", r.Header.Get("X-Idempotency-Key"))

		var pref Preference
		require.NoError(t, json.NewDecoder(r.Body).Decode(&pref))
		assert.Equal(t, "ORD-1", pref.ExternalReference)
		assert.Len(t, pref.Items, 1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pref-1","init_point":"https://mp/checkout","sandbox_init_point":"https://sandbox/checkout"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TEST-TOKEN", false)
	resp, err := c.CreatePreference(context.Background(), &Preference{
		ExternalReference: "ORD-1",
		Items:             []Item{{Title: "Camiseta", Quantity: 1, CurrencyID: "ARS", UnitPrice: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, "pref-1", resp.ID)
	assert.Equal(t, "https://mp/checkout", resp.InitPoint)
	assert.Equal(t, "https://sandbox/checkout", resp.SandboxInitPoint)
}

func TestClient_GetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/555" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Payment not found","error":"not_found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 555,
			"status": "approved",
			"status_detail": "accredited",
			"external_reference": "ORD-1",
			"transaction_amount": 1500.5,
			"payment_method_id": "visa",
			"payer": {"email": "ana@example.com", "first_name": "Ana", "last_name": "Paz"},
			"metadata": {"customer_name": "Ana Paz", "club_id": 7}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TOKEN", false)
	p, err := c.GetPayment(context.Background(), "555")
	require.NoError(t, err)
	assert.Equal(t, int64(555), p.ID)
	assert.Equal(t, "approved", p.Status)
	assert.Equal(t, "ORD-1", p.ExternalReference)
	assert.Equal(t, 1500.5, p.TransactionAmount)
	assert.Equal(t, "Ana Paz", p.Payer.FullName())
	assert.Equal(t, "Ana Paz", p.MetadataString("customer_name"))
	assert.Equal(t, int64(7), p.MetadataInt64("club_id"))
	assert.Equal(t, "7", p.MetadataString("club_id"))

	_, err = c.GetPayment(context.Background(), "404")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_SearchPaymentsByReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/search", r.URL.Path)
		assert.Equal(t, "ORD-9", r.URL.Query().Get("external_reference"))
		assert.Equal(t, "desc", r.URL.Query().Get("criteria"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":2,"status":"approved"},{"id":1,"status":"rejected"}],"paging":{"total":2}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TOKEN", false)
	results, err := c.SearchPaymentsByReference(context.Background(), "ORD-9")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(2), results[0].ID)
}
