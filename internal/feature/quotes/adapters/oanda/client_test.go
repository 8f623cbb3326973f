package oanda

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	instentity "trade_advisor/internal/feature/instruments/domain/entity"
	"trade_advisor/internal/shared/fallback"
)

func gold() instentity.Instrument {
	inst, _ := instentity.Lookup("XAUUSD")
	return inst
}

func TestClient_GetQuote_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/accounts/acct-1/pricing", r.URL.Path)
		assert.Equal(t, "XAU_USD", r.URL.Query().Get("instruments"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"prices": [{
				"instrument": "XAU_USD",
				"time": "2025-01-15T10:00:00.000000000Z",
				"bids": [{"price": "2650.10", "liquidity": 500000}],
				"asks": [{"price": "2650.40", "liquidity": 500000}]
			}]
		}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, AccountID: "acct-1", Token: "tok"}, server.Client())

	q, err := c.GetQuote(context.Background(), gold())
	require.NoError(t, err)
	assert.True(t, q.IsReal)
	assert.Equal(t, "OANDA", q.Source)
	assert.InDelta(t, 2650.25, q.Mid, 1e-9)
	assert.InDelta(t, 3.0, q.SpreadPips, 1e-6)
	assert.Equal(t, 1000000.0, q.Volume)
	assert.Equal(t, time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC), q.Timestamp)
}

func TestClient_GetQuote_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantKind fallback.Kind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"errorMessage":"Insufficient authorization"}`, fallback.KindAuth},
		{"server error", http.StatusServiceUnavailable, `{}`, fallback.KindTransport},
		{"empty prices", http.StatusOK, `{"prices": []}`, fallback.KindMalformed},
		{"bad price", http.StatusOK, `{"prices":[{"bids":[{"price":"x"}],"asks":[{"price":"1"}]}]}`, fallback.KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(Config{BaseURL: server.URL, AccountID: "a", Token: "t"}, server.Client())
			_, err := c.GetQuote(context.Background(), gold())

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, fallback.Classify(err))
		})
	}
}

func TestClient_GetQuote_MissingCredentials(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL}, server.Client())
	_, err := c.GetQuote(context.Background(), gold())

	assert.ErrorIs(t, err, fallback.ErrAuth)
	assert.False(t, called, "no request without credentials")
}

func TestClient_GetQuote_UnsupportedInstrument(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{BaseURL: "http://unused", AccountID: "a", Token: "t"}, http.DefaultClient)
	stock, _ := instentity.Lookup("AAPL")

	_, err := c.GetQuote(context.Background(), stock)
	assert.ErrorIs(t, err, fallback.ErrMalformed)
}
