package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	instentity "trade_advisor/internal/feature/instruments/domain/entity"
	"trade_advisor/internal/shared/fallback"
)

func newServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_GetQuote_Success(t *testing.T) {
	t.Parallel()

	server := newServer(t, `{
		"Global Quote": {
			"01. symbol": "AAPL",
			"02. open": "189.00",
			"03. high": "191.20",
			"04. low": "188.50",
			"05. price": "190.55",
			"06. volume": "51234567",
			"07. latest trading day": "2025-01-15",
			"08. previous close": "189.10",
			"09. change": "1.45",
			"10. change percent": "0.7668%"
		}
	}`)
	c := NewClient(Config{BaseURL: server.URL, APIKey: "key"}, server.Client())
	inst, _ := instentity.Lookup("AAPL")

	q, err := c.GetQuote(context.Background(), inst)
	require.NoError(t, err)
	assert.True(t, q.IsReal)
	assert.Equal(t, 190.55, q.Mid)
	assert.Equal(t, q.Mid, q.Bid)
	assert.Equal(t, 51234567.0, q.Volume)
	assert.Equal(t, "ALPHAVANTAGE", q.Source)
	assert.Equal(t, 2025, q.Timestamp.Year())
}

func TestClient_GetQuote_ProviderMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantKind fallback.Kind
	}{
		{"quota note", `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`, fallback.KindRateLimited},
		{"rate limit info", `{"Information": "We have detected your API key as ... our standard API rate limit is 25 requests per day."}`, fallback.KindRateLimited},
		{"invalid key", `{"Information": "Please provide a valid API key."}`, fallback.KindAuth},
		{"error message", `{"Error Message": "Invalid API call."}`, fallback.KindMalformed},
		{"empty quote", `{"Global Quote": {}}`, fallback.KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newServer(t, tt.body)
			c := NewClient(Config{BaseURL: server.URL, APIKey: "key"}, server.Client())
			inst, _ := instentity.Lookup("XAUUSD")

			_, err := c.GetQuote(context.Background(), inst)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, fallback.Classify(err))
		})
	}
}

func TestClient_GetQuote_MissingKey(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{BaseURL: "http://unused"}, http.DefaultClient)
	inst, _ := instentity.Lookup("XAUUSD")

	_, err := c.GetQuote(context.Background(), inst)
	assert.ErrorIs(t, err, fallback.ErrAuth)
}
