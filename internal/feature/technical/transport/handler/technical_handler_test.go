package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/shared/fallback"
)

type mockTechnicalUsecase struct {
	gotTicker, gotTimeframe string
	res                     fallback.Result[entity.TechnicalSignal]
	news                    fallback.Result[entity.NewsRisk]
}

func (m *mockTechnicalUsecase) GetTechnicalAnalysis(_ context.Context, ticker, timeframe string) fallback.Result[entity.TechnicalSignal] {
	m.gotTicker, m.gotTimeframe = ticker, timeframe
	return m.res
}

func (m *mockTechnicalUsecase) GetNewsRisk(_ context.Context, ticker string) fallback.Result[entity.NewsRisk] {
	m.gotTicker = ticker
	return m.news
}

func newRouter(uc *mockTechnicalUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTechnicalHandler(uc)
	r.GET("/v1/technical/:code", h.GetTechnical)
	r.GET("/v1/technical/:code/news", h.GetNews)
	return r
}

func TestTechnicalHandler_GetTechnical_Synthetic(t *testing.T) {
	uc := &mockTechnicalUsecase{
		res: fallback.Synthetic(entity.TechnicalSignal{
			Ticker:         "XAUUSD",
			Recommendation: entity.Buy,
			Confidence:     64.2,
		}, fallback.Wrap("technical-proxy", fallback.ErrTransport, "connection refused")),
	}

	w := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/technical/xauusd?timeframe=4h", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "XAUUSD", uc.gotTicker)
	assert.Equal(t, "4h", uc.gotTimeframe)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "BUY", body["recommendation"])
	assert.Equal(t, false, body["isReal"])
	assert.Equal(t, "transport", body["failureKind"])
	assert.Contains(t, body["fallbackReason"], "connection refused")
}

func TestTechnicalHandler_GetTechnical_LiveOmitsReason(t *testing.T) {
	uc := &mockTechnicalUsecase{
		res: fallback.Live(entity.TechnicalSignal{Ticker: "EURUSD", Recommendation: entity.Neutral, IsReal: true}),
	}

	w := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/technical/EURUSD", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["isReal"])
	assert.NotContains(t, body, "fallbackReason")
	assert.NotContains(t, body, "failureKind")
}

func TestTechnicalHandler_GetNews(t *testing.T) {
	uc := &mockTechnicalUsecase{
		news: fallback.Live(entity.NewsRisk{Ticker: "XAUUSD", Level: entity.RiskMedium, Score: 50, IsReal: true}),
	}

	w := httptest.NewRecorder()
	newRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/technical/xauusd/news", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "MEDIUM", body["level"])
	assert.Equal(t, "XAUUSD", uc.gotTicker)
}
