package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trade_advisor/internal/feature/instruments/domain/symbol"
	"trade_advisor/internal/feature/technical/domain/entity"
	"trade_advisor/internal/feature/technical/usecase"
	httpc "trade_advisor/internal/platform/http"
	"trade_advisor/internal/shared/fallback"
)

const providerName = "technical-proxy"

type summaryDTO struct {
	Buy            int     `json:"buy"`
	Sell           int     `json:"sell"`
	Neutral        int     `json:"neutral"`
	Recommendation string  `json:"recommendation"`
	Confidence     float64 `json:"confidence"`
}

type indicatorDTO struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Value  float64 `json:"value"`
	Signal string  `json:"signal"`
}

// technicalResponse は GET /api/technical/:ticker のレスポンスです。
type technicalResponse struct {
	Ticker         string         `json:"ticker"`
	Timeframe      string         `json:"timeframe"`
	IsReal         bool           `json:"isReal"`
	Summary        summaryDTO     `json:"summary"`
	MovingAverages summaryDTO     `json:"movingAverages"`
	Oscillators    summaryDTO     `json:"oscillators"`
	Indicators     []indicatorDTO `json:"indicators"`
	Timestamp      string         `json:"timestamp"`
}

// newsResponse は GET /api/news/:ticker のレスポンスです。
type newsResponse struct {
	Ticker    string  `json:"ticker"`
	IsReal    bool    `json:"isReal"`
	RiskLevel string  `json:"riskLevel"`
	RiskScore float64 `json:"riskScore"`
	Headlines []struct {
		Title       string `json:"title"`
		Source      string `json:"source"`
		PublishedAt string `json:"publishedAt"`
		Impact      string `json:"impact"`
	} `json:"headlines"`
}

// Client は usecase.TechnicalSource のプロキシ実装です。
type Client struct {
	cfg    Config
	client *http.Client
}

var _ usecase.TechnicalSource = (*Client)(nil)

// NewClient は Client を生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// Healthy は GET /health が 2xx を返すかを確認します。
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return fallback.Wrap(providerName, fallback.ErrMalformed, err.Error())
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fallback.Wrap(providerName, fallback.ErrTransport, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fallback.FromStatus(providerName, resp.StatusCode)
	}
	return nil
}

// Technical はティッカーのテクニカル分析を取得します。
func (c *Client) Technical(ctx context.Context, ticker, timeframe string) (entity.TechnicalSignal, error) {
	sym := symbol.Proxy(ticker)
	q := url.Values{}
	q.Set("timeframe", timeframe)
	u := fmt.Sprintf("%s/api/technical/%s?%s", c.cfg.BaseURL, url.PathEscape(sym), q.Encode())

	var body technicalResponse
	if err := httpc.GetJSON(ctx, c.client, providerName, u, nil, &body); err != nil {
		return entity.TechnicalSignal{}, err
	}

	rec, ok := entity.ParseSignal(body.Summary.Recommendation)
	if !ok {
		return entity.TechnicalSignal{}, fallback.Wrap(providerName, fallback.ErrMalformed,
			fmt.Sprintf("unknown recommendation %q", body.Summary.Recommendation))
	}

	indicators := make([]entity.IndicatorSignal, 0, len(body.Indicators))
	for _, in := range body.Indicators {
		sig, ok := entity.ParseSignal(in.Signal)
		if !ok {
			// 値が取れなかった指標はプロキシ側で空文字になる
			sig = entity.Neutral
		}
		indicators = append(indicators, entity.IndicatorSignal{
			Name:   in.Name,
			Family: familyOf(in.Type),
			Value:  in.Value,
			Signal: sig,
		})
	}

	return entity.TechnicalSignal{
		Ticker:         sym,
		Timeframe:      timeframe,
		Indicators:     indicators,
		MovingAverages: toSummary(body.MovingAverages, indicators, entity.FamilyMovingAverages),
		Oscillators:    toSummary(body.Oscillators, indicators, entity.FamilyOscillators),
		Recommendation: rec,
		Confidence:     body.Summary.Confidence,
		IsReal:         body.IsReal,
		Timestamp:      parseTime(body.Timestamp),
	}, nil
}

// News はティッカーのニュースリスクを取得します。
func (c *Client) News(ctx context.Context, ticker string) (entity.NewsRisk, error) {
	sym := symbol.Proxy(ticker)
	u := fmt.Sprintf("%s/api/news/%s", c.cfg.BaseURL, url.PathEscape(sym))

	var body newsResponse
	if err := httpc.GetJSON(ctx, c.client, providerName, u, nil, &body); err != nil {
		return entity.NewsRisk{}, err
	}

	if body.RiskScore < 0 || body.RiskScore > 100 {
		return entity.NewsRisk{}, fallback.Wrap(providerName, fallback.ErrMalformed,
			fmt.Sprintf("risk score %.1f out of range", body.RiskScore))
	}
	level, ok := entity.ParseRiskLevel(body.RiskLevel)
	if !ok {
		level = entity.LevelForScore(body.RiskScore)
	}

	headlines := make([]entity.Headline, 0, len(body.Headlines))
	for _, h := range body.Headlines {
		impact, ok := entity.ParseRiskLevel(h.Impact)
		if !ok {
			impact = level
		}
		headlines = append(headlines, entity.Headline{
			Title:       h.Title,
			Source:      h.Source,
			PublishedAt: parseTime(h.PublishedAt),
			Impact:      impact,
		})
	}

	return entity.NewsRisk{
		Ticker:    sym,
		Level:     level,
		Score:     body.RiskScore,
		Headlines: headlines,
		IsReal:    body.IsReal,
		Timestamp: time.Now().UTC(),
	}, nil
}

func familyOf(t string) entity.Family {
	switch strings.ToLower(t) {
	case "oscillator", "oscillators":
		return entity.FamilyOscillators
	default:
		return entity.FamilyMovingAverages
	}
}

// toSummary はプロキシの集計を使い、推奨が読めない場合は指標から再集計します。
func toSummary(s summaryDTO, indicators []entity.IndicatorSignal, family entity.Family) entity.FamilySummary {
	sig, ok := entity.ParseSignal(s.Recommendation)
	if !ok {
		return entity.Summarize(indicators, family)
	}
	return entity.FamilySummary{Buy: s.Buy, Sell: s.Sell, Neutral: s.Neutral, Signal: sig}
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
