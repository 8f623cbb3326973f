package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	instentity "trade_advisor/internal/feature/instruments/domain/entity"
	"trade_advisor/internal/feature/instruments/domain/symbol"
	"trade_advisor/internal/feature/quotes/domain/entity"
	"trade_advisor/internal/feature/quotes/usecase"
	httpc "trade_advisor/internal/platform/http"
	"trade_advisor/internal/shared/fallback"
)

const providerName = "alphavantage"

// globalQuoteResponse は function=GLOBAL_QUOTE のレスポンスです。
// クォータ超過時は HTTP 200 のまま Note / Information が返ります。
type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		Open             string `json:"02. open"`
		High             string `json:"03. high"`
		Low              string `json:"04. low"`
		Price            string `json:"05. price"`
		Volume           string `json:"06. volume"`
		LatestTradingDay string `json:"07. latest trading day"`
		PreviousClose    string `json:"08. previous close"`
		Change           string `json:"09. change"`
		ChangePercent    string `json:"10. change percent"`
	} `json:"Global Quote"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// Client は usecase.QuoteProvider のAlpha Vantage実装です。
type Client struct {
	cfg    Config
	client *http.Client
}

var _ usecase.QuoteProvider = (*Client)(nil)

// NewClient は Client を生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// Name はプロバイダー名を返します。
func (c *Client) Name() string { return entity.SourceAlphaVantage }

// GetQuote は直近の取引価格を取得します。bid/ask は提供されないため価格を両方に設定します。
func (c *Client) GetQuote(ctx context.Context, inst instentity.Instrument) (entity.PriceQuote, error) {
	if c.cfg.APIKey == "" {
		return entity.PriceQuote{}, fallback.Wrap(providerName, fallback.ErrAuth, "missing api key")
	}

	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol.AlphaVantage(inst.Code))
	q.Set("apikey", c.cfg.APIKey)
	u := fmt.Sprintf("%s/query?%s", c.cfg.BaseURL, q.Encode())

	var body globalQuoteResponse
	if err := httpc.GetJSON(ctx, c.client, providerName, u, nil, &body); err != nil {
		return entity.PriceQuote{}, err
	}

	switch {
	case body.Note != "", strings.Contains(strings.ToLower(body.Information), "rate limit"):
		return entity.PriceQuote{}, fallback.Wrap(providerName, fallback.ErrRateLimited, firstNonEmpty(body.Note, body.Information))
	case strings.Contains(strings.ToLower(body.Information), "api key"), strings.Contains(strings.ToLower(body.ErrorMessage), "apikey"):
		return entity.PriceQuote{}, fallback.Wrap(providerName, fallback.ErrAuth, firstNonEmpty(body.Information, body.ErrorMessage))
	case body.ErrorMessage != "", body.Information != "":
		return entity.PriceQuote{}, fallback.Wrap(providerName, fallback.ErrMalformed, firstNonEmpty(body.ErrorMessage, body.Information))
	}

	gq := body.GlobalQuote
	price, err := strconv.ParseFloat(gq.Price, 64)
	if err != nil || price <= 0 {
		return entity.PriceQuote{}, fallback.Wrap(providerName, fallback.ErrMalformed, fmt.Sprintf("parse price %q", gq.Price))
	}
	volume, _ := strconv.ParseFloat(gq.Volume, 64)

	ts := time.Now().UTC()
	if d, err := time.Parse("2006-01-02", gq.LatestTradingDay); err == nil {
		ts = d.UTC()
	}

	return entity.PriceQuote{
		Instrument: inst.Code,
		Bid:        price,
		Ask:        price,
		Mid:        price,
		SpreadPips: 0,
		Volume:     volume,
		Timestamp:  ts,
		IsReal:     true,
		Source:     entity.SourceAlphaVantage,
	}, nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
