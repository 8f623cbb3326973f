package oanda

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	instentity "trade_advisor/internal/feature/instruments/domain/entity"
	"trade_advisor/internal/feature/instruments/domain/symbol"
	"trade_advisor/internal/feature/quotes/domain/entity"
	"trade_advisor/internal/feature/quotes/usecase"
	httpc "trade_advisor/internal/platform/http"
	"trade_advisor/internal/shared/fallback"
)

const providerName = "oanda"

// pricingResponse は /v3/accounts/{id}/pricing のレスポンスです。
type pricingResponse struct {
	Prices []struct {
		Instrument string `json:"instrument"`
		Time       string `json:"time"`
		Bids       []struct {
			Price     string `json:"price"`
			Liquidity int64  `json:"liquidity"`
		} `json:"bids"`
		Asks []struct {
			Price     string `json:"price"`
			Liquidity int64  `json:"liquidity"`
		} `json:"asks"`
	} `json:"prices"`
}

// Client は usecase.QuoteProvider のOANDA実装です。
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
func (c *Client) Name() string { return entity.SourceOanda }

// GetQuote は最新の bid/ask を取得します。認証情報が無い場合は呼び出さずに ErrAuth を返します。
func (c *Client) GetQuote(ctx context.Context, inst instentity.Instrument) (entity.PriceQuote, error) {
	if c.cfg.Token == "" || c.cfg.AccountID == "" {
		return entity.PriceQuote{}, fallback.Wrap(providerName, fallback.ErrAuth, "missing token or account id")
	}
	sym, err := symbol.Oanda(inst.Code)
	if err != nil {
		return entity.PriceQuote{}, fallback.Wrap(providerName, fallback.ErrMalformed, err.Error())
	}

	q := url.Values{}
	q.Set("instruments", sym)
	u := fmt.Sprintf("%s/v3/accounts/%s/pricing?%s", c.cfg.BaseURL, url.PathEscape(c.cfg.AccountID), q.Encode())

	var body pricingResponse
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.Token}
	if err := httpc.GetJSON(ctx, c.client, providerName, u, headers, &body); err != nil {
		return entity.PriceQuote{}, err
	}

	if len(body.Prices) == 0 || len(body.Prices[0].Bids) == 0 || len(body.Prices[0].Asks) == 0 {
		return entity.PriceQuote{}, fallback.Wrap(providerName, fallback.ErrMalformed, "empty prices")
	}
	p := body.Prices[0]

	bid, err := strconv.ParseFloat(p.Bids[0].Price, 64)
	if err != nil {
		return entity.PriceQuote{}, fallback.Wrap(providerName, fallback.ErrMalformed, fmt.Sprintf("parse bid %q", p.Bids[0].Price))
	}
	ask, err := strconv.ParseFloat(p.Asks[0].Price, 64)
	if err != nil {
		return entity.PriceQuote{}, fallback.Wrap(providerName, fallback.ErrMalformed, fmt.Sprintf("parse ask %q", p.Asks[0].Price))
	}

	ts, err := time.Parse(time.RFC3339Nano, p.Time)
	if err != nil {
		ts = time.Now()
	}

	return entity.PriceQuote{
		Instrument: inst.Code,
		Bid:        bid,
		Ask:        ask,
		Mid:        (bid + ask) / 2,
		SpreadPips: inst.SpreadPips(bid, ask),
		// OANDAは出来高を返さないため、板の流動性を代用する
		Volume:    float64(p.Bids[0].Liquidity + p.Asks[0].Liquidity),
		Timestamp: ts.UTC(),
		IsReal:    true,
		Source:    entity.SourceOanda,
	}, nil
}
