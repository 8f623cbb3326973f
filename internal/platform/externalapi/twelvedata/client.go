package twelvedata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/candles/usecase"
	"trade_advisor/internal/feature/instruments/domain/symbol"
	httpc "trade_advisor/internal/platform/http"
	"trade_advisor/internal/platform/externalapi/twelvedata/dto"
	"trade_advisor/internal/shared/fallback"
	"trade_advisor/internal/shared/ratelimiter"
)

const providerName = "twelvedata"

// TwelveDataMarket はTwelve Data外部APIから時系列データとテクニカル指標を取得します。
// すべてのリクエストは共有のレートリミッターを通過します。
type TwelveDataMarket struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
// limiter が nil の場合は cfg.RateLimitPerMinute から生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client, limiter ratelimiter.Limiter) *TwelveDataMarket {
	if limiter == nil {
		limiter = ratelimiter.NewRateLimiter(providerName, cfg.RateLimitPerMinute, time.Minute)
	}
	return &TwelveDataMarket{cfg: cfg, client: client, limiter: limiter}
}

// GetTimeSeries はTwelve Data APIから時系列データを取得し、新しい順のCandleスライスとして返します。
// code は "XAUUSD" のような銘柄コードで、APIのスラッシュ形式へ変換して送信します。
func (t *TwelveDataMarket) GetTimeSeries(ctx context.Context, code, interval string, outputsize int) ([]entity.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol.TwelveData(code))
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(outputsize))
	q.Set("timezone", "UTC")

	var body dto.TimeSeriesResponse
	if err := t.get(ctx, "time_series", q, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, apiError(body.Code, body.Message)
	}

	candles := make([]entity.Candle, 0, len(body.Values))
	for _, v := range body.Values {
		// タイムスタンプをパース
		tm, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, fallback.Wrap(providerName, fallback.ErrMalformed, fmt.Sprintf("parse time %q", v.Datetime))
		}
		o, err := parseField("open", v.Open)
		if err != nil {
			return nil, err
		}
		h, err := parseField("high", v.High)
		if err != nil {
			return nil, err
		}
		l, err := parseField("low", v.Low)
		if err != nil {
			return nil, err
		}
		c, err := parseField("close", v.Close)
		if err != nil {
			return nil, err
		}
		// 出来高はFXでは返らないため空なら0
		var vol float64
		if v.Volume != "" {
			if vol, err = parseField("volume", v.Volume); err != nil {
				return nil, err
			}
		}

		candles = append(candles, entity.Candle{
			Symbol:   code,
			Interval: interval,
			Time:     tm,
			Open:     o,
			High:     h,
			Low:      l,
			Close:    c,
			Volume:   vol,
		})
	}
	return candles, nil
}

// Latest は指標エンドポイント（"sma", "rsi", "vwap"）の最新値を返します。
// period が 0 の場合は time_period を送りません（VWAP用）。
func (t *TwelveDataMarket) Latest(ctx context.Context, indicator, code, interval string, period int) (float64, error) {
	q := url.Values{}
	q.Set("symbol", symbol.TwelveData(code))
	q.Set("interval", interval)
	q.Set("outputsize", "1")
	if period > 0 {
		q.Set("time_period", strconv.Itoa(period))
	}

	var body dto.IndicatorResponse
	if err := t.get(ctx, indicator, q, &body); err != nil {
		return 0, err
	}
	if body.Status == "error" {
		return 0, apiError(body.Code, body.Message)
	}
	if len(body.Values) == 0 {
		return 0, fallback.Wrap(providerName, fallback.ErrInsufficientData, indicator+": no values")
	}
	raw, ok := body.Values[0][indicator]
	if !ok {
		return 0, fallback.Wrap(providerName, fallback.ErrMalformed, indicator+": missing field")
	}
	return parseField(indicator, raw)
}

func (t *TwelveDataMarket) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	if t.cfg.TwelveDataAPIKey == "" {
		return fallback.Wrap(providerName, fallback.ErrAuth, "missing api key")
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return fallback.Wrap(providerName, fallback.ErrTransport, err.Error())
	}
	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	u := fmt.Sprintf("%s/%s?%s", t.cfg.BaseURL, endpoint, q.Encode())
	return httpc.GetJSON(ctx, t.client, providerName, u, nil, out)
}

// apiError は本文の status:"error" を失敗分類に変換します。
// Twelve Data はHTTP 200のまま code にエラーを入れて返すことがあります。
func apiError(code int, message string) error {
	if code == 0 {
		return fallback.Wrap(providerName, fallback.ErrMalformed, message)
	}
	return fmt.Errorf("%w: %s", fallback.FromStatus(providerName, code), message)
}

func parseDatetime(s string) (time.Time, error) {
	tm, err := time.Parse(time.DateTime, s)
	if err == nil {
		return tm.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}

func parseField(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fallback.Wrap(providerName, fallback.ErrMalformed, fmt.Sprintf("parse %s %q", name, raw))
	}
	return v, nil
}
