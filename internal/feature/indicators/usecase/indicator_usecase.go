// Package usecase はテクニカル指標の取得と、ローカル計算によるフォールバックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	candleentity "trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/indicators/domain/entity"
	"trade_advisor/internal/shared/fallback"
	"trade_advisor/internal/shared/ta"
)

const (
	SMAPeriod = 20
	RSIPeriod = 14

	// DefaultTimeout は外部API呼び出し全体のタイムアウトです。
	DefaultTimeout = 8 * time.Second
)

// RemoteIndicators は外部の指標APIです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type RemoteIndicators interface {
	Latest(ctx context.Context, indicator, code, interval string, period int) (float64, error)
}

// IndicatorUsecase は指標スナップショットを組み立てます。
type IndicatorUsecase struct {
	remote  RemoteIndicators
	timeout time.Duration
	now     func() time.Time
}

// NewIndicatorUsecase は IndicatorUsecase を生成します。remote は nil でも構いません。
func NewIndicatorUsecase(remote RemoteIndicators, timeout time.Duration) *IndicatorUsecase {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &IndicatorUsecase{remote: remote, timeout: timeout, now: time.Now}
}

type request struct {
	name   string
	period int
	dst    *float64
}

// Snapshot は外部APIのSMA20/RSI14/VWAPを並行取得し、取れなかった値を candles から計算します。
// candles は時刻順序を問いません。どの値も得られない場合は ErrInsufficientData の Synthetic を返します。
func (u *IndicatorUsecase) Snapshot(ctx context.Context, code, interval string, candles []candleentity.Candle) fallback.Result[entity.IndicatorSnapshot] {
	snap := entity.IndicatorSnapshot{Instrument: code, Interval: interval, Timestamp: u.now().UTC()}

	reqs := []request{
		{"sma", SMAPeriod, &snap.SMA20},
		{"rsi", RSIPeriod, &snap.RSI14},
		{"vwap", 0, &snap.VWAP},
	}
	errs := make([]error, len(reqs))

	if u.remote != nil {
		ctx, cancel := context.WithTimeout(ctx, u.timeout)
		defer cancel()

		var g errgroup.Group
		for i, r := range reqs {
			g.Go(func() error {
				v, err := u.remote.Latest(ctx, r.name, code, interval, r.period)
				if err != nil {
					errs[i] = err
					return nil
				}
				*r.dst = v
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range errs {
			errs[i] = fallback.Wrap("indicators", fallback.ErrAuth, "no remote provider")
		}
	}

	remoteOK := 0
	for _, err := range errs {
		if err == nil {
			remoteOK++
		}
	}
	if remoteOK == len(reqs) {
		snap.IsReal = true
		snap.Source = entity.SourceTwelveData
		return fallback.Live(snap)
	}

	// 取得できなかった値をローカル計算で補う
	series := ta.FromCandles(candleentity.SortAscending(candles))
	localOK := 0
	for i, r := range reqs {
		if errs[i] == nil {
			continue
		}
		v, ok := computeLocal(r.name, series)
		if !ok {
			continue
		}
		*r.dst = v
		localOK++
	}

	reason := errors.Join(errs...)
	slog.Warn("indicator provider incomplete, computing locally",
		"instrument", code, "interval", interval, "remote_ok", remoteOK, "local_ok", localOK, "kind", fallback.Classify(reason))

	switch {
	case remoteOK == 0 && localOK == 0:
		snap.Source = entity.SourceLocal
		return fallback.Synthetic(snap, fmt.Errorf("%w: %d candles", fallback.ErrInsufficientData, len(candles)))
	case remoteOK == 0:
		snap.Source = entity.SourceLocal
	default:
		snap.Source = entity.SourceMixed
	}
	return fallback.Synthetic(snap, reason)
}

func computeLocal(name string, s ta.Series) (float64, bool) {
	switch name {
	case "sma":
		return ta.LastSMA(s.Close, SMAPeriod)
	case "rsi":
		return ta.LastRSI(s.Close, RSIPeriod)
	case "vwap":
		return ta.VWAP(s)
	}
	return 0, false
}
