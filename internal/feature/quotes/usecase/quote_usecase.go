// Package usecase は価格取得・照合のビジネスロジックを実装します。
package usecase

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	instentity "trade_advisor/internal/feature/instruments/domain/entity"
	"trade_advisor/internal/feature/quotes/domain/entity"
	"trade_advisor/internal/shared/fallback"
	"trade_advisor/internal/shared/synthetic"
)

const (
	// FallbackJitterPct は合成価格の基準価格からのぶれ幅（±0.5%）です。
	FallbackJitterPct = 0.005
	// CrossValidationTolerance は照合一致とみなす mid の相対差（0.1%）です。
	CrossValidationTolerance = 0.001

	ConfidenceCrossValidated = 95.0
	ConfidenceDiscrepancy    = 50.0
	ConfidenceSingleSource   = 75.0
	ConfidenceFallback       = 20.0

	// syntheticSpreadPips は合成価格に付けるスプレッドです。
	syntheticSpreadPips = 2.0
	// DefaultProviderTimeout は各プロバイダー呼び出しのタイムアウトです。
	DefaultProviderTimeout = 5 * time.Second
)

// QuoteProvider は1つの価格APIを表します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type QuoteProvider interface {
	Name() string
	GetQuote(ctx context.Context, inst instentity.Instrument) (entity.PriceQuote, error)
}

// InstrumentResolver は銘柄コードから銘柄情報を解決します。
type InstrumentResolver interface {
	Resolve(ctx context.Context, code string) instentity.Instrument
}

// QuoteUsecase は主・副プロバイダーから価格を取得し、失敗時は合成価格を返します。
type QuoteUsecase struct {
	primary     QuoteProvider
	secondary   QuoteProvider
	instruments InstrumentResolver
	synth       synthetic.Source
	timeout     time.Duration
	now         func() time.Time
}

// NewQuoteUsecase は QuoteUsecase を生成します。secondary は nil でも構いません。
func NewQuoteUsecase(primary, secondary QuoteProvider, instruments InstrumentResolver, synth synthetic.Source, timeout time.Duration) *QuoteUsecase {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &QuoteUsecase{
		primary:     primary,
		secondary:   secondary,
		instruments: instruments,
		synth:       synth,
		timeout:     timeout,
		now:         time.Now,
	}
}

// GetCurrentPrice は主プロバイダーの価格を返します。
// 失敗した場合（通信・認証・形式不正・認証情報なし）は合成価格を Synthetic として返します。
func (u *QuoteUsecase) GetCurrentPrice(ctx context.Context, code string) fallback.Result[entity.PriceQuote] {
	inst := u.instruments.Resolve(ctx, code)

	providers := u.providers()
	if len(providers) == 0 {
		return fallback.Synthetic(u.Synthesize(inst), ErrNoProviders)
	}

	q, err := u.fetch(ctx, providers[0], inst)
	if err != nil {
		slog.Warn("quote provider failed, using synthesized price",
			"provider", providers[0].Name(), "instrument", inst.Code, "kind", fallback.Classify(err), "error", err)
		return fallback.Synthetic(u.Synthesize(inst), err)
	}
	return fallback.Live(q)
}

// GetValidatedPrice は全プロバイダーに並行して問い合わせ、結果を照合します。
// 1つのプロバイダーの失敗が他の呼び出しを中断することはありません。
func (u *QuoteUsecase) GetValidatedPrice(ctx context.Context, code string) entity.ValidatedQuote {
	inst := u.instruments.Resolve(ctx, code)
	providers := u.providers()

	quotes := make([]*entity.PriceQuote, len(providers))
	errs := make([]error, len(providers))

	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			q, err := u.fetch(ctx, p, inst)
			if err != nil {
				errs[i] = err
				return nil
			}
			quotes[i] = &q
			return nil
		})
	}
	_ = g.Wait()

	var ok []entity.PriceQuote
	var sources []string
	failures := map[string]string{}
	for i, p := range providers {
		if quotes[i] != nil {
			ok = append(ok, *quotes[i])
			sources = append(sources, p.Name())
			continue
		}
		if errs[i] != nil {
			failures[p.Name()] = string(fallback.Classify(errs[i]))
			slog.Warn("quote provider failed during validation",
				"provider", p.Name(), "instrument", inst.Code, "error", errs[i])
		}
	}
	if len(failures) == 0 {
		failures = nil
	}

	return validate(ok, sources, failures, func() entity.PriceQuote { return u.Synthesize(inst) })
}

// validate は成功したプロバイダーの価格から照合ステータスを決定します。
func validate(ok []entity.PriceQuote, sources []string, failures map[string]string, synth func() entity.PriceQuote) entity.ValidatedQuote {
	switch len(ok) {
	case 0:
		return entity.ValidatedQuote{
			Quote:      synth(),
			Status:     entity.StatusFallback,
			Confidence: ConfidenceFallback,
			Sources:    []string{entity.SourceSynthetic},
			Failures:   failures,
		}
	case 1:
		return entity.ValidatedQuote{
			Quote:      ok[0],
			Status:     entity.SingleSource(sources[0]),
			Confidence: ConfidenceSingleSource,
			Sources:    sources,
			Failures:   failures,
		}
	}

	diff := RelativeDifference(ok[0].Mid, ok[1].Mid)
	vq := entity.ValidatedQuote{
		Quote:      ok[0],
		Difference: diff,
		Sources:    sources,
		Failures:   failures,
	}
	if diff < CrossValidationTolerance {
		vq.Status = entity.StatusCrossValidated
		vq.Confidence = ConfidenceCrossValidated
	} else {
		vq.Status = entity.StatusPriceDiscrepancy
		vq.Confidence = ConfidenceDiscrepancy
	}
	return vq
}

// RelativeDifference は |a-b| / min(a,b) を返します。どちらかが0以下なら 1（100%）として扱います。
func RelativeDifference(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 1
	}
	return math.Abs(a-b) / math.Min(a, b)
}

// Synthesize は基準価格に ±FallbackJitterPct のぶれを加えた合成価格を作ります。
func (u *QuoteUsecase) Synthesize(inst instentity.Instrument) entity.PriceQuote {
	mid := u.synth.Jitter(inst.BasePrice, FallbackJitterPct)
	half := syntheticSpreadPips * inst.PipSize / 2
	return entity.PriceQuote{
		Instrument: inst.Code,
		Bid:        mid - half,
		Ask:        mid + half,
		Mid:        mid,
		SpreadPips: syntheticSpreadPips,
		Volume:     math.Round(u.synth.Between(1000, 10000)),
		Timestamp:  u.now().UTC(),
		IsReal:     false,
		Source:     entity.SourceSynthetic,
	}
}

func (u *QuoteUsecase) providers() []QuoteProvider {
	ps := make([]QuoteProvider, 0, 2)
	if u.primary != nil {
		ps = append(ps, u.primary)
	}
	if u.secondary != nil {
		ps = append(ps, u.secondary)
	}
	return ps
}

func (u *QuoteUsecase) fetch(ctx context.Context, p QuoteProvider, inst instentity.Instrument) (entity.PriceQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	return p.GetQuote(ctx, inst)
}
