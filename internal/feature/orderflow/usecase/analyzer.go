// Package usecase はローソク足からオーダーフロー（出来高の偏り・流動性・価格帯別出来高）を推定し、
// 方向予測にまとめる分析器を実装します。
package usecase

import (
	"math"
	"strings"
	"time"

	candle "trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/orderflow/domain/entity"
	quote "trade_advisor/internal/feature/quotes/domain/entity"
	technical "trade_advisor/internal/feature/technical/domain/entity"
)

const (
	// MinCandles 未満では各ステップが固定のフォールバック値を返します。
	MinCandles = 10
	// MinAbsorptionCandles は吸収パターン検出に必要な本数です。
	MinAbsorptionCandles = 3
	// AnalysisWindow は分析に使う直近の本数です。
	AnalysisWindow = 100
)

// Input は分析の入力です。Quote と Technical は省略できます。
type Input struct {
	Ticker    string
	Candles   []candle.Candle
	Price     float64
	Quote     *quote.PriceQuote
	Technical *technical.TechnicalSignal
}

// Analyzer はオーダーフロー分析器です。状態を持たないため並行に使えます。
type Analyzer struct {
	now func() time.Time
}

// NewAnalyzer は Analyzer を生成します。
func NewAnalyzer() *Analyzer {
	return &Analyzer{now: time.Now}
}

// Analyze は7ステップの分析を実行します。ローソク足が0本でもパニックせずフォールバック結果を返します。
func (a *Analyzer) Analyze(in Input) entity.OrderFlowResult {
	cs := candle.SortAscending(in.Candles)
	if len(cs) > AnalysisWindow {
		cs = cs[len(cs)-AnalysisWindow:]
	}

	price := in.Price
	if price <= 0 && len(cs) > 0 {
		price = cs[len(cs)-1].Close
	}

	vols := effectiveVolumes(cs)
	volume := analyzeVolume(cs, vols)
	velocity := analyzeVelocity(cs)
	absorptions := detectAbsorptions(cs, vols)
	imbalances := detectImbalances(cs, vols, price)
	liquidity := scoreLiquidity(cs, vols, volume, in.Quote)
	profile := buildProfile(cs, vols, price)
	prediction := predict(predictionInput{
		candles:    cs,
		price:      price,
		technical:  in.Technical,
		volume:     volume,
		velocity:   velocity,
		imbalances: imbalances,
		liquidity:  liquidity,
		profile:    profile,
	})

	return entity.OrderFlowResult{
		Ticker:      strings.ToUpper(in.Ticker),
		Price:       price,
		CandleCount: len(cs),
		Volume:      volume,
		Velocity:    velocity,
		Absorptions: absorptions,
		Imbalances:  imbalances,
		Liquidity:   liquidity,
		Profile:     profile,
		Prediction:  prediction,
		Timestamp:   a.now().UTC(),
	}
}

// effectiveVolumes は各足の出来高を返します。
// FXのように出来高が全て0の系列では値幅を出来高の代わりに使います。
func effectiveVolumes(cs []candle.Candle) []float64 {
	vols := make([]float64, len(cs))
	if hasVolume(cs) {
		for i, c := range cs {
			vols[i] = math.Max(c.Volume, 0)
		}
		return vols
	}
	for i, c := range cs {
		vols[i] = c.Range()
	}
	return vols
}

// buyShare は足の色と値幅内の終値位置から買い出来高の比率 [0,1] を推定します。
// 陽線は 0.5〜1、陰線は 0〜0.5 の範囲になります。
func buyShare(c candle.Candle) float64 {
	r := c.Range()
	if r <= 0 {
		return 0.5
	}
	pos := (c.Close - c.Low) / r
	if c.IsBullish() {
		return 0.5 + 0.5*pos
	}
	return 0.5 * pos
}

// tail は末尾 n 件を返します。
func tail[T any](xs []T, n int) []T {
	if n >= len(xs) {
		return xs
	}
	return xs[len(xs)-n:]
}
