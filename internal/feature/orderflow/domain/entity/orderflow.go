// Package entity はorderflowフィーチャーのドメインモデルを定義します。
// すべての値はローソク足から都度算出され、永続化されません。
package entity

import "time"

// Direction は需給の方向です。
type Direction string

const (
	Bullish Direction = "BULLISH"
	Bearish Direction = "BEARISH"
	Neutral Direction = "NEUTRAL"
)

// Sign は BULLISH=+1 / BEARISH=-1 / NEUTRAL=0 を返します。
func (d Direction) Sign() float64 {
	switch d {
	case Bullish:
		return 1
	case Bearish:
		return -1
	}
	return 0
}

// Strength は強度の3段階です。
type Strength string

const (
	Weak     Strength = "WEAK"
	Moderate Strength = "MODERATE"
	Strong   Strength = "STRONG"
)

// Weight は順位付けに使う強度の重み（1 / 0.66 / 0.33）です。
func (s Strength) Weight() float64 {
	switch s {
	case Strong:
		return 1
	case Moderate:
		return 0.66
	}
	return 0.33
}

// Level は流動性・モメンタムの3段階です。
type Level string

const (
	Low    Level = "LOW"
	Medium Level = "MEDIUM"
	High   Level = "HIGH"
)

// Trend は出来高の推移です。
type Trend string

const (
	TrendIncreasing Trend = "INCREASING"
	TrendStable     Trend = "STABLE"
	TrendDecreasing Trend = "DECREASING"
)

// VolumeAnalysis は売買出来高の分解結果です。
type VolumeAnalysis struct {
	BuyVolume   float64   `json:"buyVolume"`
	SellVolume  float64   `json:"sellVolume"`
	TotalVolume float64   `json:"totalVolume"`
	Delta       float64   `json:"delta"`
	DeltaPct    float64   `json:"deltaPct"`
	Direction   Direction `json:"direction"`
	Strength    Strength  `json:"strength"`
	IsFallback  bool      `json:"isFallback"`
}

// Velocity は価格変化速度（%/時間）です。
type Velocity struct {
	PerHour      float64   `json:"perHour"`
	Acceleration float64   `json:"acceleration"`
	Momentum     Level     `json:"momentum"`
	Direction    Direction `json:"direction"`
	IsFallback   bool      `json:"isFallback"`
}

// Absorption は大きな出来高が狭い値幅で吸収された後に反転したパターンです。
type Absorption struct {
	Time        time.Time `json:"time"`
	Price       float64   `json:"price"`
	Direction   Direction `json:"direction"`
	Strength    Strength  `json:"strength"`
	VolumeRatio float64   `json:"volumeRatio"`
}

// ImbalanceType は不均衡の検出方法です。
type ImbalanceType string

const (
	ImbalanceGap      ImbalanceType = "GAP"
	ImbalanceDelta    ImbalanceType = "DELTA"
	ImbalanceVelocity ImbalanceType = "VELOCITY"
)

// Imbalance は価格帯ごとの売買の偏りです。Confidence は [0,1] です。
type Imbalance struct {
	Time       time.Time     `json:"time"`
	Price      float64       `json:"price"`
	Type       ImbalanceType `json:"type"`
	Direction  Direction     `json:"direction"`
	Strength   Strength      `json:"strength"`
	Confidence float64       `json:"confidence"`
	Score      float64       `json:"score"`
}

// LiquidityFactors は流動性スコアの内訳（各 0〜100）です。
type LiquidityFactors struct {
	Spread     float64 `json:"spread"`
	Volume     float64 `json:"volume"`
	Volatility float64 `json:"volatility"`
	Balance    float64 `json:"balance"`
}

// Liquidity は流動性の評価です。BidDepth と AskDepth は直近出来高に占める買い・売りの割合（%）です。
type Liquidity struct {
	Score      float64          `json:"score"`
	Level      Level            `json:"level"`
	Trend      Trend            `json:"trend"`
	BidDepth   float64          `json:"bidDepth"`
	AskDepth   float64          `json:"askDepth"`
	Factors    LiquidityFactors `json:"factors"`
	IsFallback bool             `json:"isFallback"`
}

// ProfileLevel は出来高プロファイルの1価格帯です。
type ProfileLevel struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// VolumeProfile は時間減衰付きの価格別出来高です。
type VolumeProfile struct {
	POC           float64        `json:"poc"`
	POCShare      float64        `json:"pocShare"`
	Strength      Strength       `json:"strength"`
	ValueAreaHigh float64        `json:"valueAreaHigh"`
	ValueAreaLow  float64        `json:"valueAreaLow"`
	Levels        []ProfileLevel `json:"levels"`
	IsFallback    bool           `json:"isFallback"`
}

// Prediction は各要素を統合した方向予測です。Probability は [25,82] に収まります。
type Prediction struct {
	Direction   Direction `json:"direction"`
	Probability float64   `json:"probability"`
	Entry       float64   `json:"entry"`
	Target      float64   `json:"target"`
	Stop        float64   `json:"stop"`
	ATR         float64   `json:"atr"`
	TimingHours float64   `json:"timingHours"`
	Timing      string    `json:"timing"`
	Bullish     float64   `json:"bullish"`
	Bearish     float64   `json:"bearish"`
	Neutral     float64   `json:"neutral"`
	Threshold   float64   `json:"threshold"`
	Factors     []string  `json:"factors"`
	IsFallback  bool      `json:"isFallback"`
}

// OrderFlowResult はオーダーフロー分析の全結果です。
type OrderFlowResult struct {
	Ticker      string         `json:"ticker"`
	Price       float64        `json:"price"`
	CandleCount int            `json:"candleCount"`
	Volume      VolumeAnalysis `json:"volume"`
	Velocity    Velocity       `json:"velocity"`
	Absorptions []Absorption   `json:"absorptions"`
	Imbalances  []Imbalance    `json:"imbalances"`
	Liquidity   Liquidity      `json:"liquidity"`
	Profile     VolumeProfile  `json:"profile"`
	Prediction  Prediction     `json:"prediction"`
	Timestamp   time.Time      `json:"timestamp"`
}
