// Package entity はtechnicalフィーチャーのドメインモデルを定義します。
package entity

import (
	"strings"
	"time"
)

// Signal は指標ごとの売買シグナルです。
type Signal string

const (
	StrongBuy  Signal = "STRONG_BUY"
	Buy        Signal = "BUY"
	Neutral    Signal = "NEUTRAL"
	Sell       Signal = "SELL"
	StrongSell Signal = "STRONG_SELL"
)

// Signals は強気から弱気の順に並んだ全シグナルです。
var Signals = []Signal{StrongBuy, Buy, Neutral, Sell, StrongSell}

// ParseSignal は "Strong Buy" / "strong_buy" / "STRONG-BUY" などの表記を正規化します。
func ParseSignal(s string) (Signal, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, sig := range Signals {
		if norm == string(sig) {
			return sig, true
		}
	}
	return "", false
}

// Score は STRONG_BUY=+2 〜 STRONG_SELL=-2 の数値を返します。
func (s Signal) Score() int {
	switch s {
	case StrongBuy:
		return 2
	case Buy:
		return 1
	case Sell:
		return -1
	case StrongSell:
		return -2
	}
	return 0
}

func (s Signal) IsBullish() bool { return s.Score() > 0 }
func (s Signal) IsBearish() bool { return s.Score() < 0 }
func (s Signal) IsStrong() bool  { return s == StrongBuy || s == StrongSell }

// Family は指標の分類です。
type Family string

const (
	FamilyMovingAverages Family = "moving_averages"
	FamilyOscillators    Family = "oscillators"
)

// IndicatorSignal は1つの指標の値とシグナルです。
type IndicatorSignal struct {
	Name   string  `json:"name"`
	Family Family  `json:"family"`
	Value  float64 `json:"value"`
	Signal Signal  `json:"signal"`
}

// FamilySummary は指標ファミリーごとの集計です。
type FamilySummary struct {
	Buy     int    `json:"buy"`
	Sell    int    `json:"sell"`
	Neutral int    `json:"neutral"`
	Signal  Signal `json:"signal"`
}

// Summarize は family に属する指標を集計します。
// 買い・売りの差が全体の半分以上なら STRONG、それ未満で差があれば BUY/SELL です。
func Summarize(indicators []IndicatorSignal, family Family) FamilySummary {
	var fs FamilySummary
	for _, in := range indicators {
		if in.Family != family {
			continue
		}
		switch {
		case in.Signal.IsBullish():
			fs.Buy++
		case in.Signal.IsBearish():
			fs.Sell++
		default:
			fs.Neutral++
		}
	}
	total := fs.Buy + fs.Sell + fs.Neutral
	diff := fs.Buy - fs.Sell
	switch {
	case total == 0 || diff == 0:
		fs.Signal = Neutral
	case diff*2 >= total:
		fs.Signal = StrongBuy
	case -diff*2 >= total:
		fs.Signal = StrongSell
	case diff > 0:
		fs.Signal = Buy
	default:
		fs.Signal = Sell
	}
	return fs
}

// TechnicalSignal はテクニカル分析の結果です。
type TechnicalSignal struct {
	Ticker         string            `json:"ticker"`
	Timeframe      string            `json:"timeframe"`
	Indicators     []IndicatorSignal `json:"indicators"`
	MovingAverages FamilySummary     `json:"movingAverages"`
	Oscillators    FamilySummary     `json:"oscillators"`
	Recommendation Signal            `json:"recommendation"`
	Confidence     float64           `json:"confidence"`
	IsReal         bool              `json:"isReal"`
	Timestamp      time.Time         `json:"timestamp"`
}
