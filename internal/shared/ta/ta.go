// Package ta はローソク足系列からテクニカル指標を計算する薄いラッパーです。
// go-talib は期間に満たない入力で範囲外アクセスするため、長さを必ずここで確認します。
package ta

import (
	"math"

	"github.com/markcheno/go-talib"

	"trade_advisor/internal/feature/candles/domain/entity"
)

// Series は時刻昇順のOHLCV配列です。
type Series struct {
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// FromCandles は昇順に並んだローソク足から Series を作ります。
func FromCandles(cs []entity.Candle) Series {
	s := Series{
		Open:   make([]float64, len(cs)),
		High:   make([]float64, len(cs)),
		Low:    make([]float64, len(cs)),
		Close:  make([]float64, len(cs)),
		Volume: make([]float64, len(cs)),
	}
	for i, c := range cs {
		s.Open[i] = c.Open
		s.High[i] = c.High
		s.Low[i] = c.Low
		s.Close[i] = c.Close
		s.Volume[i] = c.Volume
	}
	return s
}

// Len は系列の長さを返します。
func (s Series) Len() int { return len(s.Close) }

// LastSMA は単純移動平均の最新値を返します。データ不足なら false です。
func LastSMA(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	return last(talib.Sma(closes, period))
}

// LastRSI はRSIの最新値を返します。period+1 本以上が必要です。
func LastRSI(closes []float64, period int) (float64, bool) {
	if period <= 1 || len(closes) <= period {
		return 0, false
	}
	return last(talib.Rsi(closes, period))
}

// LastATR はATRの最新値を返します。period+1 本以上が必要です。
func LastATR(s Series, period int) (float64, bool) {
	if period <= 0 || s.Len() <= period {
		return 0, false
	}
	return last(talib.Atr(s.High, s.Low, s.Close, period))
}

// VWAP は典型価格 (H+L+C)/3 の出来高加重平均を返します。
// 出来高がすべて0（FXなど）の場合は典型価格の単純平均を返します。
func VWAP(s Series) (float64, bool) {
	if s.Len() == 0 {
		return 0, false
	}
	var pv, vol, sum float64
	for i := range s.Close {
		tp := (s.High[i] + s.Low[i] + s.Close[i]) / 3
		pv += tp * s.Volume[i]
		vol += s.Volume[i]
		sum += tp
	}
	if vol > 0 {
		return pv / vol, true
	}
	return sum / float64(s.Len()), true
}

func last(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	v := xs[len(xs)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
