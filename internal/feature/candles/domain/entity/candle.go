// Package entity defines the domain models for the candles feature.
package entity

import (
	"slices"
	"time"
)

// Candle represents OHLCV data for one instrument at a specific interval.
type Candle struct {
	Symbol   string    // Instrument code (e.g., "XAUUSD", "AAPL")
	Interval string    // Time interval (e.g., "1h", "1day")
	Time     time.Time // Timestamp for the start of this candle period
	Open     float64   // Opening price
	High     float64   // Highest price during this period
	Low      float64   // Lowest price during this period
	Close    float64   // Closing price
	Volume   float64   // Traded volume; FX feeds without volume report 0
}

// Range は高値と安値の差を返します。
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// IsBullish は陽線かどうかを返します。
func (c Candle) IsBullish() bool {
	return c.Close >= c.Open
}

// SortAscending は時刻の昇順に並べ替えた新しいスライスを返します。
// ストアは新しい順で返すため、分析系はこれを通してから使います。
func SortAscending(cs []Candle) []Candle {
	out := slices.Clone(cs)
	slices.SortStableFunc(out, func(a, b Candle) int {
		return a.Time.Compare(b.Time)
	})
	return out
}

// LastClose は最も新しい足の終値を返します。並び順は問いません。
func LastClose(cs []Candle) (float64, bool) {
	if len(cs) == 0 {
		return 0, false
	}
	latest := cs[0]
	for _, c := range cs[1:] {
		if c.Time.After(latest.Time) {
			latest = c
		}
	}
	return latest.Close, latest.Close > 0
}
