package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSignal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Signal
		ok   bool
	}{
		{"Strong Buy", StrongBuy, true},
		{"strong_sell", StrongSell, true},
		{"STRONG-BUY", StrongBuy, true},
		{" neutral ", Neutral, true},
		{"sell", Sell, true},
		{"hold", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSignal(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	ma := func(s Signal) IndicatorSignal { return IndicatorSignal{Family: FamilyMovingAverages, Signal: s} }
	osc := func(s Signal) IndicatorSignal { return IndicatorSignal{Family: FamilyOscillators, Signal: s} }

	tests := []struct {
		name string
		in   []IndicatorSignal
		want FamilySummary
	}{
		{"empty", nil, FamilySummary{Signal: Neutral}},
		{"strong buy", []IndicatorSignal{ma(Buy), ma(StrongBuy), ma(Neutral), osc(Sell)}, FamilySummary{Buy: 2, Neutral: 1, Signal: StrongBuy}},
		{"buy", []IndicatorSignal{ma(Buy), ma(Neutral), ma(Neutral), ma(Neutral)}, FamilySummary{Buy: 1, Neutral: 3, Signal: Buy}},
		{"balanced", []IndicatorSignal{ma(Buy), ma(Sell)}, FamilySummary{Buy: 1, Sell: 1, Signal: Neutral}},
		{"strong sell", []IndicatorSignal{ma(Sell), ma(StrongSell), ma(Neutral)}, FamilySummary{Sell: 2, Neutral: 1, Signal: StrongSell}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Summarize(tt.in, FamilyMovingAverages))
		})
	}
}

func TestLevelForScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RiskLow, LevelForScore(0))
	assert.Equal(t, RiskMedium, LevelForScore(35))
	assert.Equal(t, RiskHigh, LevelForScore(65))
}
