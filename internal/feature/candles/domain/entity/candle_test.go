package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortAscending(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	in := []Candle{{Time: t0.Add(2 * time.Hour)}, {Time: t0}, {Time: t0.Add(time.Hour)}}

	out := SortAscending(in)

	assert.Equal(t, t0, out[0].Time)
	assert.Equal(t, t0.Add(2*time.Hour), out[2].Time)
	// 元のスライスは変更しない
	assert.Equal(t, t0.Add(2*time.Hour), in[0].Time)
}

func TestCandle_RangeAndDirection(t *testing.T) {
	t.Parallel()

	c := Candle{Open: 10, High: 12, Low: 9, Close: 11}
	assert.Equal(t, 3.0, c.Range())
	assert.True(t, c.IsBullish())
	assert.False(t, Candle{Open: 11, Close: 10}.IsBullish())
}

func TestLastClose(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		in     []Candle
		want   float64
		wantOK bool
	}{
		{"newest first", []Candle{{Time: t0.Add(time.Hour), Close: 421}, {Time: t0, Close: 419}}, 421, true},
		{"oldest first", []Candle{{Time: t0, Close: 419}, {Time: t0.Add(time.Hour), Close: 421}}, 421, true},
		{"empty", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LastClose(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
