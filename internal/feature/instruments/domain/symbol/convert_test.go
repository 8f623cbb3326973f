package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOanda(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code    string
		want    string
		wantErr bool
	}{
		{"XAUUSD", "XAU_USD", false},
		{"eurusd", "EUR_USD", false},
		{"EUR/USD", "EUR_USD", false},
		{"BTCUSD", "BTC_USD", false},
		{"SPX500", "SPX500_USD", false},
		{"AAPL", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			got, err := Oanda(tt.code)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTwelveData(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "XAU/USD", TwelveData("XAUUSD"))
	assert.Equal(t, "BTC/USD", TwelveData("btcusd"))
	assert.Equal(t, "SPX", TwelveData("SPX500"))
	assert.Equal(t, "AAPL", TwelveData("aapl"))
}

func TestAlphaVantageAndProxy(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "XAUUSD", AlphaVantage("xau_usd"))
	assert.Equal(t, "SPY", AlphaVantage("SPX500"))
	assert.Equal(t, "TSLA", AlphaVantage("tsla"))
	assert.Equal(t, "GBPUSD", Proxy(" gbp/usd "))
}
