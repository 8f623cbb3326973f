package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	gold, ok := Lookup("xau/usd")
	assert.True(t, ok)
	assert.Equal(t, "XAUUSD", gold.Code)
	assert.Equal(t, AssetMetal, gold.AssetClass)
	assert.Equal(t, 2650.0, gold.BasePrice)

	unknown, ok := Lookup("NZDCAD")
	assert.False(t, ok)
	assert.Equal(t, AssetForex, unknown.AssetClass)
	assert.Equal(t, UnknownBasePrice, unknown.BasePrice)

	stock, ok := Lookup("MSFT")
	assert.False(t, ok)
	assert.Equal(t, AssetStock, stock.AssetClass)
}

func TestGuess_JPYPip(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.01, Guess("EURJPY").PipSize)
	assert.Equal(t, 0.0001, Guess("EURGBP").PipSize)
}

func TestInstrument_DecimalsAndSpread(t *testing.T) {
	t.Parallel()

	eur, _ := Lookup("EURUSD")
	assert.Equal(t, int32(5), eur.Decimals())
	assert.InDelta(t, 1.5, eur.SpreadPips(1.08500, 1.08515), 1e-9)

	gold, _ := Lookup("XAUUSD")
	assert.Equal(t, int32(2), gold.Decimals())
	assert.InDelta(t, 3.0, gold.SpreadPips(2650.0, 2650.3), 1e-9)

	jpy, _ := Lookup("USDJPY")
	assert.Equal(t, int32(3), jpy.Decimals())
}

func TestDefaults_AreActiveCopies(t *testing.T) {
	t.Parallel()

	d := Defaults()
	assert.NotEmpty(t, d)
	for _, i := range d {
		assert.True(t, i.IsActive, i.Code)
	}
	d[0].BasePrice = -1
	again := Defaults()
	assert.NotEqual(t, -1.0, again[0].BasePrice)
}
