package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Clamp(-5, 0, 100))
	assert.Equal(t, 100.0, Clamp(150, 0, 100))
	assert.Equal(t, 42.0, Clamp(42, 0, 100))
	assert.Equal(t, 25.0, Clamp(math.NaN(), 25, 82))
}

func TestConfidence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100.0, Confidence(120))
	assert.Equal(t, 0.0, Confidence(-1))
}

func TestRound2AndMean(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 60.0, Round2(0.7*60+0.2*65+0.1*50))
	assert.Equal(t, 1.23, Round2(1.2345))
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}
