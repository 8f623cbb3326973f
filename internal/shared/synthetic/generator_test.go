package synthetic

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_SameSeedSameSequence(t *testing.T) {
	t.Parallel()

	a := New(42)
	b := New(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestGenerator_JitterWithinBand(t *testing.T) {
	t.Parallel()

	g := New(7)
	for i := 0; i < 1000; i++ {
		v := g.Jitter(2000, 0.005)
		assert.GreaterOrEqual(t, v, 1990.0)
		assert.LessOrEqual(t, v, 2010.0)
	}
}

func TestGenerator_Between(t *testing.T) {
	t.Parallel()

	g := New(3)
	for i := 0; i < 500; i++ {
		v := g.Between(40, 60)
		assert.GreaterOrEqual(t, v, 40.0)
		assert.Less(t, v, 60.0)
	}
	assert.Equal(t, 5.0, g.Between(5, 5))
}

func TestGenerator_Intn(t *testing.T) {
	t.Parallel()

	g := New(9)
	assert.Equal(t, 0, g.Intn(0))
	for i := 0; i < 100; i++ {
		v := g.Intn(5)
		assert.True(t, v >= 0 && v < 5)
	}
}

func TestGenerator_ConcurrentUse(t *testing.T) {
	t.Parallel()

	g := New(11)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = g.Chance(0.5)
			}
		}()
	}
	wg.Wait()
}
