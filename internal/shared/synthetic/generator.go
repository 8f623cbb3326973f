// Package synthetic はプロバイダー障害時のフォールバック値を生成する乱数源を提供します。
// シードを固定するとテストで正確な値を検証できます。
package synthetic

import (
	"math/rand"
	"sync"
	"time"
)

// Source はフォールバック生成に使う乱数のインターフェースです。
type Source interface {
	Float64() float64
	Between(min, max float64) float64
	Jitter(base, pct float64) float64
	Intn(n int) int
	Chance(p float64) bool
}

// Generator はゴルーチンセーフな擬似乱数ジェネレーターです。
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

var _ Source = (*Generator)(nil)

// New は指定シードで Generator を生成します。seed が 0 の場合は現在時刻を使用します。
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Float64 は [0,1) の値を返します。
func (g *Generator) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}

// Between は [min,max) の値を返します。
func (g *Generator) Between(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + g.Float64()*(max-min)
}

// Jitter は base を ±pct の範囲でランダムにずらした値を返します（pct=0.005 なら ±0.5%）。
func (g *Generator) Jitter(base, pct float64) float64 {
	return base * (1 + (2*g.Float64()-1)*pct)
}

// Intn は [0,n) の整数を返します。n <= 0 の場合は 0 を返します。
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}

// Chance は確率 p で true を返します。
func (g *Generator) Chance(p float64) bool {
	return g.Float64() < p
}
