// Package score はスコアリング共通の数値ヘルパーを提供します。
package score

import "math"

// Clamp は v を [min,max] に収めます。NaN は min として扱います。
func Clamp(v, min, max float64) float64 {
	if math.IsNaN(v) || v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Confidence は信頼度を [0,100] に収めます。
func Confidence(v float64) float64 {
	return Clamp(v, 0, 100)
}

// Round2 は小数第2位に丸めます。
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Mean は平均を返します。空の場合は 0 です。
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
