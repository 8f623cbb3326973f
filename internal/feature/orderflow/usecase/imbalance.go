package usecase

import (
	"cmp"
	"math"
	"slices"

	candle "trade_advisor/internal/feature/candles/domain/entity"
	"trade_advisor/internal/feature/orderflow/domain/entity"
	"trade_advisor/internal/shared/score"
)

// 不均衡検出のパラメータ
const (
	MinImbalanceConfidence = 0.5
	MaxImbalances          = 5
	ImbalanceWindow        = 50

	GapMinPct      = 0.1
	GapModeratePct = 0.25
	GapStrongPct   = 0.5

	DeltaImbalancePct    = 60.0
	DeltaImbalanceVolume = 1.2

	VelocitySpikeRatio = 2.0

	// ProximityBand は現在価格からの距離で近接度が0になる割合（2%）です。
	ProximityBand = 0.02

	imbalanceConfidenceWeight = 0.5
	imbalanceStrengthWeight   = 0.3
	imbalanceProximityWeight  = 0.2
)

// detectImbalances はギャップ・デルタ・速度の3つの検出結果を統合し、
// 信頼度 0.5 以上のものをスコア順に上位 MaxImbalances 件返します。
func detectImbalances(cs []candle.Candle, vols []float64, price float64) []entity.Imbalance {
	out := []entity.Imbalance{}
	if len(cs) < MinCandles || price <= 0 {
		return out
	}
	cs, vols = tail(cs, ImbalanceWindow), tail(vols, ImbalanceWindow)

	candidates := gapImbalances(cs)
	candidates = append(candidates, deltaImbalances(cs, vols)...)
	candidates = append(candidates, velocityImbalances(cs)...)

	for _, im := range candidates {
		if im.Confidence < MinImbalanceConfidence {
			continue
		}
		proximity := math.Max(0, 1-math.Abs(im.Price-price)/price/ProximityBand)
		im.Score = score.Round2(imbalanceConfidenceWeight*im.Confidence +
			imbalanceStrengthWeight*im.Strength.Weight() +
			imbalanceProximityWeight*proximity)
		out = append(out, im)
	}

	slices.SortStableFunc(out, func(a, b entity.Imbalance) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out[:min(len(out), MaxImbalances)]
}

// gapImbalances は前の終値と次の始値の間の窓を検出します。
func gapImbalances(cs []candle.Candle) []entity.Imbalance {
	var out []entity.Imbalance
	for i := 1; i < len(cs); i++ {
		prev, cur := cs[i-1], cs[i]
		if prev.Close <= 0 {
			continue
		}
		gap := cur.Open - prev.Close
		pct := math.Abs(gap) / prev.Close * 100
		if pct < GapMinPct {
			continue
		}
		strength := entity.Weak
		switch {
		case pct >= GapStrongPct:
			strength = entity.Strong
		case pct >= GapModeratePct:
			strength = entity.Moderate
		}
		out = append(out, entity.Imbalance{
			Time:       cur.Time,
			Price:      (cur.Open + prev.Close) / 2,
			Type:       entity.ImbalanceGap,
			Direction:  directionFor(gap, 0),
			Strength:   strength,
			Confidence: score.Clamp(pct/GapStrongPct, 0, 1),
		})
	}
	return out
}

// deltaImbalances は買い・売りの偏りが大きく、出来高も平均以上の足を検出します。
func deltaImbalances(cs []candle.Candle, vols []float64) []entity.Imbalance {
	avgVol := score.Mean(vols)
	if avgVol <= 0 {
		return nil
	}
	var out []entity.Imbalance
	for i, c := range cs {
		deltaPct := (2*buyShare(c) - 1) * 100
		ratio := vols[i] / avgVol
		if math.Abs(deltaPct) < DeltaImbalancePct || ratio < DeltaImbalanceVolume {
			continue
		}
		strength := entity.Moderate
		if ratio >= 2 && math.Abs(deltaPct) >= 80 {
			strength = entity.Strong
		}
		out = append(out, entity.Imbalance{
			Time:       c.Time,
			Price:      c.Close,
			Type:       entity.ImbalanceDelta,
			Direction:  directionFor(deltaPct, 0),
			Strength:   strength,
			Confidence: score.Clamp(0.5*math.Abs(deltaPct)/100+0.5*math.Min(ratio/2, 1), 0, 1),
		})
	}
	return out
}

// velocityImbalances は変化率が平均の VelocitySpikeRatio 倍を超えた足を検出します。
func velocityImbalances(cs []candle.Candle) []entity.Imbalance {
	if len(cs) < 2 {
		return nil
	}
	changes := make([]float64, len(cs)-1)
	abs := make([]float64, len(cs)-1)
	for i := 1; i < len(cs); i++ {
		if cs[i-1].Close > 0 {
			changes[i-1] = (cs[i].Close - cs[i-1].Close) / cs[i-1].Close * 100
		}
		abs[i-1] = math.Abs(changes[i-1])
	}
	avg := score.Mean(abs)
	if avg <= 0 {
		return nil
	}

	var out []entity.Imbalance
	for i, ch := range changes {
		ratio := abs[i] / avg
		if ratio < VelocitySpikeRatio {
			continue
		}
		c := cs[i+1]
		strength := entity.Moderate
		if ratio >= 3 {
			strength = entity.Strong
		}
		out = append(out, entity.Imbalance{
			Time:       c.Time,
			Price:      (c.High + c.Low) / 2,
			Type:       entity.ImbalanceVelocity,
			Direction:  directionFor(ch, 0),
			Strength:   strength,
			Confidence: score.Clamp(ratio/4, 0, 1),
		})
	}
	return out
}
