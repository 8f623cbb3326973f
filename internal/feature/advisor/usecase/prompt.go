package usecase

import (
	"fmt"
	"strings"
	"time"

	analysis "trade_advisor/internal/feature/analysis/domain/entity"
)

const basePrompt = `You are a trading assistant for the instrument %s.
Answer concisely using the latest analysis below. Quote concrete price levels when relevant.
Say so when the data is simulated. This is not financial advice; remind the user to manage risk.`

// BuildSystemPrompt は最新の分析結果をプレーンテキストで埋め込んだシステムプロンプトを作ります。
// rec が nil の場合は分析未実施であることを伝えます。
func BuildSystemPrompt(ticker string, rec *analysis.AnalysisRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, basePrompt, ticker)
	b.WriteString("\n\n")

	if rec == nil {
		b.WriteString("No analysis has been run for this instrument yet. Answer from general knowledge and suggest running an analysis.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Latest analysis (%s):\n", rec.CreatedAt.UTC().Format(time.RFC3339))

	q := rec.Strategy.Quote
	fmt.Fprintf(&b, "- Price: bid %g / ask %g / mid %g, spread %.1f pips, %s, source status %s\n",
		q.Quote.Bid, q.Quote.Ask, q.Quote.Mid, q.Quote.SpreadPips, liveOrSimulated(q.Quote.IsReal), q.Status)

	tech := rec.Strategy.Technical
	fmt.Fprintf(&b, "- Technical (%s): %s at %.0f%% confidence, moving averages %s, oscillators %s, %s\n",
		tech.Timeframe, tech.Recommendation, tech.Confidence,
		tech.MovingAverages.Signal, tech.Oscillators.Signal, liveOrSimulated(tech.IsReal))

	if ind := rec.Strategy.Indicators; ind != nil {
		fmt.Fprintf(&b, "- Indicators (%s): SMA20 %g, RSI14 %.1f, VWAP %g\n", ind.Interval, ind.SMA20, ind.RSI14, ind.VWAP)
	}

	v := rec.Strategy.Verdict
	fmt.Fprintf(&b, "- Verdict: %s, %s, confidence %.0f%%, risk %s. Entry: %s\n",
		v.Direction, v.Recommendation, v.Confidence, v.RiskLevel, v.EntryStrategy)

	of := rec.OrderFlow
	p := of.Prediction
	if p.IsFallback {
		b.WriteString("- Order flow: not enough candle data\n")
	} else {
		fmt.Fprintf(&b, "- Order flow: %s %.0f%% (target %g, stop %g, %s), liquidity %s %s, POC %g, delta %.1f%%\n",
			p.Direction, p.Probability, p.Target, p.Stop, p.Timing,
			of.Liquidity.Level, of.Liquidity.Trend, of.Profile.POC, of.Volume.DeltaPct)
		for _, im := range of.Imbalances {
			fmt.Fprintf(&b, "  - %s imbalance at %g (%s, %s)\n", im.Type, im.Price, im.Direction, im.Strength)
		}
	}

	n := rec.News
	fmt.Fprintf(&b, "- News risk: %s (%.0f/100), %s\n", n.Level, n.Score, liveOrSimulated(n.IsReal))
	for _, h := range n.Headlines {
		fmt.Fprintf(&b, "  - %s (%s)\n", h.Title, h.Source)
	}

	r := rec.Recommendation
	if r.IsTrade() {
		fmt.Fprintf(&b, "- Trade: %s at %g, stop %g, target %g, R:R %g, size %g%%, confidence %.1f%%, valid until %s\n",
			r.Direction, r.Entry, r.Stop, r.Target, r.RiskReward, r.PositionSizePct, r.Confidence,
			r.ValidUntil.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintf(&b, "- Trade: none (confidence %.1f%%). %s\n", r.Confidence, r.Hint)
	}
	return b.String()
}

func liveOrSimulated(real bool) string {
	if real {
		return "live"
	}
	return "simulated"
}
