package analysis

import (
	"math"

	"github.com/newthinker/macross/internal/core"
)

// tradingDaysPerYear is the annualization factor for daily series.
const tradingDaysPerYear = 252

// Result is the immutable summary record a backtest produces. Values
// suffixed Pct are percentages; the ratio and the raw sequences are not.
type Result struct {
	InitialCapital    float64
	FinalValue        float64
	TotalReturnPct    float64
	BuyHoldReturnPct  float64
	BuyHoldFinalValue float64
	ExcessReturnPct   float64
	VolatilityPct     float64
	SharpeRatio       float64
	MaxDrawdownPct    float64
	TotalTrades       uint64
	TradePairs        uint64
	WinRatePct        float64

	Snapshots []core.Snapshot
	Trades    []core.Trade
}

// Beat reports whether the strategy outperformed buy-and-hold.
func (r Result) Beat() bool {
	return r.ExcessReturnPct > 0
}

// Analyze derives summary statistics from a completed simulation.
// The buy-and-hold baseline buys at firstPrice, never trades and never
// pays commission. Every division is guarded: degenerate inputs (zero
// volatility, zero trade pairs) resolve to zero, not errors.
func Analyze(snapshots []core.Snapshot, trades []core.Trade, initialCapital, firstPrice, lastPrice float64) Result {
	r := Result{
		InitialCapital: initialCapital,
		FinalValue:     initialCapital,
		Snapshots:      snapshots,
		Trades:         trades,
		TotalTrades:    uint64(len(trades)),
	}

	if len(snapshots) > 0 {
		r.FinalValue = snapshots[len(snapshots)-1].PortfolioValue
	}

	if initialCapital > 0 {
		r.TotalReturnPct = (r.FinalValue - initialCapital) / initialCapital * 100
	}

	var buyHoldReturn float64
	if firstPrice > 0 {
		buyHoldReturn = (lastPrice - firstPrice) / firstPrice
	}
	r.BuyHoldReturnPct = buyHoldReturn * 100
	r.BuyHoldFinalValue = initialCapital * (1 + buyHoldReturn)
	r.ExcessReturnPct = r.TotalReturnPct - r.BuyHoldReturnPct

	returns := periodReturns(snapshots)
	volatility := sampleStdDev(returns) * math.Sqrt(tradingDaysPerYear)
	r.VolatilityPct = volatility * 100

	// The annualization factors cancel; the subtraction of a risk-free
	// rate is deliberately absent from this ratio.
	if volatility > 0 {
		totalReturn := r.TotalReturnPct / 100
		r.SharpeRatio = (totalReturn * tradingDaysPerYear) / (volatility * tradingDaysPerYear)
	}

	r.MaxDrawdownPct = maxDrawdown(snapshots) * 100

	r.TradePairs = uint64(len(trades) / 2)
	r.WinRatePct = winRate(trades) * 100

	return r
}

// periodReturns computes value_i / value_{i-1} - 1 for each period after
// the first.
func periodReturns(snapshots []core.Snapshot) []float64 {
	if len(snapshots) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		prev := snapshots[i-1].PortfolioValue
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, snapshots[i].PortfolioValue/prev-1)
	}
	return returns
}

// sampleStdDev is the n-1 standard deviation of the series.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)-1))
}

// maxDrawdown returns the most negative decline from the running peak,
// as a negative fraction (0 for a series that never declines).
func maxDrawdown(snapshots []core.Snapshot) float64 {
	var maxDD float64
	var peak float64

	for _, s := range snapshots {
		if s.PortfolioValue > peak {
			peak = s.PortfolioValue
		}
		if peak > 0 {
			dd := (s.PortfolioValue - peak) / peak
			if dd < maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// winRate pairs trades chronologically as (Buy, Sell) and counts a pair
// profitable when proceeds exceed cost. An unmatched trailing Buy (open
// position at series end) never forms a pair.
func winRate(trades []core.Trade) float64 {
	pairs := len(trades) / 2
	if pairs == 0 {
		return 0
	}

	profitable := 0
	for i := 0; i+1 < len(trades); i += 2 {
		if trades[i+1].Proceeds > trades[i].Cost {
			profitable++
		}
	}

	return float64(profitable) / float64(pairs)
}
