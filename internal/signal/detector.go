package signal

import (
	"time"

	"github.com/newthinker/macross/internal/core"
	"github.com/newthinker/macross/internal/indicator"
)

// Detect walks the aligned moving-average pair and emits one signal per
// period. Periods before both averages are defined emit Hold. A signal
// at period i depends only on periods <= i.
//
// Golden Cross: short was at or below long, now strictly above -> Buy.
// Death Cross: short was at or above long, now strictly below -> Sell.
// An exact tie (short == long) on the new side never fires; the cross
// has to break strictly through the long average.
func Detect(series []core.PricePoint, points []indicator.Point) []core.Signal {
	signals := make([]core.Signal, len(points))

	prev := -1 // index of the previous period with both averages defined
	for i, p := range points {
		signals[i] = core.Signal{
			Timestamp: p.Timestamp,
			Action:    core.ActionHold,
		}
		if i < len(series) {
			signals[i].Price = series[i].Price
		}

		if !p.Defined() {
			continue
		}
		if prev >= 0 {
			pp := points[prev]
			switch {
			case pp.Short <= pp.Long && p.Short > p.Long:
				signals[i].Action = core.ActionBuy
			case pp.Short >= pp.Long && p.Short < p.Long:
				signals[i].Action = core.ActionSell
			}
		}
		prev = i
	}

	return signals
}

// Summary describes the signal stream independent of any simulation.
type Summary struct {
	BuySignals      int
	SellSignals     int
	TotalSignals    int
	TimeInMarketPct float64 // share of periods a long position would be held
	AvgDaysBetween  float64 // mean gap between consecutive non-Hold signals
	LastBuy         time.Time
	LastSell        time.Time
}

// Summarize folds the signal stream under the all-in/all-out position
// rule: a Buy opens the position, a Sell closes it, everything else
// carries the prior state forward.
func Summarize(signals []core.Signal) Summary {
	var s Summary

	invested := false
	daysIn := 0
	var last time.Time
	var gapSum float64
	gaps := 0

	for _, sig := range signals {
		switch sig.Action {
		case core.ActionBuy:
			s.BuySignals++
			s.LastBuy = sig.Timestamp
			invested = true
		case core.ActionSell:
			s.SellSignals++
			s.LastSell = sig.Timestamp
			invested = false
		}

		if sig.Action != core.ActionHold {
			if !last.IsZero() {
				gapSum += sig.Timestamp.Sub(last).Hours() / 24
				gaps++
			}
			last = sig.Timestamp
		}

		if invested {
			daysIn++
		}
	}

	s.TotalSignals = s.BuySignals + s.SellSignals
	if len(signals) > 0 {
		s.TimeInMarketPct = float64(daysIn) / float64(len(signals)) * 100
	}
	if gaps > 0 {
		s.AvgDaysBetween = gapSum / float64(gaps)
	}

	return s
}
