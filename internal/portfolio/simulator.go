package portfolio

import (
	"fmt"
	"math"

	"github.com/newthinker/macross/internal/core"
)

// Simulator replays a (price, signal) stream through an all-in/all-out
// single-asset portfolio. It holds either nothing or one whole-share
// long position, executes at most one trade per period, and silently
// ignores signals the current position state forbids.
type Simulator struct {
	initialCapital float64
	commission     float64
}

// New creates a Simulator. Capital must be positive and the commission
// rate must lie in [0, 1).
func New(initialCapital, commission float64) (*Simulator, error) {
	if initialCapital <= 0 || math.IsNaN(initialCapital) {
		return nil, core.WrapError(core.ErrInvalidCapital,
			fmt.Errorf("got %f", initialCapital))
	}
	if commission < 0 || commission >= 1 || math.IsNaN(commission) {
		return nil, core.WrapError(core.ErrInvalidCommission,
			fmt.Errorf("got %f", commission))
	}
	return &Simulator{
		initialCapital: initialCapital,
		commission:     commission,
	}, nil
}

// InitialCapital returns the configured starting cash.
func (s *Simulator) InitialCapital() float64 {
	return s.initialCapital
}

// Run executes the simulation over the chronological stream. It returns
// one snapshot per input period and the chronological trade log.
//
// Commission bases are asymmetric on purpose: a Buy pays commission on
// total current cash, a Sell pays it on sale proceeds. Both affect net
// P&L and are part of the reproducible contract.
func (s *Simulator) Run(prices []core.PricePoint, signals []core.Signal) ([]core.Snapshot, []core.Trade) {
	cash := s.initialCapital
	var shares uint64
	position := core.PositionFlat

	snapshots := make([]core.Snapshot, 0, len(prices))
	var trades []core.Trade

	for i, p := range prices {
		action := core.ActionHold
		if i < len(signals) {
			action = signals[i].Action
		}

		switch {
		case action == core.ActionBuy && position == core.PositionFlat:
			commissionCost := cash * s.commission
			availableCash := cash - commissionCost
			sharesToBuy := uint64(math.Floor(availableCash / p.Price))

			// A Buy we cannot afford a single share of is a no-op,
			// not an error; the position stays flat.
			if sharesToBuy > 0 {
				cost := float64(sharesToBuy) * p.Price
				cash -= cost + commissionCost
				shares = sharesToBuy
				position = core.PositionInvested

				trades = append(trades, core.Trade{
					Timestamp:   p.Timestamp,
					Action:      core.ActionBuy,
					Shares:      sharesToBuy,
					Price:       p.Price,
					Cost:        cost,
					Commission:  commissionCost,
					CashAfter:   cash,
					SharesAfter: shares,
				})
			}

		case action == core.ActionSell && position == core.PositionInvested:
			proceeds := float64(shares) * p.Price
			commissionCost := proceeds * s.commission
			cash += proceeds - commissionCost

			trades = append(trades, core.Trade{
				Timestamp:   p.Timestamp,
				Action:      core.ActionSell,
				Shares:      shares,
				Price:       p.Price,
				Proceeds:    proceeds,
				Commission:  commissionCost,
				CashAfter:   cash,
				SharesAfter: 0,
			})

			shares = 0
			position = core.PositionFlat
		}

		snapshots = append(snapshots, core.Snapshot{
			Timestamp:      p.Timestamp,
			Cash:           cash,
			Shares:         shares,
			Price:          p.Price,
			PortfolioValue: cash + float64(shares)*p.Price,
		})
	}

	return snapshots, trades
}
