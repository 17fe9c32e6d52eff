package core

import "time"

// PricePoint is one period of an ordered historical price series.
// Timestamps are strictly increasing and prices are positive; validation
// happens at the pipeline boundary, not here.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
	Volume    uint64
}

// Action represents a trading signal action
type Action string

const (
	ActionHold Action = "hold"
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Signal is the per-period output of the crossover detector.
// At most one non-Hold signal exists per timestamp.
type Signal struct {
	Timestamp time.Time
	Action    Action
	Price     float64 // Close price at signal generation
}

// Position is the simulator's binary holding state
type Position string

const (
	PositionFlat     Position = "flat"
	PositionInvested Position = "invested"
)

// Trade records one executed order. Cost is set on Buy trades,
// Proceeds on Sell trades; both are gross of commission.
type Trade struct {
	Timestamp   time.Time
	Action      Action
	Shares      uint64
	Price       float64
	Commission  float64
	Cost        float64
	Proceeds    float64
	CashAfter   float64
	SharesAfter uint64
}

// Snapshot is the end-of-period portfolio state, one per input period.
type Snapshot struct {
	Timestamp      time.Time
	Cash           float64
	Shares         uint64
	Price          float64
	PortfolioValue float64
}

// IsValid checks if the price point has required fields
func (p PricePoint) IsValid() bool {
	return !p.Timestamp.IsZero() && p.Price > 0
}

// Value returns cash plus the mark-to-market position
func (s Snapshot) Value() float64 {
	return s.Cash + float64(s.Shares)*s.Price
}
