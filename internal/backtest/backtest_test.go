package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/macross/internal/core"
)

func makeSeries(prices []float64) []core.PricePoint {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make([]core.PricePoint, len(prices))
	for i, p := range prices {
		series[i] = core.PricePoint{Timestamp: base.AddDate(0, 0, i), Price: p}
	}
	return series
}

func validParams() Params {
	return Params{
		Symbol:         "AAPL",
		ShortWindow:    2,
		LongWindow:     4,
		InitialCapital: 10000,
		Commission:     0.001,
	}
}

func TestRunner_Run_InvalidWindow(t *testing.T) {
	r := NewRunner(nil, nil)
	params := validParams()
	params.ShortWindow = 200
	params.LongWindow = 50

	_, err := r.Run(context.Background(), params, makeSeries([]float64{100, 101, 102}))
	if !errors.Is(err, core.ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestRunner_Run_InvalidCapital(t *testing.T) {
	r := NewRunner(nil, nil)
	params := validParams()
	params.InitialCapital = -1

	_, err := r.Run(context.Background(), params, makeSeries([]float64{100, 101, 102}))
	if !errors.Is(err, core.ErrInvalidCapital) {
		t.Errorf("expected ErrInvalidCapital, got %v", err)
	}
}

func TestRunner_Run_InvalidCommission(t *testing.T) {
	r := NewRunner(nil, nil)
	params := validParams()
	params.Commission = 1.5

	_, err := r.Run(context.Background(), params, makeSeries([]float64{100, 101, 102}))
	if !errors.Is(err, core.ErrInvalidCommission) {
		t.Errorf("expected ErrInvalidCommission, got %v", err)
	}
}

func TestRunner_Run_EmptySeries(t *testing.T) {
	r := NewRunner(nil, nil)

	_, err := r.Run(context.Background(), validParams(), nil)
	if !errors.Is(err, core.ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestRunner_Run_NonMonotonicInput(t *testing.T) {
	r := NewRunner(nil, nil)

	series := makeSeries([]float64{100, 101, 102})
	series[2].Timestamp = series[0].Timestamp // out of order

	_, err := r.Run(context.Background(), validParams(), series)
	if !errors.Is(err, core.ErrNonMonotonicInput) {
		t.Errorf("expected ErrNonMonotonicInput, got %v", err)
	}
}

func TestRunner_Run_DuplicateTimestamp(t *testing.T) {
	r := NewRunner(nil, nil)

	series := makeSeries([]float64{100, 101, 102})
	series[1].Timestamp = series[0].Timestamp

	_, err := r.Run(context.Background(), validParams(), series)
	if !errors.Is(err, core.ErrNonMonotonicInput) {
		t.Errorf("expected ErrNonMonotonicInput for duplicate, got %v", err)
	}
}

func TestRunner_Run_ShortSeriesIsWarningOnly(t *testing.T) {
	r := NewRunner(nil, nil)
	params := validParams()
	params.LongWindow = 50 // longer than the series

	res, err := r.Run(context.Background(), params, makeSeries([]float64{100, 101, 102}))
	if err != nil {
		t.Fatalf("short series should not abort: %v", err)
	}

	// No averages ever define, so the run is all-Hold.
	if res.Signals.TotalSignals != 0 {
		t.Errorf("expected no signals, got %d", res.Signals.TotalSignals)
	}
	if res.Performance.TotalTrades != 0 {
		t.Errorf("expected no trades, got %d", res.Performance.TotalTrades)
	}
	if len(res.Performance.Snapshots) != 3 {
		t.Errorf("expected one snapshot per period, got %d", len(res.Performance.Snapshots))
	}
}

func TestRunner_Run_GoldenCrossOpensPosition(t *testing.T) {
	r := NewRunner(nil, nil)

	// Decline, sharp recovery, then a steady rise: one golden cross,
	// never a death cross, so the position stays open to the end.
	series := makeSeries([]float64{100, 95, 90, 85, 80, 120, 125, 130, 135})

	res, err := r.Run(context.Background(), validParams(), series)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Performance.TotalTrades != 1 {
		t.Fatalf("expected 1 trade, got %d", res.Performance.TotalTrades)
	}
	if res.Performance.Trades[0].Action != core.ActionBuy {
		t.Errorf("expected a Buy, got %s", res.Performance.Trades[0].Action)
	}

	// The unmatched trailing Buy forms no pair.
	if res.Performance.TradePairs != 0 {
		t.Errorf("TradePairs = %d, want 0", res.Performance.TradePairs)
	}
	if res.Performance.WinRatePct != 0 {
		t.Errorf("WinRatePct = %f, want 0", res.Performance.WinRatePct)
	}

	final := res.Performance.Snapshots[len(res.Performance.Snapshots)-1]
	if final.Shares == 0 {
		t.Error("expected an open position at series end")
	}

	if res.Symbol != "AAPL" || res.RunID == "" {
		t.Error("result metadata missing")
	}
	if !res.StartDate.Equal(series[0].Timestamp) || !res.EndDate.Equal(series[len(series)-1].Timestamp) {
		t.Error("date range not taken from the series")
	}
}

func TestRunner_Run_Deterministic(t *testing.T) {
	r := NewRunner(nil, nil)

	series := makeSeries([]float64{100, 95, 90, 85, 80, 120, 115, 110, 70, 75, 90, 110})

	res1, err := r.Run(context.Background(), validParams(), series)
	if err != nil {
		t.Fatal(err)
	}
	res2, err := r.Run(context.Background(), validParams(), series)
	if err != nil {
		t.Fatal(err)
	}

	if len(res1.Performance.Trades) != len(res2.Performance.Trades) {
		t.Fatal("trade logs differ between replays")
	}
	for i := range res1.Performance.Trades {
		if res1.Performance.Trades[i] != res2.Performance.Trades[i] {
			t.Errorf("trade %d differs between replays", i)
		}
	}

	p1, p2 := res1.Performance, res2.Performance
	if p1.TotalReturnPct != p2.TotalReturnPct ||
		p1.VolatilityPct != p2.VolatilityPct ||
		p1.SharpeRatio != p2.SharpeRatio ||
		p1.MaxDrawdownPct != p2.MaxDrawdownPct ||
		p1.WinRatePct != p2.WinRatePct {
		t.Error("metrics differ between replays")
	}
}

func TestRunner_Run_TradePairsInvariant(t *testing.T) {
	r := NewRunner(nil, nil)

	series := makeSeries([]float64{100, 95, 90, 85, 80, 120, 115, 110, 70, 75, 90, 110})

	res, err := r.Run(context.Background(), validParams(), series)
	if err != nil {
		t.Fatal(err)
	}

	if res.Performance.TradePairs != res.Performance.TotalTrades/2 {
		t.Errorf("TradePairs = %d, want floor(%d / 2)",
			res.Performance.TradePairs, res.Performance.TotalTrades)
	}
}

func TestRunner_Run_Cancelled(t *testing.T) {
	r := NewRunner(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, validParams(), makeSeries([]float64{100, 101, 102, 103, 104}))
	if err == nil {
		t.Error("expected context cancellation error")
	}
}
