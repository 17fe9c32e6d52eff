package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/newthinker/macross/internal/core"
)

func sweepSeries() []core.PricePoint {
	return makeSeries([]float64{
		100, 95, 90, 85, 80, 120, 125, 118, 112, 90,
		95, 105, 115, 120, 110, 100, 95, 108, 118, 125,
	})
}

func TestRunner_Sweep_OrderPreserved(t *testing.T) {
	r := NewRunner(nil, nil)

	pairs := []WindowPair{
		{Short: 2, Long: 4},
		{Short: 3, Long: 6},
		{Short: 2, Long: 8},
		{Short: 5, Long: 10},
	}

	results := r.Sweep(context.Background(), validParams(), pairs, sweepSeries(), 2)

	if len(results) != len(pairs) {
		t.Fatalf("expected %d results, got %d", len(pairs), len(results))
	}
	for i, res := range results {
		if res.Pair != pairs[i] {
			t.Errorf("result %d pair = %+v, want %+v", i, res.Pair, pairs[i])
		}
		if res.Err != nil {
			t.Errorf("pair %+v failed: %v", res.Pair, res.Err)
		}
		if res.Result.ShortWindow != pairs[i].Short || res.Result.LongWindow != pairs[i].Long {
			t.Errorf("result %d ran with wrong windows", i)
		}
	}
}

func TestRunner_Sweep_MatchesSequentialRun(t *testing.T) {
	r := NewRunner(nil, nil)
	prices := sweepSeries()

	pairs := []WindowPair{{Short: 2, Long: 4}, {Short: 3, Long: 6}}
	results := r.Sweep(context.Background(), validParams(), pairs, prices, 2)

	for _, res := range results {
		params := validParams()
		params.ShortWindow = res.Pair.Short
		params.LongWindow = res.Pair.Long

		seq, err := r.Run(context.Background(), params, prices)
		if err != nil {
			t.Fatal(err)
		}

		// A sweep run must be identical to the same run done alone.
		if len(seq.Performance.Trades) != len(res.Result.Performance.Trades) {
			t.Fatalf("pair %+v: trade logs differ from sequential run", res.Pair)
		}
		for i := range seq.Performance.Trades {
			if seq.Performance.Trades[i] != res.Result.Performance.Trades[i] {
				t.Errorf("pair %+v: trade %d differs from sequential run", res.Pair, i)
			}
		}
		if seq.Performance.TotalReturnPct != res.Result.Performance.TotalReturnPct {
			t.Errorf("pair %+v: return differs from sequential run", res.Pair)
		}
	}
}

func TestRunner_Sweep_InvalidPairReported(t *testing.T) {
	r := NewRunner(nil, nil)

	pairs := []WindowPair{
		{Short: 2, Long: 4},
		{Short: 10, Long: 5}, // inverted
	}

	results := r.Sweep(context.Background(), validParams(), pairs, sweepSeries(), 0)

	if results[0].Err != nil {
		t.Errorf("valid pair failed: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, core.ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow for inverted pair, got %v", results[1].Err)
	}
}

func TestRunner_Sweep_Cancelled(t *testing.T) {
	r := NewRunner(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pairs := []WindowPair{{Short: 2, Long: 4}, {Short: 3, Long: 6}}
	results := r.Sweep(ctx, validParams(), pairs, sweepSeries(), 1)

	if len(results) != len(pairs) {
		t.Fatalf("expected %d results even when cancelled, got %d", len(pairs), len(results))
	}
	for _, res := range results {
		if res.Err == nil {
			// A worker may have picked up a job before cancellation was
			// observed; a completed run is acceptable, a zero entry is not.
			if res.Result == nil {
				t.Errorf("pair %+v has neither result nor error", res.Pair)
			}
		}
	}
}

func TestBest(t *testing.T) {
	r := NewRunner(nil, nil)

	pairs := []WindowPair{
		{Short: 2, Long: 4},
		{Short: 3, Long: 6},
		{Short: 4, Long: 8},
	}
	results := r.Sweep(context.Background(), validParams(), pairs, sweepSeries(), 2)

	best := Best(results)
	if best == nil {
		t.Fatal("expected a best result")
	}
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if res.Result.Performance.ExcessReturnPct > best.Result.Performance.ExcessReturnPct {
			t.Error("Best did not return the highest excess return")
		}
	}
}

func TestBest_AllFailed(t *testing.T) {
	results := []SweepResult{
		{Pair: WindowPair{Short: 5, Long: 5}, Err: core.ErrInvalidWindow},
	}
	if Best(results) != nil {
		t.Error("expected nil when every run failed")
	}
}
