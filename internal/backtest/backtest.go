package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newthinker/macross/internal/analysis"
	"github.com/newthinker/macross/internal/core"
	"github.com/newthinker/macross/internal/indicator"
	"github.com/newthinker/macross/internal/metrics"
	"github.com/newthinker/macross/internal/portfolio"
	"github.com/newthinker/macross/internal/signal"
)

// Params configures a single backtest run.
type Params struct {
	Symbol         string
	ShortWindow    int
	LongWindow     int
	InitialCapital float64
	Commission     float64
}

// Result holds the complete backtest output.
type Result struct {
	RunID       string
	Symbol      string
	ShortWindow int
	LongWindow  int
	StartDate   time.Time
	EndDate     time.Time
	Signals     signal.Summary
	Performance analysis.Result
}

// Runner executes the full pipeline: moving averages, crossover
// detection, portfolio simulation, performance analysis. A single run
// is strictly sequential and deterministic; replaying the same input
// reproduces bit-identical trade logs and metrics.
type Runner struct {
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewRunner creates a Runner. The metrics registry may be nil.
func NewRunner(logger *zap.Logger, reg *metrics.Registry) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:  logger,
		metrics: reg,
	}
}

// validateSeries checks the input contract the simulation depends on.
// All failures surface here, before any stage runs.
func validateSeries(prices []core.PricePoint) error {
	if len(prices) == 0 {
		return core.ErrEmptySeries
	}
	for i := 1; i < len(prices); i++ {
		if !prices[i].Timestamp.After(prices[i-1].Timestamp) {
			return core.WrapError(core.ErrNonMonotonicInput,
				fmt.Errorf("index %d: %s does not follow %s",
					i,
					prices[i].Timestamp.Format(time.RFC3339),
					prices[i-1].Timestamp.Format(time.RFC3339)))
		}
	}
	return nil
}

// Run executes one backtest over the validated price series.
func (r *Runner) Run(ctx context.Context, params Params, prices []core.PricePoint) (*Result, error) {
	start := time.Now()

	res, err := r.run(ctx, params, prices)

	if r.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		r.metrics.RecordBacktest(status, time.Since(start).Seconds())
	}

	return res, err
}

func (r *Runner) run(ctx context.Context, params Params, prices []core.PricePoint) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Fail fast on every configuration and input problem; the pipeline
	// never partially runs and then aborts mid-stream.
	if err := indicator.ValidateWindows(params.ShortWindow, params.LongWindow); err != nil {
		return nil, err
	}
	sim, err := portfolio.New(params.InitialCapital, params.Commission)
	if err != nil {
		return nil, err
	}
	if err := validateSeries(prices); err != nil {
		return nil, err
	}

	// A short series is a warning, not an abort: the long average never
	// defines and the run degenerates to an all-Hold baseline.
	if err := indicator.CheckLength(len(prices), params.LongWindow); err != nil {
		r.logger.Warn("series shorter than long window, expect no signals",
			zap.String("symbol", params.Symbol),
			zap.Int("points", len(prices)),
			zap.Int("long_window", params.LongWindow),
		)
	}

	points, err := indicator.Pair(prices, params.ShortWindow, params.LongWindow)
	if err != nil {
		return nil, err
	}

	signals := signal.Detect(prices, points)
	summary := signal.Summarize(signals)

	if r.metrics != nil {
		for _, sig := range signals {
			if sig.Action != core.ActionHold {
				r.metrics.RecordSignal(string(sig.Action))
			}
		}
	}

	snapshots, trades := sim.Run(prices, signals)

	if r.metrics != nil {
		for _, tr := range trades {
			r.metrics.RecordTrade(string(tr.Action))
		}
	}

	perf := analysis.Analyze(snapshots, trades, params.InitialCapital,
		prices[0].Price, prices[len(prices)-1].Price)

	r.logger.Info("backtest complete",
		zap.String("symbol", params.Symbol),
		zap.Int("short_window", params.ShortWindow),
		zap.Int("long_window", params.LongWindow),
		zap.Int("trades", len(trades)),
		zap.Float64("total_return_pct", perf.TotalReturnPct),
		zap.Float64("excess_return_pct", perf.ExcessReturnPct),
	)

	return &Result{
		RunID:       uuid.NewString(),
		Symbol:      params.Symbol,
		ShortWindow: params.ShortWindow,
		LongWindow:  params.LongWindow,
		StartDate:   prices[0].Timestamp,
		EndDate:     prices[len(prices)-1].Timestamp,
		Signals:     summary,
		Performance: perf,
	}, nil
}
