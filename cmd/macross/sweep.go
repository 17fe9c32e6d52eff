package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/macross/internal/backtest"
	"github.com/newthinker/macross/internal/logger"
	"github.com/newthinker/macross/internal/metrics"
	"github.com/newthinker/macross/internal/report"
	"github.com/newthinker/macross/internal/storage/archive"
)

var (
	sweepWorkers  int
	sweepSaveBest bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Backtest every configured window pair",
	Long: `Run the configured window pairs against the same price history in
parallel and rank them by excess return over buy-and-hold.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "Override the configured worker count")
	sweepCmd.Flags().BoolVar(&sweepSaveBest, "save-best", false, "Archive the best run's results")

	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if len(cfg.Sweep.Windows) == 0 {
		return fmt.Errorf("no sweep windows configured")
	}
	if sweepWorkers > 0 {
		cfg.Sweep.Workers = sweepWorkers
	}

	start, end, err := cfg.DateRange()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	serveMetrics(cfg, reg, log)

	provider := newProvider(cfg)
	prices, err := provider.FetchDaily(ctx, cfg.Symbol, start, end)
	if err != nil {
		return fmt.Errorf("fetching history: %w", err)
	}

	pairs := make([]backtest.WindowPair, 0, len(cfg.Sweep.Windows))
	for _, w := range cfg.Sweep.Windows {
		pairs = append(pairs, backtest.WindowPair{Short: w[0], Long: w[1]})
	}

	log.Info("starting window sweep",
		zap.String("symbol", cfg.Symbol),
		zap.Int("pairs", len(pairs)),
		zap.Int("workers", cfg.Sweep.Workers),
	)

	runner := backtest.NewRunner(log, reg)
	results := runner.Sweep(ctx, backtest.Params{
		Symbol:         cfg.Symbol,
		InitialCapital: cfg.Backtest.InitialCapital,
		Commission:     cfg.Backtest.Commission,
	}, pairs, prices, cfg.Sweep.Workers)

	fmt.Printf("%-10s %12s %12s %12s %8s\n",
		"windows", "return", "buy&hold", "excess", "trades")
	for _, sr := range results {
		label := fmt.Sprintf("%d/%d", sr.Pair.Short, sr.Pair.Long)
		if sr.Err != nil {
			fmt.Printf("%-10s failed: %v\n", label, sr.Err)
			continue
		}
		perf := sr.Result.Performance
		fmt.Printf("%-10s %11.2f%% %11.2f%% %11.2f%% %8d\n",
			label, perf.TotalReturnPct, perf.BuyHoldReturnPct,
			perf.ExcessReturnPct, perf.TotalTrades)
	}

	best := backtest.Best(results)
	if best == nil {
		return fmt.Errorf("every sweep run failed")
	}
	fmt.Printf("\nBest pair: %d/%d (excess return %.2f%%)\n",
		best.Pair.Short, best.Pair.Long,
		best.Result.Performance.ExcessReturnPct)

	if !sweepSaveBest {
		return nil
	}

	store, err := archive.New(cfg.Output)
	if err != nil {
		return fmt.Errorf("creating storage: %w", err)
	}

	prefix, err := report.NewWriter(store, log, reg).Save(ctx, best.Result)
	if err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	fmt.Printf("Best run saved to %s (%s)\n", prefix, store.Name())

	return nil
}
