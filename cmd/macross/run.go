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
	runSymbol string
	runShort  int
	runLong   int
	runNoSave bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single backtest",
	Long:  "Fetch the configured price history, run one crossover backtest and archive the results",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runSymbol, "symbol", "", "Override the configured symbol")
	runCmd.Flags().IntVar(&runShort, "short", 0, "Override the short window")
	runCmd.Flags().IntVar(&runLong, "long", 0, "Override the long window")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "Print the summary without archiving results")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	if runSymbol != "" {
		cfg.Symbol = runSymbol
	}
	if runShort > 0 {
		cfg.Strategy.ShortWindow = runShort
	}
	if runLong > 0 {
		cfg.Strategy.LongWindow = runLong
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
	log.Info("fetching price history",
		zap.String("source", provider.Name()),
		zap.String("symbol", cfg.Symbol),
	)

	prices, err := provider.FetchDaily(ctx, cfg.Symbol, start, end)
	if err != nil {
		return fmt.Errorf("fetching history: %w", err)
	}

	runner := backtest.NewRunner(log, reg)
	res, err := runner.Run(ctx, backtest.Params{
		Symbol:         cfg.Symbol,
		ShortWindow:    cfg.Strategy.ShortWindow,
		LongWindow:     cfg.Strategy.LongWindow,
		InitialCapital: cfg.Backtest.InitialCapital,
		Commission:     cfg.Backtest.Commission,
	}, prices)
	if err != nil {
		return fmt.Errorf("running backtest: %w", err)
	}

	fmt.Print(report.Summary(res))

	if runNoSave {
		return nil
	}

	store, err := archive.New(cfg.Output)
	if err != nil {
		return fmt.Errorf("creating storage: %w", err)
	}

	prefix, err := report.NewWriter(store, log, reg).Save(ctx, res)
	if err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	fmt.Printf("Results saved to %s (%s)\n", prefix, store.Name())

	return nil
}
