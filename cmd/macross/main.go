package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/macross/internal/collector"
	"github.com/newthinker/macross/internal/collector/csvfile"
	"github.com/newthinker/macross/internal/collector/yahoo"
	"github.com/newthinker/macross/internal/config"
	"github.com/newthinker/macross/internal/metrics"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "macross",
	Short: "Moving average crossover backtester",
	Long: `macross backtests a dual moving average crossover strategy against
historical daily prices and compares it to buy-and-hold.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// loadConfig reads the config file or falls back to defaults, then
// validates either way.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newProvider selects the configured price history source.
func newProvider(cfg *config.Config) collector.HistoryProvider {
	if cfg.Data.Source == "csv" {
		return csvfile.New(cfg.Data.Path)
	}
	return yahoo.New()
}

// serveMetrics exposes the registry on the configured address when
// metrics are enabled.
func serveMetrics(cfg *config.Config, reg *metrics.Registry, log *zap.Logger) {
	if !cfg.Metrics.Enabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg.Registry, promhttp.HandlerOpts{}))

	go func() {
		log.Info("metrics server listening", zap.String("addr", cfg.Metrics.Addr))
		if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
			log.Error("metrics server error", zap.Error(err))
		}
	}()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
