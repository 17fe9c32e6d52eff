package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/newthinker/macross/internal/core"
)

// dateLayout is the accepted format for start/end dates.
const dateLayout = "2006-01-02"

type Config struct {
	Symbol    string         `mapstructure:"symbol"`
	StartDate string         `mapstructure:"start_date"`
	EndDate   string         `mapstructure:"end_date"`
	Strategy  StrategyConfig `mapstructure:"strategy"`
	Backtest  BacktestConfig `mapstructure:"backtest"`
	Sweep     SweepConfig    `mapstructure:"sweep"`
	Data      DataConfig     `mapstructure:"data"`
	Output    OutputConfig   `mapstructure:"output"`
	Metrics   MetricsConfig  `mapstructure:"metrics"`
}

// StrategyConfig holds the moving average window pair.
type StrategyConfig struct {
	ShortWindow int `mapstructure:"short_window"`
	LongWindow  int `mapstructure:"long_window"`
}

// BacktestConfig holds simulation settings.
type BacktestConfig struct {
	InitialCapital float64 `mapstructure:"initial_capital"`
	Commission     float64 `mapstructure:"commission"`
	// Carried for reporting; the risk-adjusted ratio deliberately does
	// not subtract it.
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
}

// SweepConfig holds window-sweep settings.
type SweepConfig struct {
	Workers int     `mapstructure:"workers"`
	Windows [][]int `mapstructure:"windows"` // [[short, long], ...]
}

// DataConfig selects the price history source.
type DataConfig struct {
	Source string `mapstructure:"source"` // "yahoo" or "csv"
	Path   string `mapstructure:"path"`   // for csv
}

// OutputConfig holds result persistence settings.
type OutputConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // for localfs
	S3   S3Config `mapstructure:"s3"`   // for S3
}

// S3Config holds S3 connection configuration.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults: the classic 50/200
// golden cross on two years of AAPL with 0.1% commission.
func Defaults() *Config {
	return &Config{
		Symbol:    "AAPL",
		StartDate: time.Now().AddDate(-2, 0, 0).Format(dateLayout),
		EndDate:   time.Now().Format(dateLayout),
		Strategy: StrategyConfig{
			ShortWindow: 50,
			LongWindow:  200,
		},
		Backtest: BacktestConfig{
			InitialCapital: 10000,
			Commission:     0.001,
			RiskFreeRate:   0.02,
		},
		Sweep: SweepConfig{
			Workers: 4,
			Windows: [][]int{{10, 30}, {20, 50}, {50, 200}, {100, 300}},
		},
		Data: DataConfig{
			Source: "yahoo",
		},
		Output: OutputConfig{
			Type: "localfs",
			Path: "results",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

// DateRange parses the configured start/end dates.
func (c *Config) DateRange() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("start_date %q: %w", c.StartDate, err))
	}
	end, err := time.Parse(dateLayout, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("end_date %q: %w", c.EndDate, err))
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("end_date %s is before start_date %s", c.EndDate, c.StartDate))
	}
	return start, end, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("symbol is required"))
	}

	if c.Strategy.ShortWindow <= 0 || c.Strategy.LongWindow <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("windows must be positive, got %d/%d",
				c.Strategy.ShortWindow, c.Strategy.LongWindow))
	}
	if c.Strategy.ShortWindow >= c.Strategy.LongWindow {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("short_window %d must be less than long_window %d",
				c.Strategy.ShortWindow, c.Strategy.LongWindow))
	}

	if c.Backtest.InitialCapital <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_capital must be positive, got %f", c.Backtest.InitialCapital))
	}
	if c.Backtest.Commission < 0 || c.Backtest.Commission >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("commission must be in [0, 1), got %f", c.Backtest.Commission))
	}

	if _, _, err := c.DateRange(); err != nil {
		return err
	}

	switch c.Data.Source {
	case "yahoo":
	case "csv":
		if c.Data.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("data path required when source is csv"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown data source %q", c.Data.Source))
	}

	switch c.Output.Type {
	case "localfs":
	case "s3":
		if c.Output.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when output type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown output type %q", c.Output.Type))
	}

	for _, w := range c.Sweep.Windows {
		if len(w) != 2 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("sweep window entries must be [short, long] pairs, got %v", w))
		}
	}

	return nil
}
