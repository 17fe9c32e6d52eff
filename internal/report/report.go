package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/macross/internal/backtest"
	"github.com/newthinker/macross/internal/core"
	"github.com/newthinker/macross/internal/metrics"
	"github.com/newthinker/macross/internal/storage/archive"
)

const dateLayout = "2006-01-02"

// Summary renders a human-readable performance report for one run.
func Summary(res *backtest.Result) string {
	perf := res.Performance

	var b strings.Builder
	rule := strings.Repeat("=", 50)

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, " MA Crossover Backtest: %s (%d/%d)\n",
		res.Symbol, res.ShortWindow, res.LongWindow)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Period:             %s to %s\n",
		res.StartDate.Format(dateLayout), res.EndDate.Format(dateLayout))
	fmt.Fprintf(&b, "Initial capital:    $%.2f\n", perf.InitialCapital)
	fmt.Fprintf(&b, "Final value:        $%.2f\n", perf.FinalValue)
	fmt.Fprintf(&b, "Total return:       %.2f%%\n", perf.TotalReturnPct)
	fmt.Fprintf(&b, "Buy & hold return:  %.2f%% ($%.2f)\n",
		perf.BuyHoldReturnPct, perf.BuyHoldFinalValue)
	fmt.Fprintf(&b, "Excess return:      %.2f%%\n", perf.ExcessReturnPct)
	fmt.Fprintf(&b, "Annual volatility:  %.2f%%\n", perf.VolatilityPct)
	fmt.Fprintf(&b, "Risk-adjusted:      %.2f\n", perf.SharpeRatio)
	fmt.Fprintf(&b, "Max drawdown:       %.2f%%\n", perf.MaxDrawdownPct)
	fmt.Fprintf(&b, "Trades:             %d (%d round trips)\n",
		perf.TotalTrades, perf.TradePairs)
	fmt.Fprintf(&b, "Win rate:           %.2f%%\n", perf.WinRatePct)
	fmt.Fprintf(&b, "Signals:            %d buy / %d sell\n",
		res.Signals.BuySignals, res.Signals.SellSignals)
	fmt.Fprintf(&b, "Time in market:     %.1f%%\n", res.Signals.TimeInMarketPct)

	verdict := "strategy underperformed buy & hold"
	if perf.Beat() {
		verdict = "strategy beat buy & hold"
	}
	fmt.Fprintf(&b, "Verdict:            %s\n", verdict)
	fmt.Fprintln(&b, rule)

	return b.String()
}

// PortfolioCSV renders the per-period equity curve.
func PortfolioCSV(snapshots []core.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"date", "cash", "shares", "price", "portfolio_value"}); err != nil {
		return nil, err
	}
	for _, s := range snapshots {
		rec := []string{
			s.Timestamp.Format(dateLayout),
			strconv.FormatFloat(s.Cash, 'f', 2, 64),
			strconv.FormatUint(s.Shares, 10),
			strconv.FormatFloat(s.Price, 'f', 4, 64),
			strconv.FormatFloat(s.PortfolioValue, 'f', 2, 64),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// TradesCSV renders the executed trade log.
func TradesCSV(trades []core.Trade) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "action", "shares", "price", "commission",
		"cost", "proceeds", "cash_after", "shares_after"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, t := range trades {
		rec := []string{
			t.Timestamp.Format(dateLayout),
			string(t.Action),
			strconv.FormatUint(t.Shares, 10),
			strconv.FormatFloat(t.Price, 'f', 4, 64),
			strconv.FormatFloat(t.Commission, 'f', 4, 64),
			strconv.FormatFloat(t.Cost, 'f', 2, 64),
			strconv.FormatFloat(t.Proceeds, 'f', 2, 64),
			strconv.FormatFloat(t.CashAfter, 'f', 2, 64),
			strconv.FormatUint(t.SharesAfter, 10),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// Writer persists run artifacts through an archive backend.
type Writer struct {
	store   archive.Storage
	logger  *zap.Logger
	metrics *metrics.Registry
	now     func() time.Time
}

// NewWriter creates a Writer. Logger and metrics may be nil.
func NewWriter(store archive.Storage, logger *zap.Logger, reg *metrics.Registry) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		store:   store,
		logger:  logger,
		metrics: reg,
		now:     time.Now,
	}
}

// Save writes the summary, equity curve, trade log and raw result for
// one run and returns the archive prefix they landed under.
func (w *Writer) Save(ctx context.Context, res *backtest.Result) (string, error) {
	prefix := fmt.Sprintf("%s/%s_%s",
		res.Symbol, w.now().UTC().Format("20060102T150405"), res.RunID)

	portfolioCSV, err := PortfolioCSV(res.Performance.Snapshots)
	if err != nil {
		return "", fmt.Errorf("rendering portfolio: %w", err)
	}
	tradesCSV, err := TradesCSV(res.Performance.Trades)
	if err != nil {
		return "", fmt.Errorf("rendering trades: %w", err)
	}
	resultJSON, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("rendering result: %w", err)
	}

	files := map[string][]byte{
		"summary.txt":   []byte(Summary(res)),
		"portfolio.csv": portfolioCSV,
		"trades.csv":    tradesCSV,
		"result.json":   resultJSON,
	}

	for name, data := range files {
		if err := w.store.Write(ctx, prefix+"/"+name, data); err != nil {
			if w.metrics != nil {
				w.metrics.RecordArchive(w.store.Name(), "error")
			}
			return "", fmt.Errorf("archiving %s: %w", name, err)
		}
	}

	if w.metrics != nil {
		w.metrics.RecordArchive(w.store.Name(), "success")
	}

	w.logger.Info("results archived",
		zap.String("run_id", res.RunID),
		zap.String("backend", w.store.Name()),
		zap.String("prefix", prefix),
	)

	return prefix, nil
}
