package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	backtestsTotal   *prometheus.CounterVec
	backtestDuration prometheus.Histogram
	signalsGenerated *prometheus.CounterVec
	tradesExecuted   *prometheus.CounterVec
	sweepRunsActive  prometheus.Gauge
	resultsArchived  *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macross_backtests_total",
				Help: "Total number of backtest runs",
			},
			[]string{"status"},
		),

		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "macross_backtest_duration_seconds",
				Help:    "Backtest pipeline duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		signalsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macross_signals_generated_total",
				Help: "Total number of crossover signals generated",
			},
			[]string{"action"},
		),

		tradesExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macross_trades_executed_total",
				Help: "Total number of simulated trades executed",
			},
			[]string{"action"},
		),

		sweepRunsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "macross_sweep_runs_active",
				Help: "Number of window-sweep runs currently executing",
			},
		),

		resultsArchived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macross_results_archived_total",
				Help: "Total number of result files written to storage",
			},
			[]string{"backend", "status"},
		),
	}

	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.tradesExecuted)
	reg.MustRegister(r.sweepRunsActive)
	reg.MustRegister(r.resultsArchived)

	return r
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(status string, duration float64) {
	r.backtestsTotal.WithLabelValues(status).Inc()
	r.backtestDuration.Observe(duration)
}

// RecordSignal records a generated non-Hold signal.
func (r *Registry) RecordSignal(action string) {
	r.signalsGenerated.WithLabelValues(action).Inc()
}

// RecordTrade records an executed simulated trade.
func (r *Registry) RecordTrade(action string) {
	r.tradesExecuted.WithLabelValues(action).Inc()
}

// SweepInc increments active sweep runs.
func (r *Registry) SweepInc() {
	r.sweepRunsActive.Inc()
}

// SweepDec decrements active sweep runs.
func (r *Registry) SweepDec() {
	r.sweepRunsActive.Dec()
}

// RecordArchive records a result file written to (or failed on) a
// storage backend.
func (r *Registry) RecordArchive(backend, status string) {
	r.resultsArchived.WithLabelValues(backend, status).Inc()
}
