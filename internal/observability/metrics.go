// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Intake metrics
	CandidatesReceived prometheus.Counter
	CandidatesSkipped  *prometheus.CounterVec
	IntakeDropped      prometheus.Counter
	IntakeQueueDepth   prometheus.Gauge

	// Trade metrics
	TradesExecuted  *prometheus.CounterVec
	TradeFailures   *prometheus.CounterVec
	SwapAttempts    prometheus.Counter
	SwapRetries     prometheus.Counter
	PositionsActive prometheus.Gauge
	RealizedPnlUsd  prometheus.Counter
	RealizedLossUsd prometheus.Counter
	FeesPaidUsd     prometheus.Counter
	PriorityFeePaid *prometheus.CounterVec

	// Capital metrics
	CompoundedBalanceUsd prometheus.Gauge
	CyclesToday          prometheus.Gauge

	// Upstream metrics
	OracleFetchLatency *prometheus.HistogramVec
	OracleFailures     *prometheus.CounterVec
	RPCCallLatency     *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sniper"
	}

	return &Metrics{
		// Intake metrics
		CandidatesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "candidates_received_total",
			Help:      "Total number of candidate addresses received",
		}),
		CandidatesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "candidates_skipped_total",
			Help:      "Total number of candidates skipped by reason",
		}, []string{"reason"}),
		IntakeDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "dropped_total",
			Help:      "Total number of candidates dropped due to a full queue",
		}),
		IntakeQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "queue_depth",
			Help:      "Current number of candidates waiting in the intake queue",
		}),

		// Trade metrics
		TradesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "executed_total",
			Help:      "Total number of executed trade legs by side",
		}, []string{"side"}),
		TradeFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "failures_total",
			Help:      "Total number of failed positions by stage",
		}, []string{"stage"}),
		SwapAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "swap_attempts_total",
			Help:      "Total number of swap submission attempts",
		}),
		SwapRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "swap_retries_total",
			Help:      "Total number of transient swap retries",
		}),
		PositionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "positions_active",
			Help:      "Number of positions currently holding the exclusive guard (0 or 1)",
		}),
		RealizedPnlUsd: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "realized_profit_usd_total",
			Help:      "Cumulative realized profit in USD",
		}),
		RealizedLossUsd: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "realized_loss_usd_total",
			Help:      "Cumulative realized loss in USD",
		}),
		FeesPaidUsd: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "fees_paid_usd_total",
			Help:      "Cumulative platform fees paid in USD",
		}),
		PriorityFeePaid: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "priority_fee_sol_total",
			Help:      "Cumulative priority fees paid in SOL by tier",
		}, []string{"tier"}),

		// Capital metrics
		CompoundedBalanceUsd: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "capital",
			Name:      "compounded_balance_usd",
			Help:      "Current compounded balance in USD",
		}),
		CyclesToday: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "capital",
			Name:      "cycles_today",
			Help:      "Number of buy cycles completed in the current UTC day",
		}),

		// Upstream metrics
		OracleFetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "fetch_latency_seconds",
			Help:      "Price oracle fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		OracleFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "failures_total",
			Help:      "Total number of oracle fetch failures by source",
		}, []string{"source"}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCandidateReceived increments the candidates received counter.
func RecordCandidateReceived() {
	DefaultMetrics.CandidatesReceived.Inc()
}

// RecordCandidateSkipped records a skipped candidate with its reason.
func RecordCandidateSkipped(reason string) {
	DefaultMetrics.CandidatesSkipped.WithLabelValues(reason).Inc()
}

// RecordIntakeDropped increments the dropped-candidate counter.
func RecordIntakeDropped() {
	DefaultMetrics.IntakeDropped.Inc()
}

// RecordTradeExecuted records an executed trade leg.
func RecordTradeExecuted(side string, feeUsd, tipSol float64, tier string) {
	DefaultMetrics.TradesExecuted.WithLabelValues(side).Inc()
	DefaultMetrics.FeesPaidUsd.Add(feeUsd)
	DefaultMetrics.PriorityFeePaid.WithLabelValues(tier).Add(tipSol)
}

// RecordSwapAttempt counts one swap submission attempt.
func RecordSwapAttempt() {
	DefaultMetrics.SwapAttempts.Inc()
}

// RecordSwapRetry counts a transient-failure resubmission.
func RecordSwapRetry() {
	DefaultMetrics.SwapRetries.Inc()
}

// RecordTradeFailure records a failed position with the stage that failed.
func RecordTradeFailure(stage string) {
	DefaultMetrics.TradeFailures.WithLabelValues(stage).Inc()
}

// RecordPnl records realized P&L, splitting profit and loss counters.
func RecordPnl(netPnlUsd float64) {
	if netPnlUsd >= 0 {
		DefaultMetrics.RealizedPnlUsd.Add(netPnlUsd)
	} else {
		DefaultMetrics.RealizedLossUsd.Add(-netPnlUsd)
	}
}

// UpdateCapital updates the compounded balance and cycle gauges.
func UpdateCapital(balanceUsd float64, cycles int) {
	DefaultMetrics.CompoundedBalanceUsd.Set(balanceUsd)
	DefaultMetrics.CyclesToday.Set(float64(cycles))
}

// SetPositionActive flips the active-position gauge.
func SetPositionActive(active bool) {
	if active {
		DefaultMetrics.PositionsActive.Set(1)
	} else {
		DefaultMetrics.PositionsActive.Set(0)
	}
}

// RecordOracleFetch records an oracle fetch outcome.
func RecordOracleFetch(source string, seconds float64, err error) {
	DefaultMetrics.OracleFetchLatency.WithLabelValues(source).Observe(seconds)
	if err != nil {
		DefaultMetrics.OracleFailures.WithLabelValues(source).Inc()
	}
}

// RecordRPCCall records one Solana RPC round trip.
func RecordRPCCall(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}
