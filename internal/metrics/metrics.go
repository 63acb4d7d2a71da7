// Package metrics provides Prometheus instrumentation for the replay engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsProcessed counts events applied successfully, partitioned by type.
	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_processed_total",
		Help: "Total number of ledger events applied",
	}, []string{"type"})

	// EventsDropped counts events dropped for malformed input or
	// business-rule violations, partitioned by error code.
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_dropped_total",
		Help: "Total number of ledger events dropped",
	}, []string{"code"})

	// EventsIgnored counts dispute-lifecycle no-ops, partitioned by error code.
	EventsIgnored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_events_ignored_total",
		Help: "Total number of dispute-lifecycle events ignored as no-ops",
	}, []string{"code"})

	// AccountsLocked tracks the number of accounts locked by chargebacks.
	AccountsLocked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ledger_accounts_locked",
		Help: "Number of accounts locked by a chargeback",
	})

	// HistoryRecords counts history records inserted by this process.
	// With the redis/postgres backends it says nothing about keys that
	// predate the run; watching its growth is the intended way to see
	// the retained-history memory limit of the in-memory backend.
	HistoryRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_history_records_inserted_total",
		Help: "Transaction history records inserted by this process",
	})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
