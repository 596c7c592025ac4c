// Package metrics exposes Prometheus collectors for command execution
// and ledger traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CommandsTotal counts executed commands by name and outcome.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fishsticks_commands_total",
		Help: "Commands executed, by command name and outcome.",
	}, []string{"command", "status"})

	// CommandDuration observes wall time per command, including any
	// ledger round trips made while holding the command lock.
	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fishsticks_command_duration_seconds",
		Help:    "Command execution time in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	// LedgerRequests counts requests to the sharebill ledger.
	LedgerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fishsticks_ledger_requests_total",
		Help: "Requests to the sharebill ledger, by operation and outcome.",
	}, []string{"op", "status"})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
