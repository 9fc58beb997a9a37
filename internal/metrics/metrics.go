package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelaySubmissions tracks relay submissions by kind and outcome
	RelaySubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_submissions_total",
			Help: "Total number of relay submissions",
		},
		[]string{"kind", "outcome"},
	)

	// RelayPollAttempts tracks status poll attempts
	RelayPollAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_poll_attempts_total",
			Help: "Total number of relay status poll attempts",
		},
	)

	// RelaySubmitLatency tracks submission round-trip latency
	RelaySubmitLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_submit_latency_seconds",
			Help:    "Relay submission latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// ApprovalsGranted tracks approvals granted per requirement
	ApprovalsGranted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_approvals_granted_total",
			Help: "Total number of approval grants submitted",
		},
		[]string{"requirement"},
	)

	// WalletDeployed reports whether the wallet is known to be deployed
	WalletDeployed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relay_wallet_deployed",
			Help: "1 if the wallet contract is deployed, 0 otherwise",
		},
		[]string{"wallet"},
	)

	// ChainCalls tracks read-only chain calls per provider
	ChainCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_chain_calls_total",
			Help: "Total number of read-only chain RPC calls",
		},
		[]string{"provider", "method", "outcome"},
	)
)
