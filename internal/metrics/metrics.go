package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus metrics for the pulse service
type Metrics struct {
	MutationsTotal       *prometheus.CounterVec // labels: operation, outcome
	FeedPagesServed      *prometheus.CounterVec // labels: feed
	NotificationsCreated *prometheus.CounterVec // labels: type
	RealtimeEvents       *prometheus.CounterVec // labels: channel
}
