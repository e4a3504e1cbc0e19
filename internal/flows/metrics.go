package flows

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	flowRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flow_requests_total",
		Help: "Total number of AI flow calls",
	}, []string{"flow", "status"})

	flowLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flow_latency_seconds",
		Help:    "Latency of AI flow calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"flow"})
)
