package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "documents_persisted_total",
		Help: "Documents written to the store, by collection",
	}, []string{"collection"})

	saveSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saves_skipped_total",
		Help: "Save actions that wrote nothing, by reason",
	}, []string{"reason"})

	actionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "action_failures_total",
		Help: "Actions that returned a failure result",
	}, []string{"action"})
)
