package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	favoritesToggleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorites_toggle_total",
			Help: "Total number of favorite toggle operations",
		},
		[]string{"action", "outcome"},
	)

	favoritesRollbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorites_rollback_total",
			Help: "Total number of optimistic updates rolled back after a remote failure",
		},
		[]string{"action"},
	)

	recentEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recent_evictions_total",
			Help: "Total number of recently-viewed entries evicted by capacity",
		},
	)

	recentCorruptPayloadTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recent_corrupt_payload_total",
			Help: "Total number of corrupt recently-viewed payloads treated as empty",
		},
	)
)
