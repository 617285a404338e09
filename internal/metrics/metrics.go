// Package metrics holds the process-wide prometheus instruments. Exposed on
// /metrics; none of these values ever feed back into ranking decisions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignalsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "undercurrent_signals_recorded_total",
		Help: "Behavioral signals accepted into the store, by kind.",
	}, []string{"kind"})

	SignalsFiltered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "undercurrent_signals_filtered_total",
		Help: "Signals dropped at the write boundary by the meaningful-signal filter.",
	}, []string{"kind"})

	SignalsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "undercurrent_signals_evicted_total",
		Help: "Signals removed by the retention sweep.",
	})

	FeedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "undercurrent_feed_requests_total",
		Help: "Personalized feed requests served.",
	})

	AnomaliesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "undercurrent_anomalies_detected_total",
		Help: "Users flagged for bot-like signal cadence. Advisory only.",
	})

	WeightRotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "undercurrent_weight_rotations_total",
		Help: "Times the ranking weight-variation band has been re-randomized.",
	})
)
