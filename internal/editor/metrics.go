package editor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsAppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitebuilder_editor_actions_applied_total",
		Help: "Total number of actions applied to documents, by action type",
	}, []string{"action"})

	actionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitebuilder_editor_action_failures_total",
		Help: "Total number of rejected actions, by action type",
	}, []string{"action"})

	reduceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sitebuilder_editor_reduce_duration_seconds",
		Help:    "Duration of a single reduction",
		Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}, []string{"action"})

	zoneCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitebuilder_editor_zone_cache_lookups_total",
		Help: "Zone cache lookups on zone registration, by result",
	}, []string{"result"})

	historyRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitebuilder_editor_history_records_total",
		Help: "Total number of history snapshots recorded",
	})
)

func observeReduce(action string, elapsed time.Duration, err error) {
	reduceDuration.WithLabelValues(action).Observe(elapsed.Seconds())
	if err != nil {
		actionFailuresTotal.WithLabelValues(action).Inc()
		return
	}
	actionsAppliedTotal.WithLabelValues(action).Inc()
}

func observeZoneCache(hit bool) {
	if hit {
		zoneCacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	zoneCacheLookupsTotal.WithLabelValues("miss").Inc()
}
