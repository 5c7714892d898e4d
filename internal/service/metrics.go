package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	openSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sitebuilder_service_open_sessions",
		Help: "Number of pages with an open editing session",
	})

	savesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitebuilder_service_document_saves_total",
		Help: "Document saves, by result",
	}, []string{"result"})

	autosaveRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitebuilder_service_autosave_runs_total",
		Help: "Autosave ticks, by outcome",
	}, []string{"outcome"})

	autosaveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sitebuilder_service_autosave_duration_seconds",
		Help:    "Time spent flushing and evicting pages per autosave run",
		Buckets: prometheus.DefBuckets,
	})
)
