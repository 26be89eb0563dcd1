package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Generation jobs partitioned by final status
	itineraryJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinerary_generation_jobs_total",
			Help: "Itinerary generation jobs by final status",
		},
		[]string{"status"},
	)

	itineraryJobsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itinerary_generation_jobs_running",
			Help: "Itinerary generation jobs currently running",
		},
	)

	itineraryGenerationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "itinerary_generation_duration_seconds",
			Help:    "Time spent generating, saving and exporting an itinerary",
			Buckets: prometheus.DefBuckets,
		},
	)

	itineraryStops = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "itinerary_stops",
			Help:    "Number of companies matched per generated itinerary",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Delegation lookups partitioned by where the answer came from
	delegationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delegation_lookups_total",
			Help: "Delegation lookups by source (cache, store, none)",
		},
		[]string{"source"},
	)

	delegationDimensionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delegation_dimension_failures_total",
			Help: "Delegation dimension reads that failed and degraded to an empty list",
		},
		[]string{"dimension"},
	)
)
