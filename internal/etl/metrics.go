package etl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bankscap_pipeline_runs_total",
		Help: "Pipeline runs by final state",
	}, []string{"state"})

	rowsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bankscap_rows_extracted_total",
		Help: "Rows accepted by the extractor",
	})

	rowsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bankscap_rows_dropped_total",
		Help: "Rows dropped by the extractor because they could not be parsed",
	})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bankscap_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
)
