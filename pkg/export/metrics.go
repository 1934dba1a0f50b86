package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesTotal tracks processed pages per job by outcome
	PagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagestream_pages_total",
			Help: "Total number of pages processed",
		},
		[]string{"job", "outcome"}, // outcome: "ok", "failed"
	)

	// RowsTotal tracks rows written per job
	RowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagestream_rows_total",
			Help: "Total number of rows written to output",
		},
		[]string{"job"},
	)

	// JobDuration tracks end-to-end job duration
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagestream_job_duration_seconds",
			Help:    "End-to-end export job duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)
