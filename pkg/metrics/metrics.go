// Package metrics provides centralized Prometheus metrics registry for the
// export pipeline. All metrics are defined in their respective packages
// (fetch, cache, export) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the pipeline.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/fetch):
//   - pagestream_requests_total{status} (Counter): Total page requests by HTTP status
//   - pagestream_request_duration_seconds (Histogram): Page request duration
//   - pagestream_errors_total{class} (Counter): Fetch errors by class
//     (network, client, server, decode)
//
// Cache Metrics (pkg/cache):
//   - pagestream_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - pagestream_cache_misses_total (Counter): Cache misses
//   - pagestream_cache_errors_total{operation} (Counter): Cache operation errors
//
// Export Metrics (pkg/export):
//   - pagestream_pages_total{job,outcome} (Counter): Pages processed by outcome (ok, failed)
//   - pagestream_rows_total{job} (Counter): Rows written to output
//   - pagestream_job_duration_seconds{job} (Histogram): End-to-end job duration
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(pagestream_cache_hits_total[5m])) /
//   (sum(rate(pagestream_cache_hits_total[5m])) + sum(rate(pagestream_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(pagestream_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(pagestream_request_duration_seconds_bucket[5m]))
