package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hyperjump/kensaku/internal/store"
)

const namespace = "kensaku"

// serverMetrics holds the Prometheus metrics owned by the HTTP server.
// Each Server registers into its own registry so tests stay hermetic.
type serverMetrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpDurationSeconds *prometheus.HistogramVec

	// searchRequestsTotal is partitioned by search type and outcome ("ok" or an error kind).
	searchRequestsTotal *prometheus.CounterVec
	// searchCandidates records index hits examined per query before tenant filtering.
	searchCandidates *prometheus.HistogramVec

	addedVectorsTotal prometheus.Counter
	ingestDocsTotal   *prometheus.CounterVec
	embedTextsTotal   prometheus.Counter
}

func newServerMetrics(reg prometheus.Registerer, st *store.Store) *serverMetrics {
	factory := promauto.With(reg)

	if st != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "vectors",
			Help:      "Number of vectors in the store.",
		}, func() float64 { return float64(st.Size()) })
	}

	return &serverMetrics{
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, partitioned by method, route, and status code.",
		}, []string{"method", "handler", "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "handler"}),

		searchRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Searches executed, partitioned by search type and outcome.",
		}, []string{"type", "outcome"}),

		searchCandidates: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "candidates",
			Help:      "Index candidates examined per search before tenant filtering.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"type"}),

		addedVectorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "added_vectors_total",
			Help:      "Vectors added through /index/add and /ingest.",
		}),

		ingestDocsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Documents submitted to /ingest, partitioned by outcome.",
		}, []string{"outcome"}),

		embedTextsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embed",
			Name:      "texts_total",
			Help:      "Texts embedded through /embed.",
		}),
	}
}

// outcome labels an operation result for metrics.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return errKind(err)
}
