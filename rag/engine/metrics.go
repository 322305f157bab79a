package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("medgraph.engine")

var (
	routerQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medgraph_router_queries_total",
		Help: "Queries processed by the hybrid router, by route",
	}, []string{"route"})

	routerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "medgraph_router_query_duration_seconds",
		Help:    "End-to-end hybrid router latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	buildChunks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medgraph_build_chunks_total",
		Help: "Document chunks run through entity and relation extraction",
	})

	buildFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "medgraph_build_fallbacks_total",
		Help: "Chunks where model-based entity recognition fell back to patterns",
	})
)
