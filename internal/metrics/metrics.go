// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "borderhopper_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "borderhopper_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "borderhopper_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// Labelled by unit type.
	GraphNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "borderhopper_graph_nodes",
			Help: "Number of units in the loaded adjacency graph",
		},
		[]string{"type"},
	)

	GraphEdges = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "borderhopper_graph_edges",
			Help: "Number of directed adjacencies in the loaded graph",
		},
		[]string{"type"},
	)

	GraphComponents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "borderhopper_graph_components",
			Help: "Number of connected components in the loaded graph",
		},
		[]string{"type"},
	)

	RebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "borderhopper_graph_rebuild_duration_seconds",
			Help:    "Time to rebuild every graph from storage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
	)

	// op is one of random, hint, distance, connected, path, suggest.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "borderhopper_queries_total",
			Help: "Graph queries served, by operation and outcome",
		},
		[]string{"op", "type", "outcome"},
	)

	IngestedUnits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "borderhopper_ingested_units_total",
			Help: "Units written by the ingestion loader",
		},
		[]string{"type"},
	)
)
