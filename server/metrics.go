package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spc_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spc_analyses_total",
			Help: "Total number of SPC analysis runs",
		},
		[]string{"chart_type", "status"},
	)

	analysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spc_analysis_duration_seconds",
			Help:    "SPC analysis latency in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	violationsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spc_violations_detected_total",
			Help: "Total number of rule violations detected",
		},
		[]string{"rule", "severity"},
	)
)
