package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barlabel_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barlabel_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Barcode generation metrics
	barcodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barlabel_barcodes_total",
			Help: "Total number of barcode generation requests",
		},
		[]string{"symbology", "status"}, // status: ok, invalid, failed
	)

	renderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barlabel_render_duration_seconds",
			Help:    "Barcode encode and render duration in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"symbology"},
	)

	labelFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barlabel_label_failures_total",
			Help: "Total number of label rendering failures",
		},
		[]string{"symbology"},
	)
)

func metricsHandler() http.Handler { return promhttp.Handler() }
