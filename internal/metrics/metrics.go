package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks outbound HTTP requests per rate-limit resource
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractchat_http_requests_total",
			Help: "Total number of outbound HTTP requests",
		},
		[]string{"resource"},
	)

	// RetriesTotal tracks HTTP-level retries per resource
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractchat_http_retries_total",
			Help: "Total number of HTTP retries",
		},
		[]string{"resource"},
	)

	// RequestDuration tracks outbound request latency, retries included
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contractchat_http_request_duration_seconds",
			Help:    "Outbound request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	// ResolutionsTotal tracks finished resolutions per terminal status
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractchat_resolutions_total",
			Help: "Total number of contract resolutions by status",
		},
		[]string{"status"},
	)

	// RateLimitWait tracks time spent waiting on rate-limit buckets
	RateLimitWait = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractchat_ratelimit_wait_seconds_total",
			Help: "Cumulative time spent waiting for rate-limit slots",
		},
		[]string{"resource"},
	)
)
