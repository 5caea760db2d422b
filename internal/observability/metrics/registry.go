// Package metrics provides centralized Prometheus metrics for the news client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API metrics track calls to the news backend
var (
	// APIRequestsTotal counts API requests by method, endpoint, and status.
	// status is the HTTP status code, or "error" when no response was received.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsclient_api_requests_total",
			Help: "Total number of requests sent to the news API",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestDuration measures API request duration in seconds
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsclient_api_request_duration_seconds",
			Help:    "News API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RateLimitWaitDuration measures time spent waiting for the outbound rate limiter
	RateLimitWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsclient_rate_limit_wait_seconds",
			Help:    "Time spent waiting for the outbound rate limiter",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open, per breaker name.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newsclient_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"circuit"},
	)
)

// Feed metrics track page loading and caching
var (
	// FeedPageLoadsTotal counts page loads by language and result.
	// result: hit, miss, stale, error
	FeedPageLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsclient_feed_page_loads_total",
			Help: "Total number of feed page loads by cache result",
		},
		[]string{"language", "result"},
	)

	// FeedPageLoadDuration measures time to obtain a page, including retries
	FeedPageLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsclient_feed_page_load_duration_seconds",
			Help:    "Time taken to load a feed page",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"language"},
	)

	// FeedDuplicatesDroppedTotal counts articles dropped because their URL repeated within a page
	FeedDuplicatesDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsclient_feed_duplicates_dropped_total",
			Help: "Total number of duplicate articles dropped from API pages",
		},
	)
)

// User action metrics
var (
	// BookmarkTogglesTotal counts bookmark mutations by action (add, remove) and result
	BookmarkTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsclient_bookmark_toggles_total",
			Help: "Total number of bookmark add/remove attempts",
		},
		[]string{"action", "result"},
	)

	// AccountOperationsTotal counts account operations by name and result
	AccountOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsclient_account_operations_total",
			Help: "Total number of account operations",
		},
		[]string{"operation", "result"},
	)
)

// Article reader metrics
var (
	// ArticleReadsTotal counts full-article fetch attempts by result
	ArticleReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsclient_article_reads_total",
			Help: "Total number of full-article fetch attempts",
		},
		[]string{"result"}, // result: success, failure
	)

	// ArticleReadDuration measures time to fetch and extract an article
	ArticleReadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsclient_article_read_duration_seconds",
			Help:    "Time taken to fetch and extract an article",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ArticleReadSize measures extracted article text size in bytes
	ArticleReadSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "newsclient_article_read_size_bytes",
			Help: "Extracted article text size in bytes",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800,
				25600, 51200, 102400, 204800, 409600,
			},
		},
	)
)
