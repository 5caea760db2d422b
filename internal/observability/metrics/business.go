package metrics

import (
	"strconv"
	"time"
)

// Cache results for FeedPageLoadsTotal.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
	LoadError  = "error"
)

// RecordAPIRequest records one API exchange. A status of 0 means no response was received.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	APIRequestsTotal.WithLabelValues(method, endpoint, label).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitWait records time spent blocked on the rate limiter.
func RecordRateLimitWait(duration time.Duration) {
	RateLimitWaitDuration.Observe(duration.Seconds())
}

// RecordPageLoad records how a feed page was obtained.
func RecordPageLoad(language, result string, duration time.Duration) {
	FeedPageLoadsTotal.WithLabelValues(language, result).Inc()
	if result != CacheHit {
		FeedPageLoadDuration.WithLabelValues(language).Observe(duration.Seconds())
	}
}

// RecordDuplicatesDropped records articles removed by in-page URL de-duplication.
func RecordDuplicatesDropped(count int) {
	if count > 0 {
		FeedDuplicatesDroppedTotal.Add(float64(count))
	}
}

// RecordBreakerState sets the state gauge of the named circuit breaker.
func RecordBreakerState(circuit string, state float64) {
	CircuitBreakerState.WithLabelValues(circuit).Set(state)
}

// RecordBookmarkToggle records a bookmark add or remove attempt.
func RecordBookmarkToggle(action string, success bool) {
	BookmarkTogglesTotal.WithLabelValues(action, result(success)).Inc()
}

// RecordAccountOperation records an account operation attempt.
func RecordAccountOperation(operation string, success bool) {
	AccountOperationsTotal.WithLabelValues(operation, result(success)).Inc()
}

// RecordArticleReadSuccess records a successful full-article fetch.
func RecordArticleReadSuccess(duration time.Duration, size int) {
	ArticleReadsTotal.WithLabelValues("success").Inc()
	ArticleReadDuration.Observe(duration.Seconds())
	ArticleReadSize.Observe(float64(size))
}

// RecordArticleReadFailed records a failed full-article fetch.
func RecordArticleReadFailed(duration time.Duration) {
	ArticleReadsTotal.WithLabelValues("failure").Inc()
	ArticleReadDuration.Observe(duration.Seconds())
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
