// Package metrics registers the client's Prometheus collectors on the default
// registry and offers Record* helpers so call sites never touch label values.
// The CLI serves them on /metrics when NEWSCLIENT_METRICS_ADDR is set.
package metrics
