// Package tracing wires OpenTelemetry into the client: Transport opens a client
// span per outgoing request and injects W3C trace headers, StartSpan and EndSpan
// wrap use-case operations, and Middleware lets the in-process test server join
// the same trace. The host process installs the TracerProvider.
package tracing
