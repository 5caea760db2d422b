package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"newsclient/internal/observability/requestid"
)

func setupTracing(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
	})
	return exporter, tp
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func spanByKind(spans tracetest.SpanStubs, kind trace.SpanKind) *tracetest.SpanStub {
	for i := range spans {
		if spans[i].SpanKind == kind {
			return &spans[i]
		}
	}
	return nil
}

func TestTransport_ClientAndServerShareTrace(t *testing.T) {
	exporter, tp := setupTracing(t)

	var gotRequestID string
	srv := httptest.NewServer(Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = requestid.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})))
	defer srv.Close()

	client := &http.Client{Transport: &Transport{Next: &requestid.Transport{}}}
	ctx := requestid.WithRequestID(context.Background(), "req-42")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/news/", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	clientSpan := spanByKind(spans, trace.SpanKindClient)
	serverSpan := spanByKind(spans, trace.SpanKindServer)
	require.NotNil(t, clientSpan)
	require.NotNil(t, serverSpan)

	assert.Equal(t, "HTTP GET /news/", clientSpan.Name)
	assert.Equal(t, "GET /news/", serverSpan.Name)
	assert.Equal(t, clientSpan.SpanContext.TraceID(), serverSpan.SpanContext.TraceID())
	assert.Equal(t, clientSpan.SpanContext.SpanID(), serverSpan.Parent.SpanID())
	assert.Equal(t, "req-42", gotRequestID)

	v, ok := attrValue(serverSpan.Attributes, "http.request_id")
	require.True(t, ok)
	assert.Equal(t, "req-42", v.AsString())

	v, ok = attrValue(clientSpan.Attributes, "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(200), v.AsInt64())
}

func TestTransport_MarksServerErrors(t *testing.T) {
	exporter, tp := setupTracing(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	resp, err := (&http.Client{Transport: &Transport{}}).Get(srv.URL + "/news/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	v, ok := attrValue(spans[0].Attributes, "error")
	require.True(t, ok)
	assert.True(t, v.AsBool())
}

type failingTransport struct{ err error }

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) { return nil, f.err }

func TestTransport_RecordsTransportError(t *testing.T) {
	exporter, tp := setupTracing(t)

	boom := errors.New("connection refused")
	req := httptest.NewRequest(http.MethodGet, "http://news.invalid/news/", nil)
	req.RequestURI = ""

	_, err := (&Transport{Next: failingTransport{err: boom}}).RoundTrip(req)
	require.ErrorIs(t, err, boom)
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.NotEmpty(t, spans[0].Events, "error should be recorded as a span event")
}

func TestMiddleware_NoErrorAttributeFor4xx(t *testing.T) {
	exporter, tp := setupTracing(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/bookmarks/add/", nil))
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.NotEmpty(t, rr.Header().Get("X-Trace-Id"))
	_, hasErr := attrValue(spans[0].Attributes, "error")
	assert.False(t, hasErr)
	v, _ := attrValue(spans[0].Attributes, "http.status_code")
	assert.Equal(t, int64(401), v.AsInt64())
}

func TestStartSpan_EndSpanRecordsError(t *testing.T) {
	exporter, tp := setupTracing(t)

	_, span := StartSpan(context.Background(), "feed.load", attribute.String("language", "np"))
	EndSpan(span, errors.New("HTTP 500"))
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "feed.load", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	v, ok := attrValue(spans[0].Attributes, "language")
	require.True(t, ok)
	assert.Equal(t, "np", v.AsString())
}
