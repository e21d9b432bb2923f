package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs an in-memory span exporter and restores the
// previous global tracer provider when the test ends.
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	return exporter
}

func tracedRouter(pattern string, status int) http.Handler {
	r := chi.NewRouter()
	r.Use(Tracing("contacts"))
	r.Get(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
	return r
}

func TestTracing_SpanNamedAfterRoute(t *testing.T) {
	exporter := setupTestTracer(t)
	router := tracedRouter("/api/v1/contacts", http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	assert.Equal(t, "GET /api/v1/contacts", spans[0].Name)
}

func TestTracing_RecordsStatusCode(t *testing.T) {
	exporter := setupTestTracer(t)
	router := tracedRouter("/missing", http.StatusNotFound)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)

	var status int64 = -1
	for _, attr := range spans[0].Attributes {
		if string(attr.Key) == "http.status_code" {
			status = attr.Value.AsInt64()
		}
	}
	assert.Equal(t, int64(404), status)
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	router := tracedRouter("/broken", http.StatusInternalServerError)

	req := httptest.NewRequest(http.MethodGet, "/broken", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestTracing_HonorsInboundTraceContext(t *testing.T) {
	exporter := setupTestTracer(t)
	router := tracedRouter("/traced", http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/traced", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.NotEmpty(t, rec.Header().Get("traceparent"))
}
