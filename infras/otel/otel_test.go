package otel_test

import (
	"context"
	"errors"
	"testing"
	"time"
	"tutorhub/infras/otel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracer(t *testing.T) (otel.Otel, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tracer := otel.NewWithProvider(trace.NewTracerProvider(trace.WithSpanProcessor(recorder)))

	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	return tracer, recorder
}

func attributes(span trace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}

	return out
}

func TestScope_RecordsSpan(t *testing.T) {
	tracer, recorder := newTracer(t)

	_, scope := tracer.NewScope(context.Background(), "service", "service.Create")
	scope.AddEvent("booking created")
	scope.SetAttributes(map[string]any{
		"booking.id":    "b-1",
		"booking.count": 3,
		"booking.paid":  true,
		"took":          1500 * time.Millisecond,
	})
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	span := spans[0]
	assert.Equal(t, "service.Create", span.Name())
	assert.Equal(t, "service", span.InstrumentationScope().Name)
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "booking created", span.Events()[0].Name)

	attrs := attributes(span)
	assert.Equal(t, "b-1", attrs["booking.id"].AsString())
	assert.Equal(t, int64(3), attrs["booking.count"].AsInt64())
	assert.True(t, attrs["booking.paid"].AsBool())
	assert.Equal(t, int64(1500), attrs["took"].AsInt64())
}

func TestScope_TraceError(t *testing.T) {
	tracer, recorder := newTracer(t)

	_, scope := tracer.NewScope(context.Background(), "repository", "repository.Get")
	scope.TraceIfError(nil)
	scope.TraceIfError(errors.New("connection reset"))
	scope.End()

	span := recorder.Ended()[0]
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "connection reset", span.Status().Description)
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "exception", span.Events()[0].Name)
}

func TestScope_NestsUnderParent(t *testing.T) {
	tracer, recorder := newTracer(t)

	ctx, parent := tracer.NewScope(context.Background(), "handler", "handler.Create")
	_, child := tracer.NewScope(ctx, "service", "service.Create")
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}
