package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitDisabledIsNoop(t *testing.T) {
	tr, err := Init(Config{Enabled: false})
	require.NoError(t, err)

	_, span := tr.StartSpan(context.Background(), "gift.item")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestNilTracerStartsNoopSpan(t *testing.T) {
	var tr *Tracer
	_, span := tr.StartSpan(context.Background(), "gift.run")
	assert.False(t, span.IsRecording())
	span.End()
	assert.NoError(t, tr.Shutdown(context.Background()))
}

func TestProviderRecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(rec))
	tr := NewWithProvider(tp, "test")

	ctx, parent := tr.StartSpan(context.Background(), "gift.run")
	_, child := tr.StartSpan(ctx, "gift.attempt")
	child.End()
	parent.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "gift.attempt", ended[0].Name())
	assert.Equal(t, parent.SpanContext().SpanID(), ended[0].Parent().SpanID())
	require.NoError(t, tr.Shutdown(context.Background()))
}
