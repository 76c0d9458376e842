package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestRoundTrip(t *testing.T) {
	original := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), original)

	wire := FromContext(ctx)
	restored := trace.SpanContextFromContext(WithRemote(context.Background(), wire))
	require.True(t, restored.IsValid())
	assert.Equal(t, original.TraceID(), restored.TraceID())
	assert.Equal(t, original.SpanID(), restored.SpanID())
	assert.True(t, restored.IsRemote())
}

func TestEmptyContextIsIgnored(t *testing.T) {
	ctx := WithRemote(context.Background(), FromContext(context.Background()))
	assert.False(t, trace.SpanContextFromContext(ctx).IsValid())
}
