package textops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestWithTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	reg := NewRegistry()
	reg.Register(upperTool(t))
	reg.Register(padTool(t))
	reg.Register(MustTool("boom", "d", RenderDiff, nil, func(string, ...string) string { panic("x") }))
	reg.Use(WithTracing(tp.Tracer("test")), WithRecovery())
	ctx := context.Background()

	out, err := reg.Execute(ctx, "upper", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "A", out)
	_, err = reg.Execute(ctx, "pad", []string{"a", ""})
	require.NoError(t, err)
	_, err = reg.Execute(ctx, "boom", []string{"a"})
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "textops.tool upper", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("textops.render_mode", "diff"))
	assert.Contains(t, spans[1].Attributes(), attribute.Bool("textops.argument_error", true))
	assert.Equal(t, codes.Error, spans[2].Status().Code)
}

func TestWithTracing_NilTracer(t *testing.T) {
	tool := upperTool(t)
	assert.Same(t, tool, WithTracing(nil)(tool))
}
