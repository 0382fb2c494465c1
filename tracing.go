package textops

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WithTracing returns a middleware that wraps every execution in a span named
// "textops.tool <name>".
func WithTracing(tracer trace.Tracer) Middleware {
	return func(next Tool) Tool {
		if tracer == nil {
			return next
		}
		return &tracingTool{toolBase: toolBase{next: next}, tracer: tracer}
	}
}

type tracingTool struct {
	toolBase
	tracer trace.Tracer
}

func (t *tracingTool) Execute(ctx context.Context, args []string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "textops.tool "+t.next.Name(),
		trace.WithAttributes(
			attribute.String("textops.tool", t.next.Name()),
			attribute.String("textops.render_mode", string(t.next.RenderMode())),
			attribute.Int("textops.args", len(args)),
		),
	)
	defer span.End()
	res, err := t.next.Execute(ctx, args)
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case IsToolArgumentError(res):
		span.SetAttributes(attribute.Bool("textops.argument_error", true))
	}
	return res, err
}
