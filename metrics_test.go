package textops

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ToolExecutions(t *testing.T) {
	m := MustNewMetrics(prometheus.NewRegistry())
	reg := testRegistry(t)
	reg.Use(WithMetrics(m))
	ctx := context.Background()

	_, err := reg.Execute(ctx, "upper", []string{"a"})
	require.NoError(t, err)
	_, err = reg.Execute(ctx, "pad", []string{"a", ""})
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(m.toolExecutions.WithLabelValues("upper", OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.toolExecutions.WithLabelValues("pad", OutcomeArgumentErr)), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.toolDuration))
}

func TestMetrics_PipelineRequests(t *testing.T) {
	m := MustNewMetrics(prometheus.NewRegistry())
	e := NewEngine(testRegistry(t), fixedEvaluator(ToolEvaluation{Tool: "upper", Args: []Arg{}}, nil), WithEngineMetrics(m))
	ctx := context.Background()

	e.ProcessRequest(ctx, Request{Text: "a", TaskDescription: "upper"})
	e.ExecuteTool(ctx, "missing", "a", nil)
	e.WithEvaluator(fixedEvaluator(ToolEvaluation{}, &EvaluationError{Strategy: "x", Err: context.DeadlineExceeded})).
		ProcessRequest(ctx, Request{Text: "a", TaskDescription: "upper"})

	assert.InDelta(t, 1, testutil.ToFloat64(m.requests.WithLabelValues("upper", OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.requests.WithLabelValues(ToolUsedError, OutcomeUnavailable)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.requests.WithLabelValues(ToolUsedError, OutcomeEvaluatorErr)), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observeRequest(ConversionResult{}, nil) })
	tool := upperTool(t)
	assert.Same(t, tool, WithMetrics(nil)(tool))
}

func TestDefaultMetrics_Once(t *testing.T) {
	assert.Same(t, DefaultMetrics(), DefaultMetrics())
}
