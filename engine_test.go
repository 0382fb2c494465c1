package textops

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedEvaluator(eval ToolEvaluation, err error) Evaluator {
	return EvaluatorFunc(func(context.Context, EvaluateRequest) (ToolEvaluation, error) {
		return eval, err
	})
}

func TestEngine_ProcessRequest_Diff(t *testing.T) {
	e := NewEngine(testRegistry(t), fixedEvaluator(ToolEvaluation{Tool: "upper", Reasoning: "shout", Args: []Arg{}}, nil))
	res := e.ProcessRequest(context.Background(), Request{Text: "a\nb", TaskDescription: "upper"})
	assert.Equal(t, "A\nB", res.ConvertedText)
	assert.Equal(t, "upper", res.ToolUsed)
	assert.Equal(t, 1, res.Confidence)
	assert.Equal(t, RenderDiff, res.RenderMode)
	assert.Equal(t, UnifiedDiff("a\nb", "A\nB"), res.Diff)
	assert.NotEmpty(t, res.Diff)
	assert.Empty(t, res.Error)
	assert.Equal(t, "shout", res.Reasoning)
	assert.Equal(t, []Arg{}, res.ToolArgs)
}

func TestEngine_ProcessRequest_OutputModeHasNoDiff(t *testing.T) {
	e := NewEngine(testRegistry(t), fixedEvaluator(ToolEvaluation{
		Tool: "pad",
		Args: []Arg{{Name: "left", Value: "["}, {Name: "right", Value: "]"}},
	}, nil))
	res := e.ProcessRequest(context.Background(), Request{Text: "x", TaskDescription: "wrap"})
	assert.Equal(t, "[x]", res.ConvertedText)
	assert.Equal(t, RenderOutput, res.RenderMode)
	assert.Empty(t, res.Diff)
	assert.Equal(t, []Arg{{Name: "left", Value: "["}, {Name: "right", Value: "]"}}, res.ToolArgs)
}

func TestEngine_ProcessRequest_FallsBackToRequestArgs(t *testing.T) {
	e := NewEngine(testRegistry(t), fixedEvaluator(ToolEvaluation{Tool: "pad", Args: []Arg{}}, nil))
	res := e.ProcessRequest(context.Background(), Request{Text: "x", TaskDescription: "wrap", ToolArgs: []string{"<"}})
	assert.Equal(t, "<x", res.ConvertedText)
	assert.Equal(t, []Arg{{Name: "left", Value: "<"}, {Name: "right", Value: ""}}, res.ToolArgs,
		"args are normalized to the declared count")
}

func TestEngine_ProcessRequest_EvaluatorArgsWin(t *testing.T) {
	e := NewEngine(testRegistry(t), fixedEvaluator(ToolEvaluation{Tool: "pad", Args: []Arg{{Name: "left", Value: "("}}}, nil))
	res := e.ProcessRequest(context.Background(), Request{Text: "x", TaskDescription: "wrap", ToolArgs: []string{"<", ">"}})
	assert.Equal(t, "(x", res.ConvertedText)
}

func TestEngine_ProcessRequest_ArgumentErrorIsNotPipelineError(t *testing.T) {
	e := NewEngine(testRegistry(t), fixedEvaluator(ToolEvaluation{Tool: "pad", Args: []Arg{}}, nil))
	res := e.ProcessRequest(context.Background(), Request{Text: "x", TaskDescription: "wrap"})
	assert.Equal(t, "Error: Left padding cannot be empty.", res.ConvertedText)
	assert.Empty(t, res.Error)
	assert.Equal(t, 1, res.Confidence)
	assert.Equal(t, "pad", res.ToolUsed)
}

func TestEngine_ProcessRequest_UnknownTool(t *testing.T) {
	e := NewEngine(testRegistry(t), fixedEvaluator(ToolEvaluation{Tool: ToolCustom, Args: []Arg{}}, nil))
	res := e.ProcessRequest(context.Background(), Request{Text: "keep me", TaskDescription: "?"})
	assert.Equal(t, ToolUsedError, res.ToolUsed)
	assert.Equal(t, "Tool 'custom' is not available.", res.Error)
	assert.Equal(t, 0, res.Confidence)
	assert.Equal(t, RenderDiff, res.RenderMode)
	assert.Equal(t, "keep me", res.ConvertedText)
	assert.Equal(t, "keep me", res.OriginalText)
	assert.Equal(t, []Arg{}, res.ToolArgs)
	assert.True(t, res.Failed())
}

func TestEngine_ProcessRequest_EvaluatorError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	e := NewEngine(testRegistry(t), fixedEvaluator(ToolEvaluation{}, &EvaluationError{Strategy: "test", Err: errors.New("timeout")}), WithLogger(logger))
	res, eval := e.Process(context.Background(), Request{Text: "x", TaskDescription: "t"})
	assert.Equal(t, ToolUsedError, res.ToolUsed)
	assert.Contains(t, res.Error, "timeout")
	assert.Equal(t, 0, res.Confidence)
	assert.Equal(t, ToolEvaluation{}, eval)
	assert.Contains(t, buf.String(), "conversion failed")
}

func TestEngine_ProcessRequest_NoEvaluator(t *testing.T) {
	e := NewEngine(testRegistry(t), nil)
	res := e.ProcessRequest(context.Background(), Request{Text: "x", TaskDescription: "t"})
	assert.True(t, res.Failed())
	assert.Contains(t, res.Error, "no evaluator configured")
}

func TestEngine_ProcessRequest_PanicsBecomeResults(t *testing.T) {
	reg := NewRegistry(WithRecoverPanics(false))
	reg.Register(MustTool("boom", "d", RenderDiff, nil, func(string, ...string) string { panic("kaboom") }))
	e := NewEngine(reg, fixedEvaluator(ToolEvaluation{Tool: "boom", Args: []Arg{}}, nil))
	var res ConversionResult
	require.NotPanics(t, func() {
		res = e.ProcessRequest(context.Background(), Request{Text: "x", TaskDescription: "t"})
	})
	assert.Equal(t, ToolUsedError, res.ToolUsed)
	assert.Contains(t, res.Error, "kaboom")

	evalPanics := NewEngine(testRegistry(t), EvaluatorFunc(func(context.Context, EvaluateRequest) (ToolEvaluation, error) {
		panic("evaluator down")
	}))
	require.NotPanics(t, func() {
		res = evalPanics.ProcessRequest(context.Background(), Request{Text: "x", TaskDescription: "t"})
	})
	assert.Contains(t, res.Error, "evaluator down")
}

func TestEngine_EvaluateTask(t *testing.T) {
	e := NewEngine(testRegistry(t), fixedEvaluator(ToolEvaluation{Tool: "upper", Reasoning: "r", Args: []Arg{}}, nil))
	got := e.EvaluateTask(context.Background(), "x", "upper", "")
	assert.Equal(t, "upper", got.Tool)

	failing := e.WithEvaluator(fixedEvaluator(ToolEvaluation{}, errors.New("offline")))
	got = failing.EvaluateTask(context.Background(), "x", "upper", "")
	assert.Equal(t, ToolCustom, got.Tool)
	assert.Equal(t, "Evaluation failed: offline", got.Reasoning)
	assert.Equal(t, []Arg{}, got.Args)

	panicking := e.WithEvaluator(EvaluatorFunc(func(context.Context, EvaluateRequest) (ToolEvaluation, error) {
		panic("bad")
	}))
	got = panicking.EvaluateTask(context.Background(), "x", "upper", "")
	assert.Equal(t, ToolCustom, got.Tool)
	assert.Equal(t, "Evaluation failed: bad", got.Reasoning)

	assert.Equal(t, "upper", e.EvaluateTask(context.Background(), "x", "upper", "").Tool, "WithEvaluator returns a copy")
}

func TestEngine_ExecuteTool(t *testing.T) {
	e := NewEngine(testRegistry(t), nil)
	res := e.ExecuteTool(context.Background(), "pad", "x", []string{"<", ">", "extra"})
	assert.Equal(t, "<x>", res.ConvertedText)
	assert.Equal(t, []Arg{{Name: "left", Value: "<"}, {Name: "right", Value: ">"}}, res.ToolArgs)

	res = e.ExecuteTool(context.Background(), "notARealTool", "x", nil)
	assert.Equal(t, ToolUsedError, res.ToolUsed)
	assert.Equal(t, "Tool 'notARealTool' is not available.", res.Error)
}

func TestEngine_ListToolSignatures(t *testing.T) {
	e := NewEngine(testRegistry(t), nil)
	assert.Equal(t, map[string][]string{
		"pad":   {"text", "left", "right"},
		"upper": {"text"},
	}, e.ListToolSignatures())
	require.Len(t, e.Tools(), 2)
	assert.Same(t, e.registry, e.Registry())
}

func TestEngine_ConfidenceIsBinary(t *testing.T) {
	e := NewEngine(testRegistry(t), NewHeuristicEvaluator())
	for _, task := range []string{"upper", "count words", "capitalize", "nothing"} {
		res := e.ProcessRequest(context.Background(), Request{Text: "x", TaskDescription: task})
		assert.Equal(t, res.Failed(), res.Confidence == 0, task)
		assert.Contains(t, []int{0, 1}, res.Confidence)
	}
}
