package textops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ToolUsedError is the tool_used value of results that failed before or during execution.
const ToolUsedError = "error"

// Request is the input of Engine.ProcessRequest. ToolArgs are positional values used
// when the evaluator returns no arguments (the heuristic strategy never does).
type Request struct {
	Text            string   `json:"text"`
	TaskDescription string   `json:"task_description"`
	ExampleOutput   string   `json:"example_output,omitempty"`
	ToolArgs        []string `json:"tool_args,omitempty"`
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEngineMetrics records every pipeline run in m.
func WithEngineMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// Engine is the execution pipeline: evaluate, execute, diff. Its public methods never
// return errors; every failure is expressed in the returned value.
type Engine struct {
	registry  *Registry
	evaluator Evaluator
	logger    *slog.Logger
	metrics   *Metrics
}

// NewEngine returns an Engine executing tools from reg with decisions from evaluator.
func NewEngine(reg *Registry, evaluator Evaluator, opts ...EngineOption) *Engine {
	e := &Engine{
		registry:  reg,
		evaluator: evaluator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *Registry { return e.registry }

// WithEvaluator returns a copy of e that uses evaluator instead.
func (e *Engine) WithEvaluator(evaluator Evaluator) *Engine {
	cp := *e
	cp.evaluator = evaluator
	return &cp
}

// ListToolSignatures maps every tool name to its ordered parameter names (text first).
func (e *Engine) ListToolSignatures() map[string][]string {
	out := make(map[string][]string)
	for _, sig := range e.registry.List() {
		out[sig.Name] = sig.Params
	}
	return out
}

// Tools returns the full signatures of the catalog, sorted by name.
func (e *Engine) Tools() []ToolSignature {
	return e.registry.List()
}

// EvaluateTask asks the evaluator for a decision. Failures resolve to a ToolCustom
// evaluation whose reasoning explains the problem.
func (e *Engine) EvaluateTask(ctx context.Context, text, taskDescription, exampleOutput string) (eval ToolEvaluation) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.ErrorContext(ctx, "evaluator panicked", "panic", p)
			eval = ToolEvaluation{Tool: ToolCustom, Reasoning: fmt.Sprintf("Evaluation failed: %v", p), Args: []Arg{}}
		}
	}()
	eval, err := e.evaluate(ctx, EvaluateRequest{Text: text, TaskDescription: taskDescription, ExampleOutput: exampleOutput})
	if err != nil {
		return ToolEvaluation{Tool: ToolCustom, Reasoning: "Evaluation failed: " + err.Error(), Args: []Arg{}}
	}
	return eval
}

// ProcessRequest runs the full pipeline: evaluate, fall back to req.ToolArgs when the
// evaluation carries no arguments, execute, and build the result.
func (e *Engine) ProcessRequest(ctx context.Context, req Request) (res ConversionResult) {
	res, _ = e.Process(ctx, req)
	return res
}

// Process is ProcessRequest that also returns the evaluation the result is based on.
// The evaluation is the zero value when evaluation failed.
func (e *Engine) Process(ctx context.Context, req Request) (res ConversionResult, eval ToolEvaluation) {
	var runErr error
	defer func() {
		if p := recover(); p != nil {
			runErr = &SystemError{Err: &panicError{p: p}}
			res = errorResult(req.Text, runErr)
		}
		if runErr != nil {
			e.logger.WarnContext(ctx, "conversion failed", "task", req.TaskDescription, "error", runErr)
		}
		e.metrics.observeRequest(res, runErr)
	}()

	eval, runErr = e.evaluate(ctx, EvaluateRequest{
		Text:            req.Text,
		TaskDescription: req.TaskDescription,
		ExampleOutput:   req.ExampleOutput,
	})
	if runErr != nil {
		return errorResult(req.Text, runErr), ToolEvaluation{}
	}
	args := eval.Values()
	if len(args) == 0 {
		args = req.ToolArgs
	}
	res, runErr = e.execute(ctx, eval.Tool, req.Text, args)
	res.Reasoning = eval.Reasoning
	return res, eval
}

// ExecuteTool runs name directly, without evaluation. args are positional values
// after the text.
func (e *Engine) ExecuteTool(ctx context.Context, name, text string, args []string) (res ConversionResult) {
	var runErr error
	defer func() {
		if p := recover(); p != nil {
			runErr = &SystemError{Err: &panicError{p: p}}
			res = errorResult(text, runErr)
		}
		e.metrics.observeRequest(res, runErr)
	}()
	res, runErr = e.execute(ctx, name, text, args)
	return res
}

func (e *Engine) evaluate(ctx context.Context, req EvaluateRequest) (ToolEvaluation, error) {
	if e.evaluator == nil {
		return ToolEvaluation{}, &EvaluationError{Strategy: "none", Err: errors.New("no evaluator configured")}
	}
	return e.evaluator.Evaluate(ctx, req)
}

// execute runs the tool and shapes the result. The returned error is informational;
// the result already reflects it.
func (e *Engine) execute(ctx context.Context, name, text string, args []string) (ConversionResult, error) {
	sig, ok := e.registry.Signature(name)
	if ok {
		args = NormalizeArgs(args, len(sig.Params)-1)
	}
	converted, err := e.registry.Execute(ctx, name, append([]string{text}, args...))
	if err != nil {
		return errorResult(text, err), err
	}
	mode := sig.RenderMode
	if mode == "" {
		mode = RenderDiff
	}
	res := ConversionResult{
		OriginalText:  text,
		ConvertedText: converted,
		ToolUsed:      name,
		Confidence:    1,
		RenderMode:    mode,
		ToolArgs:      BindArgs(sig.Params, args),
	}
	if mode == RenderDiff {
		res.Diff = UnifiedDiff(text, converted)
	}
	return res, nil
}

func errorResult(text string, err error) ConversionResult {
	return ConversionResult{
		OriginalText:  text,
		ConvertedText: text,
		ToolUsed:      ToolUsedError,
		Confidence:    0,
		RenderMode:    RenderDiff,
		ToolArgs:      []Arg{},
		Error:         userMessage(err),
	}
}

// userMessage returns the text shown for err. Tool lookups keep their exact message.
func userMessage(err error) string {
	var na *ToolNotAvailableError
	if errors.As(err, &na) {
		return na.Error()
	}
	return err.Error()
}
