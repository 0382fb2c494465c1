package textops

import (
	"context"
	"errors"
	"fmt"
)

// EvaluateRequest is the input of an Evaluator.
type EvaluateRequest struct {
	Text            string `json:"text"`
	TaskDescription string `json:"task_description"`
	ExampleOutput   string `json:"example_output,omitempty"`
}

// Evaluator decides which tool satisfies a task description. The returned tool name
// is not guaranteed to exist in the registry; ToolCustom means no decision.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (ToolEvaluation, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(ctx context.Context, req EvaluateRequest) (ToolEvaluation, error)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(ctx context.Context, req EvaluateRequest) (ToolEvaluation, error) {
	return f(ctx, req)
}

// EvaluationError wraps a failure of the decision source (backend outage, timeout).
type EvaluationError struct {
	Strategy string
	Err      error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s evaluation failed: %v", e.Strategy, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// IsEvaluationError returns true if err is or wraps an EvaluationError.
func IsEvaluationError(err error) bool {
	var ee *EvaluationError
	return errors.As(err, &ee)
}

// Backend is the external reasoning service used by DelegatedEvaluator. It receives a
// fully rendered prompt and returns the raw reply text. Timeouts are the backend's concern.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f BackendFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Strategy names accepted by NewEvaluator and stored on routines.
const (
	StrategyHeuristic = "heuristic"
	StrategyDelegated = "delegated"
)

// NewEvaluator returns the evaluator for the named strategy. The delegated strategy
// requires a backend.
func NewEvaluator(strategy string, reg *Registry, backend Backend, opts ...DelegatedOption) (Evaluator, error) {
	switch strategy {
	case "", StrategyHeuristic:
		return NewHeuristicEvaluator(), nil
	case StrategyDelegated:
		if backend == nil {
			return nil, ErrNoBackend
		}
		return NewDelegatedEvaluator(reg, backend, opts...), nil
	default:
		return nil, fmt.Errorf("unknown evaluation strategy %q", strategy)
	}
}
