package textops

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"unicode/utf8"
)

//go:embed prompts/evaluate.tmpl
var promptFS embed.FS

var evaluatePrompt = template.Must(
	template.New("evaluate.tmpl").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(promptFS, "prompts/evaluate.tmpl"),
)

// DefaultMaxSampleRunes bounds the sample text embedded in a delegated prompt.
const DefaultMaxSampleRunes = 4000

// DelegatedOption configures a DelegatedEvaluator.
type DelegatedOption func(*DelegatedEvaluator)

// WithMaxSampleRunes truncates the sample text sent to the backend. Zero or negative
// disables truncation.
func WithMaxSampleRunes(n int) DelegatedOption {
	return func(d *DelegatedEvaluator) {
		d.maxSample = n
	}
}

// WithEvaluatorLogger sets the logger used for backend failures and unknown tools.
func WithEvaluatorLogger(logger *slog.Logger) DelegatedOption {
	return func(d *DelegatedEvaluator) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// DelegatedEvaluator asks an external reasoning backend to choose a tool. The prompt
// enumerates the whole catalog; the reply is parsed with ParseReply and its values are
// bound positionally to the chosen tool's declared parameters.
type DelegatedEvaluator struct {
	registry  *Registry
	backend   Backend
	maxSample int
	logger    *slog.Logger
}

// NewDelegatedEvaluator returns an evaluator backed by backend. reg supplies the
// catalog listed in the prompt and the parameter order used for binding.
func NewDelegatedEvaluator(reg *Registry, backend Backend, opts ...DelegatedOption) *DelegatedEvaluator {
	d := &DelegatedEvaluator{
		registry:  reg,
		backend:   backend,
		maxSample: DefaultMaxSampleRunes,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type promptData struct {
	Tools   []ToolSignature
	Task    string
	Text    string
	Example string
}

// BuildPrompt renders the backend prompt for req.
func (d *DelegatedEvaluator) BuildPrompt(req EvaluateRequest) (string, error) {
	var b strings.Builder
	err := evaluatePrompt.Execute(&b, promptData{
		Tools:   d.registry.List(),
		Task:    req.TaskDescription,
		Text:    truncateRunes(req.Text, d.maxSample),
		Example: truncateRunes(req.ExampleOutput, d.maxSample),
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

// Evaluate implements Evaluator. Backend failures are returned as *EvaluationError.
func (d *DelegatedEvaluator) Evaluate(ctx context.Context, req EvaluateRequest) (ToolEvaluation, error) {
	prompt, err := d.BuildPrompt(req)
	if err != nil {
		return ToolEvaluation{}, &EvaluationError{Strategy: StrategyDelegated, Err: err}
	}
	reply, err := d.backend.Complete(ctx, prompt)
	if err != nil {
		d.logger.WarnContext(ctx, "reasoning backend failed", "error", err)
		return ToolEvaluation{}, &EvaluationError{Strategy: StrategyDelegated, Err: err}
	}
	parsed := ParseReply(reply)
	eval := ToolEvaluation{Tool: parsed.Tool, Reasoning: parsed.Reasoning}
	if sig, ok := d.registry.Signature(parsed.Tool); ok {
		eval.Args = BindArgs(sig.Params, parsed.Values())
	} else {
		if parsed.Tool != ToolCustom {
			d.logger.InfoContext(ctx, "backend chose unknown tool", "tool", parsed.Tool)
		}
		eval.Args = parsed.Args
	}
	if eval.Args == nil {
		eval.Args = []Arg{}
	}
	return eval, nil
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

var _ Evaluator = (*DelegatedEvaluator)(nil)
