package textops

import (
	"context"
)

// RenderMode tells a client how to display a tool result.
type RenderMode string

// Render modes. RenderDiff shows the result against the original text; RenderOutput
// shows the result standalone (counts, extractions, generated text).
const (
	RenderDiff   RenderMode = "diff"
	RenderOutput RenderMode = "output"
)

// TextParam is the implicit first parameter of every tool.
const TextParam = "text"

// ToolCustom is returned by evaluators that could not decide on a tool.
const ToolCustom = "custom"

// ToolFunc is the implementation of a catalog tool. args are positional and follow the
// tool's declared parameter order (text excluded). Validation failures are reported
// in the returned string with an "Error: " prefix.
type ToolFunc func(text string, args ...string) string

// Tool is a named, parameterized text operation.
type Tool interface {
	Name() string
	Description() string
	// RenderMode is authoritative for display; it is never inferred from output.
	RenderMode() RenderMode
	// Params returns the ordered parameter names, starting with TextParam.
	Params() []string
	// Execute runs the tool. args[0] is the text; the rest follow Params()[1:].
	Execute(ctx context.Context, args []string) (string, error)
}

// ToolMetadata is implemented by tools created with NewTool and exposes optional
// per-tool settings for discovery.
type ToolMetadata interface {
	Tags() []string
	Version() string
}

// ToolSignature is the public description of a registered tool.
type ToolSignature struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	RenderMode  RenderMode `json:"render_mode" yaml:"render_mode"`
	Params      []string   `json:"params" yaml:"params"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ArgNames returns the declared parameter names without the leading text parameter.
func (s ToolSignature) ArgNames() []string {
	if len(s.Params) == 0 {
		return nil
	}
	return append([]string(nil), s.Params[1:]...)
}

// Arg is a single bound tool argument.
type Arg struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ToolEvaluation is the decision of an Evaluator.
type ToolEvaluation struct {
	Reasoning string `json:"reasoning"`
	Tool      string `json:"tool"`
	Args      []Arg  `json:"args"`
}

// Values returns the argument values in order.
func (e ToolEvaluation) Values() []string {
	out := make([]string, len(e.Args))
	for i, a := range e.Args {
		out[i] = a.Value
	}
	return out
}

// ConversionResult is the outcome of one pipeline run. Error is empty on success;
// Confidence is 0 iff Error is set.
type ConversionResult struct {
	OriginalText  string     `json:"original_text"`
	ConvertedText string     `json:"converted_text"`
	Diff          string     `json:"diff"`
	ToolUsed      string     `json:"tool_used"`
	Confidence    int        `json:"confidence"`
	RenderMode    RenderMode `json:"render_mode"`
	ToolArgs      []Arg      `json:"tool_args"`
	Reasoning     string     `json:"reasoning,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// Failed reports whether the result carries a pipeline error.
func (r ConversionResult) Failed() bool { return r.Error != "" }

// ExecutionSummary is passed to the after-execution hook (WithOnAfterExecute).
type ExecutionSummary struct {
	ToolName string
	Args     []string
	Output   string
	Error    error
}
