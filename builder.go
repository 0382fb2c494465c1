package textops

import (
	"context"
	"fmt"
	"slices"
)

// tool is the internal implementation of Tool built by NewTool.
type tool struct {
	name        string
	description string
	mode        RenderMode
	params      []string
	fn          ToolFunc
	opts        toolOptions
}

// NewTool builds a Tool from a pure text function. params lists the parameter names
// after the implicit text parameter, in the order fn receives them. A leading "text"
// entry is accepted and not duplicated.
// Execute always passes exactly len(params) arguments to fn: missing values are empty
// strings and extra values are dropped.
func NewTool(name, description string, mode RenderMode, params []string, fn ToolFunc, opts ...ToolOption) (Tool, error) {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	if name == "" {
		return nil, fmt.Errorf("tool name must not be empty")
	}
	if fn == nil {
		return nil, fmt.Errorf("tool %q: handler must not be nil", name)
	}
	switch mode {
	case RenderDiff, RenderOutput:
	case "":
		mode = RenderDiff
	default:
		return nil, fmt.Errorf("tool %q: unknown render mode %q", name, mode)
	}
	if len(params) > 0 && params[0] == TextParam {
		params = params[1:]
	}
	for i, p := range params {
		if p == "" || p == TextParam {
			return nil, fmt.Errorf("tool %q: invalid parameter name %q at position %d", name, p, i+1)
		}
		if slices.Contains(params[:i], p) {
			return nil, fmt.Errorf("tool %q: duplicate parameter %q", name, p)
		}
	}
	return &tool{
		name:        name,
		description: description,
		mode:        mode,
		params:      append([]string{TextParam}, params...),
		fn:          fn,
		opts:        o,
	}, nil
}

// MustTool is NewTool that panics on error. Intended for static catalogs.
func MustTool(name, description string, mode RenderMode, params []string, fn ToolFunc, opts ...ToolOption) Tool {
	t, err := NewTool(name, description, mode, params, fn, opts...)
	if err != nil {
		panic("textops: " + err.Error())
	}
	return t
}

func (t *tool) Name() string           { return t.name }
func (t *tool) Description() string    { return t.description }
func (t *tool) RenderMode() RenderMode { return t.mode }
func (t *tool) Params() []string       { return append([]string(nil), t.params...) }

func (t *tool) Execute(_ context.Context, args []string) (string, error) {
	text := ""
	if len(args) > 0 {
		text = args[0]
		args = args[1:]
	}
	return t.fn(text, NormalizeArgs(args, len(t.params)-1)...), nil
}

func (t *tool) Tags() []string  { return append([]string(nil), t.opts.tags...) }
func (t *tool) Version() string { return t.opts.version }

// NormalizeArgs returns exactly n values: extra values are dropped and missing ones
// are empty strings.
func NormalizeArgs(values []string, n int) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, values)
	return out
}

// SignatureOf describes t.
func SignatureOf(t Tool) ToolSignature {
	sig := ToolSignature{
		Name:        t.Name(),
		Description: t.Description(),
		RenderMode:  t.RenderMode(),
		Params:      t.Params(),
	}
	if tm, ok := t.(ToolMetadata); ok {
		sig.Tags = tm.Tags()
	}
	return sig
}

var (
	_ Tool         = (*tool)(nil)
	_ ToolMetadata = (*tool)(nil)
)
