package textops

import (
	"context"
	"slices"
	"sync"
)

// Registry holds tools by name and executes them with optional panic recovery.
// It is safe for concurrent use; tools themselves are pure.
type Registry struct {
	tools       map[string]Tool // wrapped with middlewares, used by Execute
	rawTools    map[string]Tool // unwrapped, used by Use() to re-apply middlewares from scratch
	opts        registryOptions
	mu          sync.RWMutex
	middlewares []Middleware
}

// NewRegistry creates a Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{
		recoverPanics: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		tools:    make(map[string]Tool),
		rawTools: make(map[string]Tool),
		opts:     o,
	}
}

// Register adds a tool. Stored middlewares (see Use) are applied to the tool before registration.
// If a tool with the same name already exists, it is replaced.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	r.rawTools[name] = t
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		t = r.middlewares[i](t)
	}
	r.tools[name] = t
}

// GetAllTools returns all registered tools sorted by name for deterministic order.
func (r *Registry) GetAllTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}

// GetTool returns the tool with the given name (after middlewares are applied), or (nil, false) if not found.
func (r *Registry) GetTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the signatures of all registered tools, sorted by name.
func (r *Registry) List() []ToolSignature {
	all := r.GetAllTools()
	out := make([]ToolSignature, 0, len(all))
	for _, t := range all {
		out = append(out, SignatureOf(t))
	}
	return out
}

// Signature returns the signature of the named tool.
func (r *Registry) Signature(name string) (ToolSignature, bool) {
	t, ok := r.GetTool(name)
	if !ok {
		return ToolSignature{}, false
	}
	return SignatureOf(t), true
}

// Execute runs the named tool. args[0] is the text, the rest are positional tool
// arguments. Unknown names return *ToolNotAvailableError; a panicking tool returns
// *SystemError when panic recovery is enabled. Tool validation problems are not
// errors: they come back as "Error: ..." output.
func (r *Registry) Execute(ctx context.Context, name string, args []string) (out string, err error) {
	var summary ExecutionSummary
	summary.ToolName = name
	summary.Args = args
	defer func() {
		if r.opts.onAfter != nil {
			summary.Output = out
			summary.Error = err
			r.opts.onAfter(ctx, summary)
		}
	}()

	tool, ok := r.GetTool(name)
	if !ok {
		return "", &ToolNotAvailableError{Name: name}
	}
	if r.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				out = ""
				err = &SystemError{Err: &panicError{p: p}}
			}
		}()
	}
	if r.opts.onBefore != nil {
		r.opts.onBefore(ctx, name, args)
	}
	return tool.Execute(ctx, args)
}
