package textops

import (
	"context"
)

// toolOptions hold optional tool settings.
type toolOptions struct {
	tags    []string
	version string
}

// ToolOption configures a tool (e.g. WithTags).
type ToolOption func(*toolOptions)

// WithTags sets tool tags (metadata for discovery and the heuristic rules listing).
func WithTags(tags ...string) ToolOption {
	return func(o *toolOptions) {
		o.tags = tags
	}
}

// WithVersion sets the tool version.
func WithVersion(version string) ToolOption {
	return func(o *toolOptions) {
		o.version = version
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	recoverPanics bool
	onBefore      func(context.Context, string, []string)
	onAfter       func(context.Context, ExecutionSummary)
}

// WithRecoverPanics enables panic recovery in Execute (returns SystemError).
func WithRecoverPanics(enable bool) RegistryOption {
	return func(o *registryOptions) {
		o.recoverPanics = enable
	}
}

// WithOnBeforeExecute sets a hook called before each tool execution with the tool
// name and the full argument list (text first).
func WithOnBeforeExecute(fn func(ctx context.Context, name string, args []string)) RegistryOption {
	return func(o *registryOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterExecute sets a hook called after each tool execution, including failed lookups.
func WithOnAfterExecute(fn func(context.Context, ExecutionSummary)) RegistryOption {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}
