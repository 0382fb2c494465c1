// Package testutil provides test helpers for textops: a scriptable tool, a scripted
// reasoning backend and an in-memory Store.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/skosovsky/textops"
)

// MockTool is a configurable Tool implementation for tests.
type MockTool struct {
	NameVal   string
	DescVal   string
	ModeVal   textops.RenderMode
	ParamsVal []string
	ExecuteFn func(ctx context.Context, args []string) (string, error)
}

// Name returns the tool name.
func (m *MockTool) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Description returns the tool description.
func (m *MockTool) Description() string {
	return m.DescVal
}

// RenderMode returns ModeVal, or diff when unset.
func (m *MockTool) RenderMode() textops.RenderMode {
	if m.ModeVal != "" {
		return m.ModeVal
	}
	return textops.RenderDiff
}

// Params returns text followed by ParamsVal.
func (m *MockTool) Params() []string {
	return append([]string{textops.TextParam}, m.ParamsVal...)
}

// Execute runs ExecuteFn if set, otherwise echoes the text.
func (m *MockTool) Execute(ctx context.Context, args []string) (string, error) {
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, args)
	}
	if len(args) == 0 {
		return "", nil
	}
	return args[0], nil
}

// Ensure MockTool implements Tool.
var _ textops.Tool = (*MockTool)(nil)

// ErrScriptExhausted is returned by MockBackend when no reply is left.
var ErrScriptExhausted = errors.New("mock backend: no reply scripted")

// MockBackend is a reasoning backend that returns scripted replies in order and
// records every prompt it receives. The last reply repeats once the script runs out
// unless Strict is set.
type MockBackend struct {
	Replies []string
	Err     error
	Strict  bool

	mu      sync.Mutex
	prompts []string
}

// Complete implements textops.Backend.
func (b *MockBackend) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.prompts)
	b.prompts = append(b.prompts, prompt)
	if b.Err != nil {
		return "", b.Err
	}
	switch {
	case n < len(b.Replies):
		return b.Replies[n], nil
	case len(b.Replies) > 0 && !b.Strict:
		return b.Replies[len(b.Replies)-1], nil
	default:
		return "", ErrScriptExhausted
	}
}

// Prompts returns the prompts seen so far.
func (b *MockBackend) Prompts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.prompts...)
}

var _ textops.Backend = (*MockBackend)(nil)
