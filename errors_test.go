package textops

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientError(t *testing.T) {
	tests := []struct {
		name   string
		err    *ClientError
		expect string
	}{
		{"with reason", &ClientError{Reason: "bad enum"}, "invalid input: bad enum"},
		{"empty reason", &ClientError{Reason: ""}, "invalid input: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.err.Error())
		})
	}
}

func TestSystemError(t *testing.T) {
	inner := errors.New("db connection refused")
	err := &SystemError{Err: inner}
	assert.Equal(t, "internal error: db connection refused", err.Error())
	assert.Same(t, inner, err.Unwrap())
	assert.Equal(t, "internal error", (&SystemError{}).Error())
}

func TestToolNotAvailableError(t *testing.T) {
	err := &ToolNotAvailableError{Name: "frobnicate"}
	assert.Equal(t, "Tool 'frobnicate' is not available.", err.Error())
	assert.ErrorIs(t, err, ErrToolNotAvailable)
	assert.ErrorIs(t, fmt.Errorf("run: %w", err), ErrToolNotAvailable)
}

func TestErrorsIs_As(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   error
		is       bool
		asClient bool
		asSystem bool
	}{
		{"ClientError direct", &ClientError{Reason: "x", Err: ErrValidation}, ErrValidation, true, true, false},
		{"SystemError direct", &SystemError{Err: ErrNoBackend}, ErrNoBackend, true, false, true},
		{"wrapped ClientError", wrapErr{err: &ClientError{Reason: "y"}}, nil, false, true, false},
		{"wrapped SystemError", wrapErr{err: &SystemError{Err: ErrNoBackend}}, ErrNoBackend, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.target != nil {
				assert.Equal(t, tt.is, errors.Is(tt.err, tt.target), "errors.Is")
			}
			assert.Equal(t, tt.asClient, IsClientError(tt.err), "IsClientError")
			var ce *ClientError
			assert.Equal(t, tt.asClient, errors.As(tt.err, &ce))
			var se *SystemError
			assert.Equal(t, tt.asSystem, errors.As(tt.err, &se))
		})
	}
}

func TestIsClientError(t *testing.T) {
	require.True(t, IsClientError(&ClientError{Reason: "x"}))
	require.False(t, IsClientError(&SystemError{Err: errors.New("x")}))
	require.False(t, IsClientError(ErrToolNotAvailable))
	require.True(t, IsClientError(wrapErr{err: &ClientError{Reason: "y"}}))
}

func TestIsSystemError(t *testing.T) {
	require.True(t, IsSystemError(&SystemError{Err: errors.New("x")}))
	require.True(t, IsSystemError(wrapErr{err: &SystemError{Err: ErrNoBackend}}))
	require.False(t, IsSystemError(&ClientError{Reason: "x"}))
	require.False(t, IsSystemError(ErrToolNotAvailable))
}

func TestToolArgumentError(t *testing.T) {
	msg := ToolArgumentError("Count must be between %d and %d.", 1, 100)
	assert.Equal(t, "Error: Count must be between 1 and 100.", msg)
	assert.True(t, IsToolArgumentError(msg))
	assert.False(t, IsToolArgumentError("Errors: 3"))
	assert.False(t, IsToolArgumentError("converted text"))
}

func TestPanicError(t *testing.T) {
	err := &SystemError{Err: &panicError{p: "boom"}}
	assert.Equal(t, "internal error: panic: boom", err.Error())
}

type wrapErr struct {
	err error
}

func (e wrapErr) Error() string {
	if e.err == nil {
		return ""
	}
	return "wrap: " + e.err.Error()
}
func (e wrapErr) Unwrap() error { return e.err }
