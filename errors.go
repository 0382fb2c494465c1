package textops

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for textops. Use errors.Is to check.
var (
	ErrToolNotAvailable  = errors.New("tool not available")
	ErrValidation        = errors.New("validation failed")
	ErrRoutineNotFound   = errors.New("routine not found")
	ErrStepNotFound      = errors.New("step not found")
	ErrStepImmutable     = errors.New("step is terminal and cannot change")
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrNoBackend         = errors.New("reasoning backend not configured")
)

// ToolArgumentErrorPrefix starts every validation message a tool returns as output.
const ToolArgumentErrorPrefix = "Error: "

// ToolNotAvailableError is returned by Registry.Execute for an unknown tool name.
// Its message is shown to users verbatim.
type ToolNotAvailableError struct {
	Name string
}

func (e *ToolNotAvailableError) Error() string {
	return fmt.Sprintf("Tool '%s' is not available.", e.Name)
}

// Unwrap supports errors.Is(err, ErrToolNotAvailable).
func (e *ToolNotAvailableError) Unwrap() error { return ErrToolNotAvailable }

// ClientError is an input problem that should be reported back to the caller as is
// (invalid JSON body, schema validation failure, bad enum value).
// Err optionally wraps a sentinel (e.g. ErrValidation) for errors.Is/errors.As.
type ClientError struct {
	Reason string
	Err    error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// Unwrap supports errors.Is/errors.As on wrapped chains (e.g. errors.Is(err, ErrValidation)).
func (e *ClientError) Unwrap() error { return e.Err }

// SystemError represents an internal failure (panic in a tool, backend outage).
// The pipeline reports it as a confidence-0 result.
type SystemError struct {
	Err error
}

func (e *SystemError) Error() string {
	if e.Err == nil {
		return "internal error"
	}
	return "internal error: " + e.Err.Error()
}

func (e *SystemError) Unwrap() error { return e.Err }

// IsClientError returns true if err is or wraps a ClientError.
func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}

// IsSystemError returns true if err is or wraps a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// IsToolArgumentError reports whether a tool output is a validation message rather
// than converted text.
func IsToolArgumentError(output string) bool {
	return strings.HasPrefix(output, ToolArgumentErrorPrefix)
}

// ToolArgumentError formats a validation message the way tools return it.
func ToolArgumentError(format string, args ...any) string {
	return ToolArgumentErrorPrefix + fmt.Sprintf(format, args...)
}

// wrapJSONParseError returns a ClientError for JSON unmarshal failures.
func wrapJSONParseError(err error) error {
	return &ClientError{Reason: "json parse error: " + err.Error()}
}

// panicError wraps a recovered panic value for SystemError; used by Registry and WithRecovery middleware.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
