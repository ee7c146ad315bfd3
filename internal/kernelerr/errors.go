// Package kernelerr collects the Kernel's typed error kinds (spec.md §7).
// Each type carries just enough context to be rendered into an
// Error output record, and also to be matched with errors.As by
// callers that care about a specific kind.
package kernelerr

import "fmt"

// CompileError wraps a source-transformation or evaluation parse failure.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string { return fmt.Sprintf("compile error: %s", e.Message) }

// PolicyError is raised in-band when user code attempts a restricted
// capability (fs path outside the sandbox, server creation, process
// lifecycle mutation, child_process, dgram bind/multicast).
type PolicyError struct {
	Message string
}

func (e *PolicyError) Error() string { return e.Message }

// NewPolicyErrorf builds a PolicyError with a formatted message.
func NewPolicyErrorf(format string, args ...any) *PolicyError {
	return &PolicyError{Message: fmt.Sprintf(format, args...)}
}

// TimeoutError marks the hard deadline being exceeded during user code.
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "execution timed out"
	}
	return e.Message
}

// SoftTimeoutError marks the post-evaluation timer-drain window running out.
type SoftTimeoutError struct {
	Message string
}

func (e *SoftTimeoutError) Error() string { return e.Message }

// InstallError wraps a Dependency Installer failure, preserving its stderr.
type InstallError struct {
	Stderr string
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("dependency install failed: %s", e.Stderr)
}

// AsyncError wraps an error thrown inside a timer callback.
type AsyncError struct {
	Name      string
	Message   string
	Traceback []string
}

func (e *AsyncError) Error() string { return fmt.Sprintf("%s: %s", e.Name, e.Message) }

// HandlerNotFoundError is returned by invoke_interaction for an unknown
// or expired handler_id.
type HandlerNotFoundError struct {
	HandlerID string
}

func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("handler %q not found", e.HandlerID)
}
