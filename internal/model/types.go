// Package model holds the Kernel's data model (spec.md §3): the
// shapes shared across every component, so that workspace, transform,
// execctx, timer, display and interaction can all speak the same
// vocabulary without importing each other.
package model

import "time"

// Language is the cell's source language tag.
type Language string

const (
	LanguageJS Language = "js"
	LanguageTS Language = "ts"
)

// Cell is one unit of source submitted for execution.
type Cell struct {
	ID         string
	Language   Language
	Source     string
	TimeoutMs  int // 0 means "use the kernel default"
}

// NotebookEnvironment describes a notebook's declared runtime.
type NotebookEnvironment struct {
	NotebookID string
	// Packages maps a package name to a version constraint string; an
	// empty constraint means "latest" once sanitized by the Workspace
	// Manager.
	Packages map[string]string
	// Variables are the user-facing environment variables exposed
	// through the Process Facade's env view. The Kernel never merges
	// host environment variables into this set (spec.md §6).
	Variables map[string]string
}

// StreamName distinguishes stdout from stderr in Stream output records.
type StreamName string

const (
	StreamStdout StreamName = "stdout"
	StreamStderr StreamName = "stderr"
)

// OutputKind discriminates the OutputRecord sum type (spec.md §3).
type OutputKind string

const (
	OutputStream        OutputKind = "stream"
	OutputDisplay       OutputKind = "display"
	OutputUpdateDisplay OutputKind = "update_display"
	OutputError         OutputKind = "error"
)

// OutputRecord is the tagged union returned to callers. Only the
// fields relevant to Kind are populated.
type OutputRecord struct {
	Kind OutputKind `json:"kind"`

	// Stream
	StreamName StreamName `json:"name,omitempty"`
	Text       string     `json:"text,omitempty"`

	// Display / UpdateDisplay
	Data      map[string]any `json:"data,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	DisplayID string         `json:"displayId,omitempty"`

	// Error
	ErrorName      string   `json:"errorName,omitempty"`
	ErrorMessage   string   `json:"errorMessage,omitempty"`
	ErrorTraceback []string `json:"errorTraceback,omitempty"`
}

// ExecutionStatus is the terminal status of an execution.
type ExecutionStatus string

const (
	StatusOK    ExecutionStatus = "ok"
	StatusError ExecutionStatus = "error"
)

// ExecutionRecord summarizes one execute/invoke_interaction call.
type ExecutionRecord struct {
	Started time.Time       `json:"started"`
	Ended   time.Time       `json:"ended"`
	Status  ExecutionStatus `json:"status"`
	Error   *OutputRecord   `json:"error,omitempty"`
}

// Result bundles the outputs and execution record returned by the
// Kernel's execute and invoke_interaction operations (spec.md §6).
type Result struct {
	Outputs   []OutputRecord
	Execution ExecutionRecord
}

// StreamSink and DisplaySink are the optional caller-provided callbacks
// that receive output records as they're produced, in addition to the
// ordered list returned at the end (spec.md §6, §9).
type StreamSink func(OutputRecord)
type DisplaySink func(OutputRecord)

// InteractionEvent is the external event delivered to invoke_interaction.
type InteractionEvent struct {
	HandlerID   string
	NotebookID  string
	Environment NotebookEnvironment
	Event       any
	ComponentID string
	CellID      string
}
