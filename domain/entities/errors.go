package entities

import (
	"errors"
	"fmt"
)

// ErrUnknownPlatform is returned when no driver matches a platform name
var ErrUnknownPlatform = errors.New("unknown switch platform")

// ParseSkipError describes an interface dropped from the parse results.
// It is logged, never propagated.
type ParseSkipError struct {
	Interface string
	Value     string
	Err       error
}

func (e *ParseSkipError) Error() string {
	return fmt.Sprintf("skipping %s: unparseable last input %q: %v", e.Interface, e.Value, e.Err)
}

func (e *ParseSkipError) Unwrap() error {
	return e.Err
}

// TransportError means the session can no longer be trusted
type TransportError struct {
	Op      string
	Command string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport %s failed on %q: %v", e.Op, e.Command, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ConfigRejectedError is returned when the device refuses a configuration line
type ConfigRejectedError struct {
	Interface string
	Line      string
	Output    string
}

func (e *ConfigRejectedError) Error() string {
	if e.Interface == "" {
		return fmt.Sprintf("device rejected %q: %s", e.Line, e.Output)
	}
	return fmt.Sprintf("device rejected %q for %s: %s", e.Line, e.Interface, e.Output)
}

// PreconditionError signals caller misuse, such as executing an unapproved plan
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}
