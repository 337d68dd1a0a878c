package ports

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
)

// Session is the device capability consumed by the audit pipeline.
// Commands are issued one at a time; a call returns only once the device
// output has been fully consumed.
type Session interface {
	// RunCommand executes a read-only command and returns its raw output
	RunCommand(cmd string) (string, error)
	// ApplyConfig applies lines in configuration mode as one logical unit
	ApplyConfig(lines []string) error
	// Persist saves the running configuration
	Persist() error
}

// Confirmer asks the operator a yes/no question
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// InterfaceParser turns raw show interfaces output into records.
// The returned sequence consumes r and cannot be restarted.
type InterfaceParser interface {
	Parse(r io.Reader) iter.Seq[entities.InterfaceRecord]
}

// Clock returns the current time
type Clock func() time.Time

// Reporter presents audit results to the operator
type Reporter interface {
	ReportInactive(target string, thresholdDays int, verdicts []entities.InactivityVerdict)
	Status(message string)
}

// AdminStatusVerifier checks out of band that interfaces are administratively down.
// It returns the interfaces that are still enabled.
type AdminStatusVerifier interface {
	VerifyDown(ctx context.Context, interfaces []string) ([]string, error)
}
