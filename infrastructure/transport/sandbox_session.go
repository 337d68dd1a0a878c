package transport

import (
	"fmt"
	"io"
	"os"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/ports"
)

// SandboxSession reads from the device but only prints configuration changes
type SandboxSession struct {
	reader    ports.Session
	out       io.Writer
	simulated []string
}

// NewSandboxSession wraps reader; a nil out prints to stdout
func NewSandboxSession(reader ports.Session, out io.Writer) *SandboxSession {
	if out == nil {
		out = os.Stdout
	}
	return &SandboxSession{reader: reader, out: out}
}

// RunCommand delegates read-only commands to the wrapped session
func (s *SandboxSession) RunCommand(cmd string) (string, error) {
	return s.reader.RunCommand(cmd)
}

// ApplyConfig prints the lines instead of sending them
func (s *SandboxSession) ApplyConfig(lines []string) error {
	fmt.Fprintln(s.out, "SANDBOX: Simulating configuration")
	for _, line := range lines {
		fmt.Fprintf(s.out, "  %s\n", line)
	}
	s.simulated = append(s.simulated, lines...)
	return nil
}

// Persist never saves anything
func (s *SandboxSession) Persist() error {
	fmt.Fprintln(s.out, "SANDBOX: Configuration not saved (sandbox mode enabled, use -w to apply)")
	return nil
}

// Simulated returns every line that would have been sent
func (s *SandboxSession) Simulated() []string {
	out := make([]string, len(s.simulated))
	copy(out, s.simulated)
	return out
}
