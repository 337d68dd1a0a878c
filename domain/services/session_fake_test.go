package services

import "strings"

type recordingSession struct {
	lines      []string
	persists   int
	applyCalls int
	applyErrAt int // 1-based ApplyConfig call that fails, 0 for never
	applyErr   error
	persistErr error
	outputs    map[string]string
}

func (s *recordingSession) RunCommand(cmd string) (string, error) {
	return s.outputs[cmd], nil
}

func (s *recordingSession) ApplyConfig(lines []string) error {
	s.applyCalls++
	if s.applyErrAt == s.applyCalls {
		return s.applyErr
	}
	s.lines = append(s.lines, lines...)
	return nil
}

func (s *recordingSession) Persist() error {
	s.persists++
	return s.persistErr
}

func (s *recordingSession) transcript() string {
	return strings.Join(s.lines, "\n")
}

type fakeDialect struct{}

func (fakeDialect) ShutdownCommands(iface, description string) []string {
	return []string{"interface " + iface, "shutdown", "description " + description}
}
