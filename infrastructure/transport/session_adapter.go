package transport

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
)

// ConfigDialect is the part of a platform driver needed to drive configuration mode
type ConfigDialect interface {
	EnterConfigCommand() string
	ExitConfigCommand() string
	SaveCommands() []string
	IsCommandError(output string) bool
}

// SessionAdapter exposes a transport client as both the SwitchRepository and
// the Session port
type SessionAdapter struct {
	client  Client
	dialect ConfigDialect
	logger  logrus.FieldLogger
}

// NewSessionAdapter creates a new session adapter
func NewSessionAdapter(client Client, dialect ConfigDialect, logger logrus.FieldLogger) *SessionAdapter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SessionAdapter{client: client, dialect: dialect, logger: logger}
}

// SetDialect swaps the dialect once the platform is known
func (s *SessionAdapter) SetDialect(dialect ConfigDialect) {
	s.dialect = dialect
}

// Connect connects to the switch
func (s *SessionAdapter) Connect() error {
	return s.client.Connect()
}

// Disconnect disconnects from the switch
func (s *SessionAdapter) Disconnect() {
	s.client.Disconnect()
}

// ExecuteCommand executes a command on the switch
func (s *SessionAdapter) ExecuteCommand(cmd string) (string, error) {
	return s.client.ExecuteCommand(cmd)
}

// IsConnected checks if connected
func (s *SessionAdapter) IsConnected() bool {
	return s.client.IsConnected()
}

// RunCommand executes a read-only command, connecting first if needed
func (s *SessionAdapter) RunCommand(cmd string) (string, error) {
	output, err := s.exec(cmd)
	if err != nil {
		return "", err
	}
	if s.dialect != nil && s.dialect.IsCommandError(outputHead(output)) {
		return "", &entities.ConfigRejectedError{Line: cmd, Output: strings.TrimSpace(output)}
	}
	return output, nil
}

// errorHeadLines covers the caret line and the message a CLI prints right
// after rejecting a command
const errorHeadLines = 3

func outputHead(output string) string {
	lines := strings.SplitN(strings.TrimLeft(output, "\r\n"), "\n", errorHeadLines+1)
	if len(lines) > errorHeadLines {
		lines = lines[:errorHeadLines]
	}
	return strings.Join(lines, "\n")
}

// ApplyConfig enters configuration mode, sends every line in order and
// leaves configuration mode. The first rejected line stops the batch.
func (s *SessionAdapter) ApplyConfig(lines []string) error {
	if s.dialect == nil {
		return &entities.PreconditionError{Reason: "no platform dialect for configuration mode"}
	}
	if _, err := s.exec(s.dialect.EnterConfigCommand()); err != nil {
		return err
	}

	for _, line := range lines {
		output, err := s.exec(line)
		if err != nil {
			return err
		}
		if s.dialect.IsCommandError(output) {
			s.leaveConfig()
			return &entities.ConfigRejectedError{Line: line, Output: strings.TrimSpace(output)}
		}
	}

	_, err := s.exec(s.dialect.ExitConfigCommand())
	return err
}

// Persist saves the running configuration
func (s *SessionAdapter) Persist() error {
	if s.dialect == nil {
		return &entities.PreconditionError{Reason: "no platform dialect for saving configuration"}
	}
	for _, cmd := range s.dialect.SaveCommands() {
		output, err := s.exec(cmd)
		if err != nil {
			return err
		}
		if s.dialect.IsCommandError(output) {
			return &entities.ConfigRejectedError{Line: cmd, Output: strings.TrimSpace(output)}
		}
		s.logger.WithField("command", cmd).Debug("Configuration saved")
	}
	return nil
}

func (s *SessionAdapter) leaveConfig() {
	if _, err := s.exec(s.dialect.ExitConfigCommand()); err != nil {
		s.logger.WithError(err).Warn("Could not leave configuration mode")
	}
}

func (s *SessionAdapter) exec(cmd string) (string, error) {
	if !s.client.IsConnected() {
		if err := s.client.Connect(); err != nil {
			return "", asTransportError("connect", "", err)
		}
	}
	output, err := s.client.ExecuteCommand(cmd)
	if err != nil {
		return "", asTransportError("execute", cmd, err)
	}
	return output, nil
}

func asTransportError(op, cmd string, err error) error {
	var transportErr *entities.TransportError
	if errors.As(err, &transportErr) {
		return err
	}
	return &entities.TransportError{Op: op, Command: cmd, Err: err}
}
