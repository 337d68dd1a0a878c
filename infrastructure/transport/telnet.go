package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ziutek/telnet"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/platform/ios"
)

// TelnetClient manages a Telnet connection to a switch
type TelnetClient struct {
	conn         *telnet.Conn
	reader       *promptReader
	config       entities.SwitchConfig
	authSequence []entities.AuthPrompt
	logger       logrus.FieldLogger
}

// NewTelnetClient creates a new Telnet client with the given configuration
func NewTelnetClient(cfg entities.SwitchConfig, logger logrus.FieldLogger) *TelnetClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TelnetClient{config: cfg, logger: logger}
}

// SetAuthSequence configures the authentication sequence for this client
func (tc *TelnetClient) SetAuthSequence(prompts []entities.AuthPrompt) {
	tc.authSequence = prompts
}

func (tc *TelnetClient) prompts() []entities.AuthPrompt {
	if len(tc.authSequence) > 0 {
		return tc.authSequence
	}
	return ios.New().GetAuthenticationSequence(tc.config.Username, tc.config.Password, tc.config.EnablePassword)
}

// Connect establishes a Telnet connection to the switch and logs in
func (tc *TelnetClient) Connect() error {
	if tc.conn != nil {
		return nil
	}
	addr := net.JoinHostPort(tc.config.Target, strconv.Itoa(tc.config.DefaultPort()))
	conn, err := telnet.DialTimeout("tcp", addr, DefaultTimeout)
	if err != nil {
		return &entities.TransportError{Op: "connect", Err: fmt.Errorf("%s: %w", addr, err)}
	}
	tc.conn = conn
	tc.reader = &promptReader{
		r:           conn,
		setDeadline: conn.SetReadDeadline,
		logger:      tc.logger,
		raw:         tc.config.IsRawOutputEnabled(),
	}
	tc.logger.Debug("Connected via telnet")

	for _, p := range tc.prompts() {
		output, err := tc.reader.readUntil(p.WaitFor, DefaultTimeout)
		if err != nil {
			tc.Disconnect()
			return &entities.TransportError{Op: "login", Err: fmt.Errorf("waiting for %s: %w, output: %s", p.WaitFor, err, output)}
		}
		if p.SendCmd == "" {
			continue
		}
		if _, err := conn.Write([]byte(p.SendCmd)); err != nil {
			tc.Disconnect()
			return &entities.TransportError{Op: "login", Err: err}
		}
		tc.logger.WithField("prompt", p.WaitFor).Debug("Answered login prompt")
	}
	return nil
}

// Disconnect closes the Telnet connection
func (tc *TelnetClient) Disconnect() {
	if tc.conn != nil {
		tc.conn.Close()
		tc.logger.Debug("Disconnected")
		tc.conn = nil
		tc.reader = nil
	}
}

func (tc *TelnetClient) IsConnected() bool {
	return tc.conn != nil
}

// ExecuteCommand sends a command to the switch and returns its output
func (tc *TelnetClient) ExecuteCommand(cmd string) (string, error) {
	if tc.conn == nil {
		return "", &entities.TransportError{Op: "execute", Command: cmd, Err: errNotConnected}
	}
	tc.logger.WithField("command", cmd).Debug("Executing")
	if _, err := tc.conn.Write([]byte(cmd + "\n")); err != nil {
		tc.Disconnect()
		return "", &entities.TransportError{Op: "write", Command: cmd, Err: err}
	}
	output, err := tc.reader.readUntil(ios.PromptPrivileged, DefaultTimeout)
	if err != nil {
		if !errors.Is(err, errPromptTimeout) {
			tc.Disconnect()
		}
		return "", &entities.TransportError{Op: "read", Command: cmd, Err: err}
	}
	output = trimEcho(output)
	if tc.config.IsRawOutputEnabled() {
		tc.logger.WithField("command", cmd).Infof("Switch output:\n%s", strings.TrimSpace(output))
	}
	return output, nil
}
