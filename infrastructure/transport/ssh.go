package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/platform/ios"
)

var errNotConnected = errors.New("not connected")

// SSHClient manages an interactive SSH shell on a switch
type SSHClient struct {
	config  entities.SwitchConfig
	logger  logrus.FieldLogger
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	reader  *promptReader
	done    chan struct{}
}

// NewSSHClient creates a new SSH client with the given configuration
func NewSSHClient(cfg entities.SwitchConfig, logger logrus.FieldLogger) *SSHClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SSHClient{config: cfg, logger: logger}
}

func (sc *SSHClient) clientConfig() *ssh.ClientConfig {
	password := sc.config.Password
	return &ssh.ClientConfig{
		User: sc.config.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         DefaultTimeout,
	}
}

// Connect opens the shell and elevates to privileged mode when needed
func (sc *SSHClient) Connect() error {
	if sc.IsConnected() {
		return nil
	}
	addr := net.JoinHostPort(sc.config.Target, strconv.Itoa(sc.config.DefaultPort()))

	dialer := &net.Dialer{Timeout: DefaultTimeout}
	rawConn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return &entities.TransportError{Op: "connect", Err: fmt.Errorf("%s: %w", addr, err)}
	}

	// The ssh mux owns the socket from here on; no deadline may be set on it.
	clientConn, chans, reqs, err := ssh.NewClientConn(rawConn, addr, sc.clientConfig())
	if err != nil {
		rawConn.Close()
		return &entities.TransportError{Op: "login", Err: err}
	}
	client := ssh.NewClient(clientConn, chans, reqs)

	session, stdin, stdout, err := openShell(client)
	if err != nil {
		client.Close()
		return &entities.TransportError{Op: "shell", Err: err}
	}

	sc.client = client
	sc.session = session
	sc.stdin = stdin
	sc.done = make(chan struct{})
	sc.reader = &promptReader{
		chunks: pumpOutput(stdout, sc.done),
		logger: sc.logger,
		raw:    sc.config.IsRawOutputEnabled(),
	}
	sc.logger.Debug("Connected via SSH")

	if err := sc.prepare(); err != nil {
		sc.Disconnect()
		return &entities.TransportError{Op: "login", Err: err}
	}
	return nil
}

func openShell(client *ssh.Client) (*ssh.Session, io.WriteCloser, io.Reader, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("new session: %w", err)
	}
	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 9600,
		ssh.TTY_OP_OSPEED: 9600,
	}
	if err := session.RequestPty("vt100", 80, 40, modes); err != nil {
		session.Close()
		return nil, nil, nil, fmt.Errorf("request pty: %w", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, nil, nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := session.Shell(); err != nil {
		session.Close()
		return nil, nil, nil, fmt.Errorf("start shell: %w", err)
	}
	return session, stdin, stdout, nil
}

func (sc *SSHClient) prepare() error {
	initial, err := sc.reader.readUntilAny([]string{ios.PromptPrivileged, ios.PromptEnable}, DefaultTimeout)
	if err != nil {
		return err
	}

	if !strings.Contains(initial, ios.PromptPrivileged) {
		sc.logger.Debug("Elevating to privileged mode")
		if err := sc.send("enable\n"); err != nil {
			return err
		}
		if _, err := sc.reader.readUntil(ios.PromptPassword, DefaultTimeout); err != nil {
			return err
		}
		if err := sc.send(sc.config.EnablePassword + "\n"); err != nil {
			return err
		}
		if _, err := sc.reader.readUntil(ios.PromptPrivileged, DefaultTimeout); err != nil {
			return err
		}
	}

	if err := sc.send(ios.TerminalLengthCmd); err != nil {
		return err
	}
	_, err = sc.reader.readUntil(ios.PromptPrivileged, DefaultTimeout)
	return err
}

// Disconnect closes the shell and the SSH client
func (sc *SSHClient) Disconnect() {
	if sc.done != nil {
		close(sc.done)
		sc.done = nil
	}
	if sc.session != nil {
		sc.session.Close()
		sc.session = nil
	}
	if sc.client != nil {
		sc.client.Close()
		sc.client = nil
	}
	sc.stdin = nil
	sc.reader = nil
	sc.logger.Debug("Disconnected")
}

func (sc *SSHClient) IsConnected() bool {
	return sc.session != nil && sc.client != nil
}

// ExecuteCommand sends a command to the switch and returns its output
func (sc *SSHClient) ExecuteCommand(cmd string) (string, error) {
	if !sc.IsConnected() {
		return "", &entities.TransportError{Op: "execute", Command: cmd, Err: errNotConnected}
	}
	sc.logger.WithField("command", cmd).Debug("Executing")
	if err := sc.send(cmd + "\n"); err != nil {
		sc.Disconnect()
		return "", &entities.TransportError{Op: "write", Command: cmd, Err: err}
	}

	output, err := sc.reader.readUntil(ios.PromptPrivileged, DefaultTimeout)
	if err != nil {
		if !errors.Is(err, errPromptTimeout) {
			sc.Disconnect()
		}
		return "", &entities.TransportError{Op: "read", Command: cmd, Err: err}
	}
	output = trimEcho(output)
	if sc.config.IsRawOutputEnabled() {
		sc.logger.WithField("command", cmd).Infof("Switch output:\n%s", strings.TrimSpace(output))
	}
	return output, nil
}

func (sc *SSHClient) send(data string) error {
	_, err := sc.stdin.Write([]byte(data))
	return err
}
