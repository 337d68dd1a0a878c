package ios

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/ports"
)

const driverName = "ios"

// CLI prompts and session setup shared with the transports
const (
	PromptUsername    = "Username:"
	PromptPassword    = "Password:"
	PromptEnable      = ">"
	PromptPrivileged  = "#"
	TerminalLengthCmd = "terminal length 0\n"
)

// Driver implements the SwitchDriver behaviour for Cisco IOS switches.
type Driver struct{}

// New creates a new IOS driver instance.
func New() *Driver {
	return &Driver{}
}

// Name returns the canonical platform identifier.
func (d *Driver) Name() string {
	return driverName
}

// Detect inspects the device to determine whether it is running IOS.
func (d *Driver) Detect(repo ports.SwitchRepository) (bool, error) {
	if !repo.IsConnected() {
		if err := repo.Connect(); err != nil {
			return false, err
		}
	}
	output, err := repo.ExecuteCommand("show version")
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(output), "cisco ios"), nil
}

// GetAuthenticationSequence returns the telnet login sequence for IOS.
func (d *Driver) GetAuthenticationSequence(username, password, enablePassword string) []entities.AuthPrompt {
	return []entities.AuthPrompt{
		{WaitFor: PromptUsername, SendCmd: username + "\n"},
		{WaitFor: PromptPassword, SendCmd: password + "\n"},
		{WaitFor: PromptEnable, SendCmd: "enable\n"},
		{WaitFor: PromptPassword, SendCmd: enablePassword + "\n"},
		{WaitFor: PromptPrivileged, SendCmd: TerminalLengthCmd},
		{WaitFor: PromptPrivileged, SendCmd: ""},
	}
}

// InterfacesCommand returns the read-only command listing interface counters.
func (d *Driver) InterfacesCommand() string {
	return "show interfaces"
}

// InterfaceParser returns a parser for the output of InterfacesCommand.
func (d *Driver) InterfaceParser(logger logrus.FieldLogger, now func() time.Time) ports.InterfaceParser {
	return NewParser(logger, now)
}

// ShutdownCommands returns the lines that disable and annotate an interface.
func (d *Driver) ShutdownCommands(iface, description string) []string {
	return []string{
		fmt.Sprintf("interface %s", iface),
		"shutdown",
		fmt.Sprintf("description %s", description),
	}
}

// EnterConfigCommand switches the CLI into global configuration mode.
func (d *Driver) EnterConfigCommand() string {
	return "configure terminal"
}

// ExitConfigCommand leaves configuration mode.
func (d *Driver) ExitConfigCommand() string {
	return "end"
}

// SaveCommands returns commands that persist the running configuration.
func (d *Driver) SaveCommands() []string {
	return []string{"write memory"}
}

// IsCommandError reports whether output carries an IOS CLI error marker.
func (d *Driver) IsCommandError(output string) bool {
	return isIOSCommandError(output)
}
