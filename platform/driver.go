package platform

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/ports"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/platform/ios"
)

// SwitchDriver defines the behaviour required to support a switching platform.
type SwitchDriver interface {
	Name() string
	Detect(repo ports.SwitchRepository) (bool, error)

	// GetAuthenticationSequence returns the login sequence for this platform
	GetAuthenticationSequence(username, password, enablePassword string) []entities.AuthPrompt

	InterfacesCommand() string
	InterfaceParser(logger logrus.FieldLogger, now func() time.Time) ports.InterfaceParser

	ShutdownCommands(iface, description string) []string
	EnterConfigCommand() string
	ExitConfigCommand() string
	SaveCommands() []string
	IsCommandError(output string) bool
}

var registry = []SwitchDriver{
	ios.New(),
}

// Get returns a driver by normalized platform name.
func Get(name string) (SwitchDriver, error) {
	normalized := normalizeName(name)
	for _, driver := range registry {
		if driver.Name() == normalized {
			return driver, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", entities.ErrUnknownPlatform, name)
}

// Available returns all registered drivers.
func Available() []SwitchDriver {
	out := make([]SwitchDriver, len(registry))
	copy(out, registry)
	return out
}

// Detect tries all registered drivers until one matches.
func Detect(repo ports.SwitchRepository) (SwitchDriver, error) {
	var lastErr error
	for _, driver := range registry {
		matched, err := driver.Detect(repo)
		if err != nil {
			lastErr = err
			continue
		}
		if matched {
			return driver, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unable to detect switch platform")
}

// Resolve returns the configured driver, probing the device when name is "auto".
func Resolve(name string, repo ports.SwitchRepository) (SwitchDriver, error) {
	if normalizeName(name) == "auto" {
		return Detect(repo)
	}
	return Get(name)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
