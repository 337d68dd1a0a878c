package entities

import "strings"

// DefaultDescription is written on every interface disabled for inactivity
const DefaultDescription = "Disabled by script due to inactivity"

// SwitchConfig defines the audit settings for a single switch
type SwitchConfig struct {
	Target         string   `yaml:"target"`
	Transport      string   `yaml:"transport"`
	Port           int      `yaml:"port"`
	Platform       string   `yaml:"platform"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	EnablePassword string   `yaml:"enable_password"`
	ThresholdDays  int      `yaml:"threshold_days"`
	Description    string   `yaml:"description"`
	ExcludePorts   []string `yaml:"exclude_ports"`
	SNMPCommunity  string   `yaml:"snmp_community"`
	Sandbox        bool     `yaml:"-"`
	VerbosityLevel int      `yaml:"-"`
}

// DebugVerbosity reports whether a CLI verbosity level turns on debug logs
func DebugVerbosity(level int) bool {
	return level == 1 || level == 3
}

// IsRawOutputEnabled returns true if raw switch output is enabled
func (sc SwitchConfig) IsRawOutputEnabled() bool {
	return sc.VerbosityLevel == 2 || sc.VerbosityLevel == 3
}

// PlatformID returns the normalized platform name, defaulting to ios
func (sc SwitchConfig) PlatformID() string {
	platform := strings.ToLower(strings.TrimSpace(sc.Platform))
	if platform == "" {
		return "ios"
	}
	return platform
}

// RemediationDescription returns the interface description used when disabling
func (sc SwitchConfig) RemediationDescription() string {
	if strings.TrimSpace(sc.Description) == "" {
		return DefaultDescription
	}
	return sc.Description
}

// IsExcluded reports whether iface is listed in exclude_ports (case-insensitive)
func (sc SwitchConfig) IsExcluded(iface string) bool {
	for _, port := range sc.ExcludePorts {
		if strings.EqualFold(strings.TrimSpace(port), iface) {
			return true
		}
	}
	return false
}

// DefaultPort returns the well-known port for the configured transport
func (sc SwitchConfig) DefaultPort() int {
	if sc.Port > 0 {
		return sc.Port
	}
	if sc.Transport == "ssh" {
		return 22
	}
	return 23
}
