package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/platform"
)

// FileName is the inventory file looked up in the standard locations
const FileName = "portinact.yaml"

// ErrNotFound is returned when no inventory file exists in any search path
var ErrNotFound = errors.New("configuration file not found")

// Config defines the global defaults and the switch inventory
type Config struct {
	Platform       string                  `yaml:"platform"`
	Transport      string                  `yaml:"transport"`
	Port           int                     `yaml:"port"`
	Username       string                  `yaml:"username"`
	Password       string                  `yaml:"password"`
	EnablePassword string                  `yaml:"enable_password"`
	ThresholdDays  int                     `yaml:"threshold_days"`
	Description    string                  `yaml:"description"`
	ExcludePorts   []string                `yaml:"exclude_ports"`
	SNMPCommunity  string                  `yaml:"snmp_community"`
	Switches       []entities.SwitchConfig `yaml:"switches"`
}

// Switch returns the inventory entry for target
func (c *Config) Switch(target string) (entities.SwitchConfig, bool) {
	for _, sw := range c.Switches {
		if sw.Target == target {
			return sw, true
		}
	}
	return entities.SwitchConfig{}, false
}

func validatePlatform(name string) error {
	if name == "auto" {
		return nil
	}
	if _, err := platform.Get(name); err == nil && name != "" {
		return nil
	}
	return fmt.Errorf("platform %s is invalid, must be one of: %s", name, strings.Join(platformNames(), ", "))
}

func platformNames() []string {
	names := []string{"auto"}
	for _, driver := range platform.Available() {
		names = append(names, driver.Name())
	}
	return names
}

func validateTransport(transport string) error {
	if transport != "telnet" && transport != "ssh" {
		return fmt.Errorf("transport %s is invalid, must be 'telnet' or 'ssh'", transport)
	}
	return nil
}

// SearchPaths lists the locations tried when no file is given explicitly
func SearchPaths() []string {
	paths := []string{filepath.Join(".", FileName)}
	if runtime.GOOS == "windows" {
		if appDataDir := os.Getenv("APPDATA"); appDataDir != "" {
			paths = append(paths, filepath.Join(appDataDir, "portinact", FileName))
		}
		if programDataDir := os.Getenv("ProgramData"); programDataDir != "" {
			paths = append(paths, filepath.Join(programDataDir, "portinact", FileName))
		}
		return paths
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(userConfigDir, "portinact", FileName))
	}
	return append(paths, filepath.Join("/etc", "portinact", FileName))
}

// Find returns explicit when set, otherwise the first existing file among paths
func Find(explicit string, paths []string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("configuration file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNotFound, strings.Join(paths, ", "))
}

// Load reads and validates the inventory. Every switch inherits the global
// values it leaves empty. Without write every switch runs in sandbox mode.
func Load(yamlFile, target string, write bool, verbosityLevel int, logger logrus.FieldLogger) (*Config, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	data, err := os.ReadFile(yamlFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", yamlFile, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.Platform = strings.ToLower(strings.TrimSpace(cfg.Platform))
	if cfg.Platform == "" {
		cfg.Platform = "ios"
	}
	if err := validatePlatform(cfg.Platform); err != nil {
		return nil, err
	}

	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	if cfg.Transport == "" {
		cfg.Transport = "telnet"
	}
	if err := validateTransport(cfg.Transport); err != nil {
		return nil, err
	}
	if cfg.ThresholdDays < 0 {
		return nil, fmt.Errorf("global threshold_days must not be negative")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("global port %d is out of range", cfg.Port)
	}

	logger.WithFields(logrus.Fields{
		"platform":       cfg.Platform,
		"transport":      cfg.Transport,
		"threshold_days": cfg.ThresholdDays,
		"exclude_ports":  cfg.ExcludePorts,
	}).Debug("Global values")

	if len(cfg.Switches) == 0 {
		return nil, fmt.Errorf("no switches defined in the YAML configuration")
	}

	seen := make(map[string]bool, len(cfg.Switches))
	for i, sw := range cfg.Switches {
		if sw.Target == "" {
			return nil, fmt.Errorf("target is required for switch %d", i)
		}
		if seen[sw.Target] {
			return nil, fmt.Errorf("switch %s is listed more than once", sw.Target)
		}
		seen[sw.Target] = true

		swLogger := logger.WithField("target", sw.Target)
		if target != "" && sw.Target != target {
			swLogger = logrus.NewEntry(silent)
		}

		merged, err := cfg.inherit(sw, swLogger)
		if err != nil {
			return nil, err
		}
		merged.Sandbox = !write
		merged.VerbosityLevel = verbosityLevel

		swLogger.WithFields(logrus.Fields{
			"platform":       merged.Platform,
			"transport":      merged.Transport,
			"port":           merged.DefaultPort(),
			"threshold_days": merged.ThresholdDays,
			"exclude_ports":  merged.ExcludePorts,
			"sandbox":        merged.Sandbox,
		}).Debug("Final switch configuration")

		cfg.Switches[i] = merged
	}

	return &cfg, nil
}

var silent = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}()

func (c *Config) inherit(sw entities.SwitchConfig, logger logrus.FieldLogger) (entities.SwitchConfig, error) {
	sw.Transport = strings.ToLower(strings.TrimSpace(sw.Transport))
	if sw.Transport == "" {
		sw.Transport = c.Transport
		logger.Debugf("No transport defined, using global %s", c.Transport)
	}
	if err := validateTransport(sw.Transport); err != nil {
		return sw, fmt.Errorf("invalid transport for switch %s: %w", sw.Target, err)
	}

	sw.Platform = strings.ToLower(strings.TrimSpace(sw.Platform))
	if sw.Platform == "" {
		sw.Platform = c.Platform
	}
	if err := validatePlatform(sw.Platform); err != nil {
		return sw, fmt.Errorf("invalid platform for switch %s: %w", sw.Target, err)
	}

	if sw.Port == 0 && c.Port != 0 && sw.Transport == c.Transport {
		sw.Port = c.Port
	}
	if sw.Port < 0 || sw.Port > 65535 {
		return sw, fmt.Errorf("port %d is out of range for switch %s", sw.Port, sw.Target)
	}

	if sw.Username == "" {
		sw.Username = c.Username
	}
	if sw.Password == "" {
		sw.Password = c.Password
	}
	if sw.EnablePassword == "" {
		sw.EnablePassword = c.EnablePassword
	}
	if sw.Description == "" {
		sw.Description = c.Description
	}
	if sw.SNMPCommunity == "" {
		sw.SNMPCommunity = c.SNMPCommunity
	}

	if sw.ThresholdDays < 0 {
		return sw, fmt.Errorf("threshold_days must not be negative for switch %s", sw.Target)
	}
	if sw.ThresholdDays == 0 {
		sw.ThresholdDays = c.ThresholdDays
		logger.Debugf("No threshold_days defined, using global %d", c.ThresholdDays)
	}

	sw.ExcludePorts = mergePorts(c.ExcludePorts, sw.ExcludePorts)
	return sw, nil
}

// mergePorts joins both lists, dropping blanks and case-insensitive duplicates
func mergePorts(global, local []string) []string {
	seen := make(map[string]struct{}, len(global)+len(local))
	var merged []string
	for _, list := range [][]string{global, local} {
		for _, port := range list {
			trimmed := strings.TrimSpace(port)
			if trimmed == "" {
				continue
			}
			key := strings.ToLower(trimmed)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, trimmed)
		}
	}
	return merged
}
