package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/logging"
)

const envPrefix = "PORTINACT"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portinact",
		Short: "Find and disable switch ports that have been idle too long",
		Long: `portinact reads "show interfaces" from a Cisco IOS switch, lists the
Ethernet ports whose last input is older than a threshold and, once
confirmed, shuts them down and saves the configuration.

Runs are simulated unless --write is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML configuration file (default: search ./, ~/.config/portinact/, /etc/portinact/)")
	rootCmd.PersistentFlags().Int("verbose", 0, "Verbosity level: 0=none, 1=debug logs, 2=raw switch output, 3=debug+raw output")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file, rotated")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(newAuditCmd(), newWatchCmd(), newVersionCmd())
	return rootCmd
}

func validateVerbosity(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("--verbose must be 0, 1, 2, or 3")
	}
	return nil
}

func loggingConfig(v *viper.Viper) (logging.Config, error) {
	verbosity := v.GetInt("verbose")
	if err := validateVerbosity(verbosity); err != nil {
		return logging.Config{}, err
	}
	cfg := logging.DefaultConfig()
	cfg.Verbosity = verbosity
	cfg.FilePath = v.GetString("log-file")
	switch format := v.GetString("log-format"); format {
	case "", "text":
	case "json":
		cfg.JSON = true
	default:
		return logging.Config{}, fmt.Errorf("--log-format must be text or json, got %q", format)
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
