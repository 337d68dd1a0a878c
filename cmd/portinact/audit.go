package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/application/services"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/ports"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/config"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/logging"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/prompt"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/report"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/snmp"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/transport"
)

// asker collects values the operator did not pass on the command line
type asker interface {
	Ask(label string) (string, error)
	AskInt(label string) (int, error)
	Password(label string) (string, error)
}

func newAuditCmd() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report inactive ports on one switch and optionally disable them",
		Example: `  portinact audit --target 10.0.0.1 --days 30
  PORTINACT_PASSWORD=secret portinact audit --target 10.0.0.1 --days 90 --write`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			logCfg, err := loggingConfig(v)
			if err != nil {
				return err
			}
			logger, err := logging.New(logCfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			terminal := prompt.NewTerminal()
			sw, err := resolveAuditConfig(v, terminal, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAudit(ctx, v, sw, terminal, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringP("target", "t", "", "Switch address (prompted when empty)")
	flags.IntP("days", "d", 0, "Inactivity threshold in days (prompted when unset)")
	flags.BoolP("write", "w", false, "Apply changes (disables sandbox mode)")
	flags.BoolP("yes", "y", false, "Do not ask for confirmation")
	flags.String("transport", "", "telnet or ssh (default from config, else ssh)")
	flags.StringP("username", "u", "", "Login username (prompted when empty)")
	flags.Bool("verify-snmp", false, "Check ifAdminStatus over SNMP after disabling ports")
	flags.String("snmp-community", "", "SNMPv2c community for --verify-snmp")
	return cmd
}

// resolveAuditConfig merges the inventory entry, flags, environment and
// interactive answers, in increasing order of precedence except prompts,
// which only fill what is still missing
func resolveAuditConfig(v *viper.Viper, ask asker, logger logrus.FieldLogger) (entities.SwitchConfig, error) {
	target := v.GetString("target")
	if target == "" {
		answer, err := ask.Ask("Enter the IP address of the switch: ")
		if err != nil {
			return entities.SwitchConfig{}, err
		}
		target = answer
	}
	if target == "" {
		return entities.SwitchConfig{}, fmt.Errorf("the --target parameter is required")
	}

	write := v.GetBool("write")
	verbosity := v.GetInt("verbose")
	sw := entities.SwitchConfig{Target: target, Sandbox: !write, VerbosityLevel: verbosity}

	path, err := config.Find(v.GetString("config"), config.SearchPaths())
	switch {
	case err == nil:
		logger.WithField("path", path).Debug("Configuration file found")
		cfg, err := config.Load(path, target, write, verbosity, logger)
		if err != nil {
			return sw, err
		}
		found, ok := cfg.Switch(target)
		if !ok {
			return sw, fmt.Errorf("target %s not registered in the YAML configuration", target)
		}
		sw = found
	case errors.Is(err, config.ErrNotFound):
		logger.Debug("No configuration file, using flags and prompts only")
		sw.Transport = "ssh"
	default:
		return sw, err
	}

	if transportName := v.GetString("transport"); transportName != "" {
		if transportName != "telnet" && transportName != "ssh" {
			return sw, fmt.Errorf("transport %s is invalid, must be 'telnet' or 'ssh'", transportName)
		}
		sw.Transport = transportName
	}
	if username := v.GetString("username"); username != "" {
		sw.Username = username
	}
	if password := v.GetString("password"); password != "" {
		sw.Password = password
	}
	if enable := v.GetString("enable_password"); enable != "" {
		sw.EnablePassword = enable
	}
	if community := v.GetString("snmp-community"); community != "" {
		sw.SNMPCommunity = community
	}
	if v.IsSet("days") {
		sw.ThresholdDays = v.GetInt("days")
	}

	if sw.Username == "" {
		if sw.Username, err = ask.Ask("Enter your username: "); err != nil {
			return sw, err
		}
	}
	if sw.Password == "" {
		if sw.Password, err = ask.Password("Enter your password: "); err != nil {
			return sw, err
		}
	}
	if sw.EnablePassword == "" {
		sw.EnablePassword = sw.Password
	}
	if sw.ThresholdDays == 0 && !v.IsSet("days") {
		if sw.ThresholdDays, err = ask.AskInt("Enter the number of days of inactivity: "); err != nil {
			return sw, err
		}
	}
	if sw.ThresholdDays < 0 {
		return sw, fmt.Errorf("--days must not be negative")
	}
	return sw, nil
}

func runAudit(ctx context.Context, v *viper.Viper, sw entities.SwitchConfig, confirmer ports.Confirmer, logger *logrus.Logger) error {
	defer transport.CloseAll()

	fmt.Printf("Starting portinact for switch %s\n", sw.Target)
	client := newProgressClient(transport.Get(sw, logger), sw.Target, os.Stderr)

	deps := services.AuditDependencies{
		Confirmer: confirmer,
		Reporter:  report.NewTable(os.Stdout, nil),
		Logger:    logger,
	}
	if v.GetBool("verify-snmp") {
		switch {
		case sw.Sandbox:
			logger.Info("Skipping SNMP verification in sandbox mode")
		case sw.SNMPCommunity == "":
			return fmt.Errorf("--verify-snmp needs --snmp-community or snmp_community in the configuration")
		default:
			deps.Verifier = snmp.NewVerifier(sw.Target, sw.SNMPCommunity, logger)
		}
	}

	svc, err := services.NewAuditApplicationService(sw, client, deps)
	if err != nil {
		return err
	}
	_, err = svc.Run(ctx, services.AuditOptions{AutoApprove: v.GetBool("yes")})
	return err
}
