package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/application/scheduler"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/application/services"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/config"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/logging"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/report"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/transport"
)

const defaultSchedule = "@daily"

func newWatchCmd() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically report inactive ports on every configured switch",
		Long: `watch audits every switch of the configuration file on a cron schedule.
It only reports; ports are never disabled from this mode.`,
		Example: `  portinact watch --schedule "0 6 * * 1-5"
  portinact watch --schedule "@every 12h" --run-now`,
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

			switches, err := loadInventory(v, logger)
			if err != nil {
				return err
			}

			job := inventoryJob(switches, cmd.OutOrStdout(), logger)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if v.GetBool("run-now") {
				if err := job(ctx); err != nil {
					logger.WithError(err).Error("Initial run failed")
				}
			}

			s := scheduler.New(logger)
			if err := s.Add("inventory", v.GetString("schedule"), job); err != nil {
				return err
			}
			return s.Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("schedule", defaultSchedule, "Cron expression or descriptor (@hourly, @every 6h)")
	flags.Bool("run-now", false, "Run one audit immediately before waiting for the schedule")
	flags.IntP("days", "d", 0, "Threshold for switches without threshold_days")
	return cmd
}

func loadInventory(v *viper.Viper, logger logrus.FieldLogger) ([]entities.SwitchConfig, error) {
	path, err := config.Find(v.GetString("config"), config.SearchPaths())
	if err != nil {
		return nil, fmt.Errorf("watch needs a configuration file: %w", err)
	}
	cfg, err := config.Load(path, "", false, v.GetInt("verbose"), logger)
	if err != nil {
		return nil, err
	}

	password := v.GetString("password")
	enable := v.GetString("enable_password")
	days := v.GetInt("days")
	for i := range cfg.Switches {
		sw := &cfg.Switches[i]
		if sw.Password == "" {
			sw.Password = password
		}
		if sw.EnablePassword == "" {
			sw.EnablePassword = enable
		}
		if sw.EnablePassword == "" {
			sw.EnablePassword = sw.Password
		}
		if sw.ThresholdDays == 0 {
			sw.ThresholdDays = days
		}
		if sw.Username == "" || sw.Password == "" {
			return nil, fmt.Errorf("switch %s has no credentials; set them in the configuration or %s_PASSWORD", sw.Target, envPrefix)
		}
		if sw.ThresholdDays <= 0 {
			return nil, fmt.Errorf("switch %s has no threshold_days; set it in the configuration or pass --days", sw.Target)
		}
	}
	return cfg.Switches, nil
}

// inventoryJob audits every switch in turn, never remediating. A failing
// switch is logged and the next one is tried.
func inventoryJob(switches []entities.SwitchConfig, out io.Writer, logger logrus.FieldLogger) scheduler.Job {
	return func(ctx context.Context) error {
		defer transport.CloseAll()

		failed := 0
		for _, sw := range switches {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := auditReportOnly(ctx, sw, transport.Get(sw, logger), out, logger); err != nil {
				logger.WithField("target", sw.Target).WithError(err).Error("Audit failed")
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d switches failed", failed, len(switches))
		}
		return nil
	}
}

func auditReportOnly(ctx context.Context, sw entities.SwitchConfig, client transport.Client, out io.Writer, logger logrus.FieldLogger) error {
	svc, err := services.NewAuditApplicationService(sw, client, services.AuditDependencies{
		Reporter: report.NewTable(out, nil),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	_, err = svc.Run(ctx, services.AuditOptions{ReportOnly: true})
	return err
}
