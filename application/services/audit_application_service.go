package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/ports"
	domain "github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/services"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/infrastructure/transport"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/platform"
)

// Operator-facing messages
const (
	ConfirmQuestion   = "Do you want to disable these ports? (y/n): "
	MsgNoInactive     = "No inactive ports found."
	MsgNoAction       = "No action has been taken."
	MsgDisabled       = "The inactive ports have been disabled and the changes have been saved."
	MsgSandbox        = "Changes simulated (sandbox mode enabled, use -w to apply)"
	MsgVerifyMismatch = "SNMP reports these ports still enabled: %s"
)

// AuditDependencies carries the collaborators of an audit run
type AuditDependencies struct {
	Confirmer ports.Confirmer
	Reporter  ports.Reporter
	Verifier  ports.AdminStatusVerifier
	Logger    logrus.FieldLogger
	Clock     ports.Clock
	// SandboxOutput receives simulated commands; stdout when nil
	SandboxOutput io.Writer
}

// AuditOptions changes how a run ends
type AuditOptions struct {
	// AutoApprove skips the confirmation prompt
	AutoApprove bool
	// ReportOnly stops after reporting and never touches the configuration
	ReportOnly bool
}

// AuditResult summarizes one run
type AuditResult struct {
	Target   string
	Verdicts []entities.InactivityVerdict
	Plan     *entities.RemediationPlan
	Applied  []string
	StillUp  []string
}

// Inactive returns the verdicts flagged inactive, in discovery order
func (r AuditResult) Inactive() []entities.InactivityVerdict {
	var inactive []entities.InactivityVerdict
	for _, verdict := range r.Verdicts {
		if verdict.Inactive {
			inactive = append(inactive, verdict)
		}
	}
	return inactive
}

// AuditApplicationService runs the inactivity audit for one switch
type AuditApplicationService struct {
	config   entities.SwitchConfig
	session  ports.Session
	driver   platform.SwitchDriver
	deps     AuditDependencies
	executor *domain.Executor
}

// NewAuditApplicationService wires a transport client to the audit pipeline.
// The platform is resolved first, probing the device when set to auto.
func NewAuditApplicationService(cfg entities.SwitchConfig, client transport.Client, deps AuditDependencies) (*AuditApplicationService, error) {
	deps = withDefaults(deps)
	logger := deps.Logger.WithField("target", cfg.Target)

	adapter := transport.NewSessionAdapter(client, nil, logger)

	driver, err := platform.Resolve(cfg.PlatformID(), adapter)
	if err != nil {
		return nil, fmt.Errorf("resolve platform for %s: %w", cfg.Target, err)
	}
	logger.WithField("platform", driver.Name()).Debug("Platform resolved")

	if authClient, ok := client.(transport.AuthConfigurable); ok && !client.IsConnected() {
		authClient.SetAuthSequence(driver.GetAuthenticationSequence(cfg.Username, cfg.Password, cfg.EnablePassword))
	}
	adapter.SetDialect(driver)

	var session ports.Session = adapter
	if cfg.Sandbox {
		session = transport.NewSandboxSession(adapter, deps.SandboxOutput)
	}
	return NewAuditService(cfg, session, driver, deps), nil
}

// NewAuditService builds the service around an existing session
func NewAuditService(cfg entities.SwitchConfig, session ports.Session, driver platform.SwitchDriver, deps AuditDependencies) *AuditApplicationService {
	deps = withDefaults(deps)
	return &AuditApplicationService{
		config:   cfg,
		session:  session,
		driver:   driver,
		deps:     deps,
		executor: domain.NewExecutor(driver, cfg.RemediationDescription(), deps.Logger.WithField("target", cfg.Target)),
	}
}

func withDefaults(deps AuditDependencies) AuditDependencies {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return deps
}

// Run fetches the interface table, reports inactive ports and, once the
// operator agrees, disables them.
func (a *AuditApplicationService) Run(ctx context.Context, opts AuditOptions) (AuditResult, error) {
	logger := a.deps.Logger.WithField("target", a.config.Target)
	result := AuditResult{Target: a.config.Target}

	threshold, err := domain.ThresholdFromDays(a.config.ThresholdDays)
	if err != nil {
		return result, err
	}

	records, err := a.collect(logger)
	if err != nil {
		return result, err
	}

	now := a.deps.Clock()
	result.Verdicts = domain.ClassifyAll(records, now, threshold)
	result.Plan = domain.BuildPlan(result.Verdicts)
	logger.WithFields(logrus.Fields{
		"interfaces": len(records),
		"inactive":   len(result.Plan.Candidates),
	}).Info("Audit complete")

	if result.Plan.Empty() {
		a.status(MsgNoInactive)
		return result, nil
	}
	if a.deps.Reporter != nil {
		a.deps.Reporter.ReportInactive(a.config.Target, a.config.ThresholdDays, result.Inactive())
	}
	if opts.ReportOnly {
		return result, nil
	}

	approved, err := a.confirm(opts)
	if err != nil {
		return result, err
	}
	if err := result.Plan.Decide(approved); err != nil {
		return result, err
	}
	if !approved {
		a.status(MsgNoAction)
		return result, nil
	}

	execResult, err := a.executor.Execute(result.Plan, a.session)
	result.Applied = execResult.Applied
	if err != nil {
		return result, err
	}

	if a.config.Sandbox {
		a.status(MsgSandbox)
		return result, nil
	}
	a.status(MsgDisabled)
	result.StillUp = a.verify(ctx, logger, result.Applied)
	return result, nil
}

func (a *AuditApplicationService) collect(logger logrus.FieldLogger) ([]entities.InterfaceRecord, error) {
	output, err := a.session.RunCommand(a.driver.InterfacesCommand())
	if err != nil {
		return nil, fmt.Errorf("collect interfaces: %w", err)
	}

	parser := a.driver.InterfaceParser(logger, a.deps.Clock)
	var records []entities.InterfaceRecord
	for record := range parser.Parse(strings.NewReader(output)) {
		if a.config.IsExcluded(record.Name) {
			logger.WithField("interface", record.Name).Debug("Skipping excluded port")
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (a *AuditApplicationService) confirm(opts AuditOptions) (bool, error) {
	if opts.AutoApprove {
		return true, nil
	}
	if a.deps.Confirmer == nil {
		return false, &entities.PreconditionError{Reason: "no confirmer for an interactive run"}
	}
	return a.deps.Confirmer.Confirm(ConfirmQuestion)
}

func (a *AuditApplicationService) verify(ctx context.Context, logger logrus.FieldLogger, applied []string) []string {
	if a.deps.Verifier == nil || len(applied) == 0 {
		return nil
	}
	stillUp, err := a.deps.Verifier.VerifyDown(ctx, applied)
	if err != nil {
		logger.WithError(err).Warn("SNMP verification failed")
		return nil
	}
	if len(stillUp) > 0 {
		logger.Warnf(MsgVerifyMismatch, strings.Join(stillUp, ", "))
	}
	return stillUp
}

func (a *AuditApplicationService) status(message string) {
	if a.deps.Reporter != nil {
		a.deps.Reporter.Status(message)
	}
}
