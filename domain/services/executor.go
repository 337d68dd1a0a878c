package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/ports"
)

// ShutdownDialect renders the configuration lines that disable one interface
type ShutdownDialect interface {
	ShutdownCommands(iface, description string) []string
}

// Result reports what an execution changed on the device
type Result struct {
	Applied   []string
	Persisted bool
}

// Executor pushes an approved plan to a device session
type Executor struct {
	dialect     ShutdownDialect
	description string
	logger      logrus.FieldLogger
}

// NewExecutor creates an executor writing description on every disabled interface
func NewExecutor(dialect ShutdownDialect, description string, logger logrus.FieldLogger) *Executor {
	if description == "" {
		description = entities.DefaultDescription
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Executor{dialect: dialect, description: description, logger: logger}
}

// Execute disables every candidate in plan order and saves the configuration
// once at the end. The first transport failure or rejected line stops the
// run; interfaces already changed stay changed and nothing is saved.
func (e *Executor) Execute(plan *entities.RemediationPlan, session ports.Session) (Result, error) {
	var result Result

	switch {
	case plan == nil:
		return result, &entities.PreconditionError{Reason: "no remediation plan"}
	case !plan.Decided() || !plan.Approved():
		return result, &entities.PreconditionError{Reason: "remediation plan not approved"}
	case plan.Empty():
		return result, &entities.PreconditionError{Reason: "remediation plan has no candidates"}
	}

	for _, iface := range plan.Candidates {
		lines := e.dialect.ShutdownCommands(iface, e.description)
		e.logger.WithField("interface", iface).Debug("Disabling interface")

		if err := session.ApplyConfig(lines); err != nil {
			var rejected *entities.ConfigRejectedError
			if errors.As(err, &rejected) && rejected.Interface == "" {
				rejected.Interface = iface
			}
			e.logger.WithField("interface", iface).WithError(err).Error("Remediation halted")
			return result, fmt.Errorf("disable %s: %w", iface, err)
		}
		result.Applied = append(result.Applied, iface)
	}

	if err := session.Persist(); err != nil {
		e.logger.WithError(err).Error("Interfaces disabled but configuration not saved")
		return result, fmt.Errorf("save configuration: %w", err)
	}
	result.Persisted = true
	e.logger.WithField("count", len(result.Applied)).Info("Configuration saved")
	return result, nil
}
