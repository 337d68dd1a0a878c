package services

import "github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"

// BuildPlan collects the inactive interfaces in discovery order.
// The plan starts undecided; asking the operator is up to the caller.
func BuildPlan(verdicts []entities.InactivityVerdict) *entities.RemediationPlan {
	plan := &entities.RemediationPlan{}
	for _, verdict := range verdicts {
		if verdict.Inactive {
			plan.Candidates = append(plan.Candidates, verdict.Interface)
		}
	}
	return plan
}
