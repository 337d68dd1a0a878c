package entities

import "errors"

// ErrPlanAlreadyDecided is returned when an operator decision is recorded twice
var ErrPlanAlreadyDecided = errors.New("remediation plan already decided")

// RemediationPlan lists the interfaces to disable, in discovery order
type RemediationPlan struct {
	Candidates []string
	approved   bool
	decided    bool
}

// Decide records the operator's yes/no answer. It can only be called once.
func (p *RemediationPlan) Decide(approved bool) error {
	if p.decided {
		return ErrPlanAlreadyDecided
	}
	p.approved = approved
	p.decided = true
	return nil
}

// Approved reports whether the operator accepted the plan
func (p *RemediationPlan) Approved() bool {
	return p.approved
}

// Decided reports whether an operator answer has been recorded
func (p *RemediationPlan) Decided() bool {
	return p.decided
}

// Empty reports whether there is nothing to remediate
func (p *RemediationPlan) Empty() bool {
	return len(p.Candidates) == 0
}
