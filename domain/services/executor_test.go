package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
)

func approvedPlan(t *testing.T, candidates ...string) *entities.RemediationPlan {
	t.Helper()
	plan := &entities.RemediationPlan{Candidates: candidates}
	require.NoError(t, plan.Decide(true))
	return plan
}

func newTestExecutor(description string) *Executor {
	logger, _ := test.NewNullLogger()
	return NewExecutor(fakeDialect{}, description, logger)
}

func TestExecute_Preconditions(t *testing.T) {
	declined := &entities.RemediationPlan{Candidates: []string{"Gi1/0/1"}}
	require.NoError(t, declined.Decide(false))

	tests := []struct {
		name string
		plan *entities.RemediationPlan
	}{
		{name: "nil plan", plan: nil},
		{name: "undecided", plan: &entities.RemediationPlan{Candidates: []string{"Gi1/0/1"}}},
		{name: "declined", plan: declined},
		{name: "approved but empty", plan: approvedPlan(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &recordingSession{}
			result, err := newTestExecutor("").Execute(tt.plan, session)

			var precondition *entities.PreconditionError
			require.ErrorAs(t, err, &precondition)
			assert.Empty(t, result.Applied)
			assert.Zero(t, session.applyCalls)
			assert.Zero(t, session.persists)
		})
	}
}

func TestExecute_AppliesThreeLinesPerCandidateAndPersistsOnce(t *testing.T) {
	session := &recordingSession{}
	plan := approvedPlan(t, "GigabitEthernet1/0/1", "GigabitEthernet1/0/2")

	result, err := newTestExecutor("").Execute(plan, session)
	require.NoError(t, err)

	expected := []string{
		"interface GigabitEthernet1/0/1",
		"shutdown",
		"description Disabled by script due to inactivity",
		"interface GigabitEthernet1/0/2",
		"shutdown",
		"description Disabled by script due to inactivity",
	}
	assert.Equal(t, expected, session.lines)
	assert.Equal(t, 2, session.applyCalls)
	assert.Equal(t, 1, session.persists)
	assert.Equal(t, []string{"GigabitEthernet1/0/1", "GigabitEthernet1/0/2"}, result.Applied)
	assert.True(t, result.Persisted)
}

func TestExecute_CustomDescription(t *testing.T) {
	session := &recordingSession{}
	_, err := newTestExecutor("idle port, ticket NET-1").Execute(approvedPlan(t, "Fa0/1"), session)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(session.transcript(), "description idle port, ticket NET-1"))
}

func TestExecute_HaltsOnFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "transport", err: &entities.TransportError{Op: "write", Err: errors.New("broken pipe")}},
		{name: "rejected", err: &entities.ConfigRejectedError{Line: "shutdown", Output: "% Invalid input detected"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &recordingSession{applyErrAt: 2, applyErr: tt.err}
			plan := approvedPlan(t, "Gi1/0/1", "Gi1/0/2", "Gi1/0/3")

			result, err := newTestExecutor("").Execute(plan, session)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, []string{"Gi1/0/1"}, result.Applied)
			assert.False(t, result.Persisted)
			assert.Equal(t, 2, session.applyCalls, "third candidate must not be touched")
			assert.Zero(t, session.persists)
		})
	}
}

func TestExecute_RejectedLineNamesInterface(t *testing.T) {
	session := &recordingSession{applyErrAt: 1, applyErr: &entities.ConfigRejectedError{Line: "shutdown", Output: "% Invalid input"}}

	_, err := newTestExecutor("").Execute(approvedPlan(t, "Gi1/0/7"), session)

	var rejected *entities.ConfigRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Gi1/0/7", rejected.Interface)
}

func TestExecute_PersistFailureKeepsAppliedChanges(t *testing.T) {
	persistErr := &entities.TransportError{Op: "write", Command: "write memory", Err: errors.New("timeout")}
	session := &recordingSession{persistErr: persistErr}

	result, err := newTestExecutor("").Execute(approvedPlan(t, "Gi1/0/1", "Gi1/0/2"), session)

	var transportErr *entities.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, []string{"Gi1/0/1", "Gi1/0/2"}, result.Applied)
	assert.False(t, result.Persisted)
	assert.Equal(t, 1, session.persists)
}

func TestPipeline_NeverOldAndRecent(t *testing.T) {
	reference := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []entities.InterfaceRecord{
		{Name: "GigabitEthernet1/0/1", LastInput: entities.NeverInput()},
		{Name: "GigabitEthernet1/0/2", LastInput: entities.InputAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
		{Name: "GigabitEthernet1/0/3", LastInput: entities.InputAt(reference.Add(-time.Hour))},
	}
	threshold, err := ThresholdFromDays(30)
	require.NoError(t, err)

	plan := BuildPlan(ClassifyAll(records, reference, threshold))
	assert.Equal(t, []string{"GigabitEthernet1/0/1", "GigabitEthernet1/0/2"}, plan.Candidates)

	require.NoError(t, plan.Decide(true))
	session := &recordingSession{}
	_, err = newTestExecutor("").Execute(plan, session)
	require.NoError(t, err)
	assert.Len(t, session.lines, 6)
	assert.Equal(t, 1, session.persists)
}
