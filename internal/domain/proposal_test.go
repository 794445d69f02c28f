package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalStatus_CanTransitionTo(t *testing.T) {
	allowed := map[ProposalStatus][]ProposalStatus{
		ProposalProposed: {ProposalApproved, ProposalRejected},
		ProposalApproved: {ProposalExecuted, ProposalFailed},
	}
	all := []ProposalStatus{ProposalProposed, ProposalApproved, ProposalRejected, ProposalExecuted, ProposalFailed}

	for _, from := range all {
		for _, to := range all {
			expected := false
			for _, a := range allowed[from] {
				if a == to {
					expected = true
				}
			}
			assert.Equalf(t, expected, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestProposalStatus_IsOpen(t *testing.T) {
	assert.True(t, ProposalProposed.IsOpen())
	assert.True(t, ProposalApproved.IsOpen())
	assert.False(t, ProposalRejected.IsOpen())
	assert.False(t, ProposalExecuted.IsOpen())
	assert.False(t, ProposalFailed.IsOpen())
	assert.True(t, ProposalFailed.IsTerminal())
}

func TestActionProposal_AutoApprovable(t *testing.T) {
	tests := []struct {
		name     string
		mode     ExecutionMode
		proposal ActionProposal
		expected bool
	}{
		{
			name:     "risco baixo sem aprovação no modo automático",
			mode:     ExecutionModeAutoLowRisk,
			proposal: ActionProposal{Status: ProposalProposed, Risk: RiskLow},
			expected: true,
		},
		{
			name:     "modo manual nunca aprova sozinho",
			mode:     ExecutionModeManual,
			proposal: ActionProposal{Status: ProposalProposed, Risk: RiskLow},
			expected: false,
		},
		{
			name:     "risco médio exige humano",
			mode:     ExecutionModeAutoLowRisk,
			proposal: ActionProposal{Status: ProposalProposed, Risk: RiskMedium},
			expected: false,
		},
		{
			name:     "regra que exige aprovação",
			mode:     ExecutionModeAutoLowRisk,
			proposal: ActionProposal{Status: ProposalProposed, Risk: RiskLow, RequiresApproval: true},
			expected: false,
		},
		{
			name:     "proposta já decidida",
			mode:     ExecutionModeAutoLowRisk,
			proposal: ActionProposal{Status: ProposalRejected, Risk: RiskLow},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.proposal.AutoApprovable(tt.mode))
		})
	}
}

func TestParseExecutionMode(t *testing.T) {
	mode, err := ParseExecutionMode("")
	require.NoError(t, err)
	assert.Equal(t, ExecutionModeManual, mode)

	mode, err = ParseExecutionMode("auto_low_risk")
	require.NoError(t, err)
	assert.Equal(t, ExecutionModeAutoLowRisk, mode)

	_, err = ParseExecutionMode("yolo")
	assert.Error(t, err)
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("approve")
	require.NoError(t, err)
	assert.Equal(t, ProposalApproved, d.TargetStatus())

	d, err = ParseDecision("reject")
	require.NoError(t, err)
	assert.Equal(t, ProposalRejected, d.TargetStatus())

	_, err = ParseDecision("maybe")
	assert.Error(t, err)
}
