package domain

import (
	"fmt"
	"time"
)

type ActionKind string

const (
	ActionPause           ActionKind = "pause"
	ActionBudgetDecrease  ActionKind = "budget_decrease"
	ActionCreativeRefresh ActionKind = "creative_refresh"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type ProposalStatus string

const (
	ProposalProposed ProposalStatus = "proposed"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
	ProposalExecuted ProposalStatus = "executed"
	ProposalFailed   ProposalStatus = "failed"
)

var OpenProposalStatuses = []ProposalStatus{ProposalProposed, ProposalApproved}

var proposalTransitions = map[ProposalStatus][]ProposalStatus{
	ProposalProposed: {ProposalApproved, ProposalRejected},
	ProposalApproved: {ProposalExecuted, ProposalFailed},
}

// IsOpen indica se a proposta ainda bloqueia a criação de duplicatas
func (s ProposalStatus) IsOpen() bool {
	return s == ProposalProposed || s == ProposalApproved
}

func (s ProposalStatus) IsTerminal() bool {
	return s == ProposalRejected || s == ProposalExecuted || s == ProposalFailed
}

func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	for _, allowed := range proposalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseProposalStatus(s string) (ProposalStatus, error) {
	switch status := ProposalStatus(s); status {
	case ProposalProposed, ProposalApproved, ProposalRejected, ProposalExecuted, ProposalFailed:
		return status, nil
	}
	return "", fmt.Errorf("status de proposta inválido: %q", s)
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	}
	return "", fmt.Errorf("decisão inválida: %q", s)
}

func (d Decision) TargetStatus() ProposalStatus {
	if d == DecisionApprove {
		return ProposalApproved
	}
	return ProposalRejected
}

// ExecutionMode controla se o ciclo pode aprovar e executar propostas sozinho.
// É lido uma vez por ciclo e passado explicitamente.
type ExecutionMode string

const (
	ExecutionModeManual      ExecutionMode = "manual"
	ExecutionModeAutoLowRisk ExecutionMode = "auto_low_risk"
)

func ParseExecutionMode(s string) (ExecutionMode, error) {
	switch m := ExecutionMode(s); m {
	case ExecutionModeManual, ExecutionModeAutoLowRisk:
		return m, nil
	case "":
		return ExecutionModeManual, nil
	}
	return "", fmt.Errorf("modo de execução inválido: %q", s)
}

// ActionProposal é uma sugestão de mudança numa entidade de uma plataforma.
// Nunca é aplicada sem passar por approved.
type ActionProposal struct {
	ID               string         `json:"id"`
	RuleID           string         `json:"rule_id"`
	ConnectorID      string         `json:"connector_id"`
	Platform         string         `json:"platform"`
	EntityType       EntityType     `json:"entity_type"`
	EntityID         string         `json:"entity_id"`
	ActionKind       ActionKind     `json:"action_kind"`
	Payload          map[string]any `json:"payload,omitempty"`
	Reason           string         `json:"reason"`
	Risk             RiskLevel      `json:"risk"`
	RequiresApproval bool           `json:"requires_approval"`
	Status           ProposalStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	DecidedAt        *time.Time     `json:"decided_at,omitempty"`
	DecidedBy        string         `json:"decided_by,omitempty"`
	ClaimedAt        *time.Time     `json:"claimed_at,omitempty"`
	ExecutedAt       *time.Time     `json:"executed_at,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// DedupeKey identifica propostas equivalentes enquanto estão abertas
type DedupeKey struct {
	RuleID     string
	EntityID   string
	ActionKind ActionKind
}

func (p *ActionProposal) DedupeKey() DedupeKey {
	return DedupeKey{RuleID: p.RuleID, EntityID: p.EntityID, ActionKind: p.ActionKind}
}

// AutoApprovable só é verdadeiro no modo auto_low_risk, para risco baixo e
// quando a regra não exige aprovação humana.
func (p *ActionProposal) AutoApprovable(mode ExecutionMode) bool {
	return mode == ExecutionModeAutoLowRisk &&
		p.Status == ProposalProposed &&
		p.Risk == RiskLow &&
		!p.RequiresApproval
}

// ProposalCandidate é o que o motor de regras produz antes da persistência
type ProposalCandidate struct {
	RuleID           string
	EntityType       EntityType
	EntityID         string
	ActionKind       ActionKind
	Payload          map[string]any
	Reason           string
	Risk             RiskLevel
	RequiresApproval bool
}

// ProposalUpdate carrega os campos gravados junto com uma transição
type ProposalUpdate struct {
	DecidedBy  string
	DecidedAt  *time.Time
	ExecutedAt *time.Time
	Error      string
}
