package domain

import "time"

type ExecutionResult string

const (
	ExecutionSuccess ExecutionResult = "success"
	ExecutionFailure ExecutionResult = "failure"
)

// Execution é o registro de auditoria de uma tentativa de aplicar uma proposta.
// Só é inserido, nunca alterado.
type Execution struct {
	ID           string          `json:"id"`
	ProposalID   string          `json:"proposal_id"`
	ConnectorID  string          `json:"connector_id"`
	Before       map[string]any  `json:"before,omitempty"`
	After        map[string]any  `json:"after,omitempty"`
	Result       ExecutionResult `json:"result"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ExecutedBy   string          `json:"executed_by"`
	ExecutedAt   time.Time       `json:"executed_at"`
}

type ExecutionFilters struct {
	ProposalID  string
	ConnectorID string
	Limit       uint64
}
