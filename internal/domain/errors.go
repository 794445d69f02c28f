package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConnectorAuthFailure      = errors.New("connector authentication failure")
	ErrConnectorTransportFailure = errors.New("connector transport failure")
	ErrConnectorRateLimited      = errors.New("connector rate limited")
	ErrUnsupportedPlatform       = errors.New("unsupported platform")
	ErrInvalidProposalState      = errors.New("invalid proposal state")
	ErrActionFailure             = errors.New("action failure")

	ErrConnectorNotFound = errors.New("connector not found")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrRuleNotFound      = errors.New("rule not found")
)

// ConnectorError carrega a categoria da falha (um dos sentinelas acima) e o
// conector envolvido. errors.Is funciona tanto com a categoria quanto com a causa.
type ConnectorError struct {
	Kind        error
	Platform    string
	ConnectorID string
	Err         error
}

func (e *ConnectorError) Error() string {
	prefix := e.Kind.Error()
	if e.Platform != "" {
		prefix = fmt.Sprintf("%s: %s", e.Platform, prefix)
	}
	if e.Err == nil {
		return prefix
	}
	return fmt.Sprintf("%s: %s", prefix, e.Err.Error())
}

func (e *ConnectorError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewAuthFailure(platform string, err error) *ConnectorError {
	return &ConnectorError{Kind: ErrConnectorAuthFailure, Platform: platform, Err: err}
}

func NewTransportFailure(platform string, err error) *ConnectorError {
	return &ConnectorError{Kind: ErrConnectorTransportFailure, Platform: platform, Err: err}
}

func NewRateLimited(platform string, err error) *ConnectorError {
	return &ConnectorError{Kind: ErrConnectorRateLimited, Platform: platform, Err: err}
}

func NewUnsupportedPlatform(platform string, mode ConnectorMode) *ConnectorError {
	return &ConnectorError{
		Kind:     ErrUnsupportedPlatform,
		Platform: platform,
		Err:      fmt.Errorf("mode %q", mode),
	}
}

// ActionFailure é o erro devolvido por apply_action. A mensagem é gravada
// literalmente no registro de execução.
type ActionFailure struct {
	Message string
	Err     error
}

func NewActionFailure(message string) *ActionFailure {
	return &ActionFailure{Message: message}
}

func (e *ActionFailure) Error() string {
	return e.Message
}

func (e *ActionFailure) Is(target error) bool {
	return target == ErrActionFailure
}

func (e *ActionFailure) Unwrap() error {
	return e.Err
}

// InvalidStateError descreve uma transição recusada pela máquina de estados
type InvalidStateError struct {
	ProposalID string
	Current    ProposalStatus
	Target     ProposalStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("proposal %s: cannot move from %s to %s", e.ProposalID, e.Current, e.Target)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidProposalState
}

// HealthFromError classifica uma falha de conector: limite de taxa é aviso,
// o resto é erro.
func HealthFromError(err error) HealthStatus {
	switch {
	case err == nil:
		return HealthOK
	case errors.Is(err, ErrConnectorRateLimited):
		return HealthWarn
	default:
		return HealthErr
	}
}
