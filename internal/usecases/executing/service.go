package executing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/internal/observability"
	"github.com/vfg2006/traffic-autopilot/pkg/utils"
)

const (
	defaultActionTimeout = 30 * time.Second

	completeAttempts = 3
	completeTimeout  = 10 * time.Second
	// uma reserva mais velha que o timeout da ação somado a esta folga não
	// tem mais execução em andamento
	staleClaimGrace = time.Minute

	recoveryActor = "autopilot-recovery"
	// OutcomeLostMessage é gravado quando a ação pode ter sido aplicada mas o
	// resultado não chegou ao store
	OutcomeLostMessage = "execution outcome was not recorded; check the entity on the platform"
)

type Executor interface {
	Execute(ctx context.Context, proposalID, actor string) (*domain.Execution, error)
	List(ctx context.Context, filters domain.ExecutionFilters) ([]*domain.Execution, error)
	RecoverStaleClaims(ctx context.Context) (int, error)
}

// ConnectorBuilder é satisfeito por *connector.Registry
type ConnectorBuilder interface {
	Build(cfg domain.ConnectorConfig) (connector.Connector, error)
}

type Service struct {
	proposals     repository.ProposalRepository
	executions    repository.ExecutionRepository
	connectors    repository.ConnectorRepository
	builder       ConnectorBuilder
	actionTimeout time.Duration
	retryBackoff  time.Duration
	now           func() time.Time
}

func NewService(
	proposals repository.ProposalRepository,
	executions repository.ExecutionRepository,
	connectors repository.ConnectorRepository,
	builder ConnectorBuilder,
	actionTimeout time.Duration,
) *Service {
	if actionTimeout <= 0 {
		actionTimeout = defaultActionTimeout
	}

	return &Service{
		proposals:     proposals,
		executions:    executions,
		connectors:    connectors,
		builder:       builder,
		actionTimeout: actionTimeout,
		retryBackoff:  200 * time.Millisecond,
		now:           time.Now,
	}
}

// Execute aplica uma proposta aprovada. A proposta é reservada antes da chamada
// à plataforma, então duas execuções concorrentes nunca chegam ambas ao
// ApplyAction. Falhas da ação viram um registro de execução com resultado
// failure e a proposta vai para failed; a ação nunca é repetida. Só a gravação
// do resultado é repetida; se ela não passar, RecoverStaleClaims encerra a
// reserva depois.
func (s *Service) Execute(ctx context.Context, proposalID, actor string) (*domain.Execution, error) {
	proposal, err := s.proposals.Get(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, domain.ErrProposalNotFound
	}
	if proposal.Status != domain.ProposalApproved {
		return nil, &domain.InvalidStateError{ProposalID: proposalID, Current: proposal.Status, Target: domain.ProposalExecuted}
	}

	claimed, err := s.proposals.Claim(ctx, proposalID, s.now().UTC())
	if err != nil {
		return nil, err
	}

	logger := logrus.WithFields(logrus.Fields{
		"proposal_id":  claimed.ID,
		"connector_id": claimed.ConnectorID,
		"entity_id":    claimed.EntityID,
		"action_kind":  claimed.ActionKind,
		"actor":        actor,
	})
	logger.Info("Iniciando execução de proposta")

	// a partir da reserva, o registro de execução precisa ser gravado mesmo
	// que o chamador desista
	detached := context.WithoutCancel(ctx)

	result, applyErr := s.apply(detached, claimed)

	execution := &domain.Execution{
		ID:          utils.NewID(),
		ProposalID:  claimed.ID,
		ConnectorID: claimed.ConnectorID,
		Result:      domain.ExecutionSuccess,
		ExecutedBy:  actor,
		ExecutedAt:  s.now().UTC(),
	}
	if result != nil {
		execution.Before = result.Before
		execution.After = result.After
	}
	if applyErr != nil {
		execution.Result = domain.ExecutionFailure
		execution.ErrorMessage = applyErr.Error()
	}

	if err := s.complete(detached, claimed.ID, execution); err != nil {
		logger.WithError(err).WithField("result", execution.Result).
			Error("Erro ao registrar resultado da execução; a reserva será encerrada pela recuperação")
		return execution, err
	}

	observability.ObserveExecution(claimed.Platform, string(execution.Result))

	if applyErr != nil {
		logger.WithError(applyErr).Warn("Ação falhou na plataforma")
	} else {
		logger.Info("Ação aplicada com sucesso")
	}

	return execution, nil
}

// complete grava o resultado com novas tentativas, cada uma com contexto
// próprio. Conflito de status não é repetido.
func (s *Service) complete(ctx context.Context, id string, execution *domain.Execution) error {
	var err error
	for attempt := 1; attempt <= completeAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, completeTimeout)
		_, err = s.proposals.Complete(attemptCtx, id, execution)
		cancel()

		if err == nil || errors.Is(err, domain.ErrInvalidProposalState) {
			return err
		}

		logrus.WithError(err).WithFields(logrus.Fields{
			"proposal_id": id,
			"attempt":     attempt,
		}).Warn("Falha ao gravar resultado da execução")

		if attempt < completeAttempts {
			time.Sleep(time.Duration(attempt) * s.retryBackoff)
		}
	}
	return fmt.Errorf("resultado da proposta %s não gravado após %d tentativas: %w", id, completeAttempts, err)
}

// RecoverStaleClaims encerra como failed as propostas reservadas cuja execução
// terminou sem resultado gravado, liberando a chave de deduplicação. O
// registro de auditoria diz que o estado na plataforma precisa ser conferido.
func (s *Service) RecoverStaleClaims(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-(s.actionTimeout + staleClaimGrace))

	stale, err := s.proposals.ListStaleClaims(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, p := range stale {
		execution := &domain.Execution{
			ID:           utils.NewID(),
			ProposalID:   p.ID,
			ConnectorID:  p.ConnectorID,
			Result:       domain.ExecutionFailure,
			ErrorMessage: OutcomeLostMessage,
			ExecutedBy:   recoveryActor,
			ExecutedAt:   s.now().UTC(),
		}

		if _, err := s.proposals.Complete(ctx, p.ID, execution); err != nil {
			if errors.Is(err, domain.ErrInvalidProposalState) {
				continue
			}
			return recovered, fmt.Errorf("erro ao encerrar reserva da proposta %s: %w", p.ID, err)
		}

		observability.ObserveExecution(p.Platform, string(execution.Result))
		logrus.WithFields(logrus.Fields{
			"proposal_id":  p.ID,
			"connector_id": p.ConnectorID,
			"claimed_at":   p.ClaimedAt,
		}).Warn("Reserva sem resultado encerrada como failed")
		recovered++
	}

	return recovered, nil
}

func (s *Service) apply(ctx context.Context, proposal *domain.ActionProposal) (*connector.ActionResult, error) {
	cfg, err := s.connectors.Get(ctx, proposal.ConnectorID)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar conector %s: %w", proposal.ConnectorID, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrConnectorNotFound, proposal.ConnectorID)
	}

	conn, err := s.builder.Build(*cfg)
	if err != nil {
		return nil, err
	}

	if !connector.Supports(conn, proposal.ActionKind) {
		return nil, domain.NewActionFailure(fmt.Sprintf("action %s not supported by %s", proposal.ActionKind, conn.Platform()))
	}

	actionCtx, cancel := context.WithTimeout(ctx, s.actionTimeout)
	defer cancel()

	return conn.ApplyAction(actionCtx, proposal)
}

func (s *Service) List(ctx context.Context, filters domain.ExecutionFilters) ([]*domain.Execution, error) {
	return s.executions.List(ctx, filters)
}
