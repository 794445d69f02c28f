package proposing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/internal/observability"
	"github.com/vfg2006/traffic-autopilot/pkg/utils"
)

// AutoActor é quem aparece em decided_by/executed_by nas ações automáticas
const AutoActor = "auto"

const defaultListLimit = 200

type Proposer interface {
	Propose(ctx context.Context, target Target, candidates []domain.ProposalCandidate, mode domain.ExecutionMode) (*Outcome, error)
	Decide(ctx context.Context, id string, decision domain.Decision, decidedBy string) (*domain.ActionProposal, error)
	ListByStatus(ctx context.Context, statuses []domain.ProposalStatus, limit uint64) ([]*domain.ActionProposal, error)
	Get(ctx context.Context, id string) (*domain.ActionProposal, error)
}

// Target identifica o conector dono das entidades avaliadas
type Target struct {
	ConnectorID string
	Platform    string
}

// Outcome resume o que aconteceu com os candidatos de um ciclo
type Outcome struct {
	Created  []*domain.ActionProposal
	Existing []*domain.ActionProposal
	// ToExecute são as propostas aprovadas automaticamente e ainda não reservadas
	ToExecute []*domain.ActionProposal
}

type Service struct {
	proposals repository.ProposalRepository
	now       func() time.Time
}

func NewService(proposals repository.ProposalRepository) *Service {
	return &Service{
		proposals: proposals,
		now:       time.Now,
	}
}

// Propose persiste os candidatos sem duplicar propostas abertas. No modo
// auto_low_risk, as elegíveis já saem aprovadas.
func (s *Service) Propose(ctx context.Context, target Target, candidates []domain.ProposalCandidate, mode domain.ExecutionMode) (*Outcome, error) {
	outcome := &Outcome{}

	for _, c := range candidates {
		id, err := utils.GenerateID()
		if err != nil {
			return outcome, fmt.Errorf("erro ao gerar id da proposta: %w", err)
		}

		proposal := &domain.ActionProposal{
			ID:               id,
			RuleID:           c.RuleID,
			ConnectorID:      target.ConnectorID,
			Platform:         target.Platform,
			EntityType:       c.EntityType,
			EntityID:         c.EntityID,
			ActionKind:       c.ActionKind,
			Payload:          c.Payload,
			Reason:           c.Reason,
			Risk:             c.Risk,
			RequiresApproval: c.RequiresApproval,
			Status:           domain.ProposalProposed,
			CreatedAt:        s.now().UTC(),
		}

		saved, created, err := s.proposals.CreateIfAbsent(ctx, proposal)
		if err != nil {
			return outcome, err
		}

		if created {
			outcome.Created = append(outcome.Created, saved)
			observability.ObserveProposalCreated(saved.RuleID, string(saved.ActionKind))
			logrus.WithFields(logrus.Fields{
				"proposal_id":  saved.ID,
				"rule_id":      saved.RuleID,
				"connector_id": saved.ConnectorID,
				"entity_id":    saved.EntityID,
				"action_kind":  saved.ActionKind,
				"risk":         saved.Risk,
			}).Info("Nova proposta de ação criada")
		} else {
			outcome.Existing = append(outcome.Existing, saved)
		}

		if saved.AutoApprovable(mode) {
			approved, err := s.approveAutomatically(ctx, saved)
			if err != nil {
				return outcome, err
			}
			if approved != nil {
				outcome.ToExecute = append(outcome.ToExecute, approved)
			}
			continue
		}

		// aprovada automaticamente num ciclo anterior mas nunca executada
		if mode == domain.ExecutionModeAutoLowRisk && saved.Status == domain.ProposalApproved &&
			saved.DecidedBy == AutoActor && saved.ClaimedAt == nil {
			outcome.ToExecute = append(outcome.ToExecute, saved)
		}
	}

	return outcome, nil
}

func (s *Service) approveAutomatically(ctx context.Context, p *domain.ActionProposal) (*domain.ActionProposal, error) {
	now := s.now().UTC()
	approved, err := s.proposals.Transition(ctx, p.ID, domain.ProposalProposed, domain.ProposalApproved, domain.ProposalUpdate{
		DecidedBy: AutoActor,
		DecidedAt: &now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProposalState) {
			// o operador decidiu antes
			logrus.WithField("proposal_id", p.ID).Info("Proposta já decidida, aprovação automática ignorada")
			return nil, nil
		}
		return nil, err
	}

	observability.ObserveDecision(string(domain.DecisionApprove), AutoActor)
	logrus.WithFields(logrus.Fields{
		"proposal_id": approved.ID,
		"rule_id":     approved.RuleID,
		"entity_id":   approved.EntityID,
	}).Info("Proposta de baixo risco aprovada automaticamente")

	return approved, nil
}

// Decide aplica a decisão do operador. Só propostas em proposed podem ser decididas.
func (s *Service) Decide(ctx context.Context, id string, decision domain.Decision, decidedBy string) (*domain.ActionProposal, error) {
	decidedBy = strings.TrimSpace(decidedBy)
	if decidedBy == "" {
		return nil, fmt.Errorf("decided_by é obrigatório")
	}

	current, err := s.proposals.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrProposalNotFound
	}

	target := decision.TargetStatus()
	if !current.Status.CanTransitionTo(target) {
		return nil, &domain.InvalidStateError{ProposalID: id, Current: current.Status, Target: target}
	}

	now := s.now().UTC()
	updated, err := s.proposals.Transition(ctx, id, current.Status, target, domain.ProposalUpdate{
		DecidedBy: decidedBy,
		DecidedAt: &now,
	})
	if err != nil {
		return nil, err
	}

	observability.ObserveDecision(string(decision), "operator")
	logrus.WithFields(logrus.Fields{
		"proposal_id": id,
		"decision":    decision,
		"decided_by":  decidedBy,
	}).Info("Decisão registrada para proposta")

	return updated, nil
}

func (s *Service) ListByStatus(ctx context.Context, statuses []domain.ProposalStatus, limit uint64) ([]*domain.ActionProposal, error) {
	if limit == 0 {
		limit = defaultListLimit
	}
	return s.proposals.ListByStatus(ctx, statuses, limit)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.ActionProposal, error) {
	p, err := s.proposals.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProposalNotFound
	}
	return p, nil
}
