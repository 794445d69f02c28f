package proposing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository/memory"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository/mocks"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"go.uber.org/mock/gomock"
)

var target = Target{ConnectorID: "meta-1", Platform: domain.PlatformMeta}

func pauseCandidate(entityID string) domain.ProposalCandidate {
	return domain.ProposalCandidate{
		RuleID:           "kill_switch_campaign",
		EntityType:       domain.EntityTypeCampaign,
		EntityID:         entityID,
		ActionKind:       domain.ActionPause,
		Payload:          map[string]any{"op": "pause"},
		Reason:           "spend alto sem conversão",
		Risk:             domain.RiskHigh,
		RequiresApproval: true,
	}
}

func lowRiskCandidate(entityID string) domain.ProposalCandidate {
	return domain.ProposalCandidate{
		RuleID:     "budget_guard",
		EntityType: domain.EntityTypeCampaign,
		EntityID:   entityID,
		ActionKind: domain.ActionBudgetDecrease,
		Payload:    map[string]any{"decrease_pct": 10.0},
		Risk:       domain.RiskLow,
	}
}

func TestProposeDedupesOpenProposals(t *testing.T) {
	ctx := context.Background()
	repos, _ := memory.New()
	service := NewService(repos.Proposals)

	first, err := service.Propose(ctx, target, []domain.ProposalCandidate{pauseCandidate("c1")}, domain.ExecutionModeManual)
	require.NoError(t, err)
	require.Len(t, first.Created, 1)
	assert.Equal(t, domain.ProposalProposed, first.Created[0].Status)
	assert.Equal(t, "meta-1", first.Created[0].ConnectorID)
	assert.Empty(t, first.ToExecute)

	second, err := service.Propose(ctx, target, []domain.ProposalCandidate{pauseCandidate("c1"), pauseCandidate("c2")}, domain.ExecutionModeManual)
	require.NoError(t, err)
	require.Len(t, second.Created, 1)
	assert.Equal(t, "c2", second.Created[0].EntityID)
	require.Len(t, second.Existing, 1)
	assert.Equal(t, first.Created[0].ID, second.Existing[0].ID)

	open, err := service.ListByStatus(ctx, domain.OpenProposalStatuses, 0)
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestProposeAutoApproval(t *testing.T) {
	tests := []struct {
		name      string
		mode      domain.ExecutionMode
		candidate domain.ProposalCandidate
		approved  bool
	}{
		{
			name:      "baixo risco sem aprovação no modo automático",
			mode:      domain.ExecutionModeAutoLowRisk,
			candidate: lowRiskCandidate("c1"),
			approved:  true,
		},
		{
			name:      "baixo risco no modo manual fica proposta",
			mode:      domain.ExecutionModeManual,
			candidate: lowRiskCandidate("c1"),
			approved:  false,
		},
		{
			name:      "alto risco nunca é aprovado sozinho",
			mode:      domain.ExecutionModeAutoLowRisk,
			candidate: pauseCandidate("c1"),
			approved:  false,
		},
		{
			name: "regra que exige aprovação bloqueia o automático",
			mode: domain.ExecutionModeAutoLowRisk,
			candidate: func() domain.ProposalCandidate {
				c := lowRiskCandidate("c1")
				c.RequiresApproval = true
				return c
			}(),
			approved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, _ := memory.New()
			service := NewService(repos.Proposals)

			outcome, err := service.Propose(context.Background(), target, []domain.ProposalCandidate{tt.candidate}, tt.mode)
			require.NoError(t, err)
			require.Len(t, outcome.Created, 1)

			stored, err := service.Get(context.Background(), outcome.Created[0].ID)
			require.NoError(t, err)

			if tt.approved {
				require.Len(t, outcome.ToExecute, 1)
				assert.Equal(t, domain.ProposalApproved, stored.Status)
				assert.Equal(t, AutoActor, stored.DecidedBy)
				assert.NotNil(t, stored.DecidedAt)
			} else {
				assert.Empty(t, outcome.ToExecute)
				assert.Equal(t, domain.ProposalProposed, stored.Status)
			}
		})
	}
}

func TestProposeReturnsPendingAutoApproved(t *testing.T) {
	ctx := context.Background()
	repos, _ := memory.New()
	service := NewService(repos.Proposals)

	first, err := service.Propose(ctx, target, []domain.ProposalCandidate{lowRiskCandidate("c1")}, domain.ExecutionModeAutoLowRisk)
	require.NoError(t, err)
	require.Len(t, first.ToExecute, 1)

	// nunca executada: o próximo ciclo deve tentar de novo
	second, err := service.Propose(ctx, target, []domain.ProposalCandidate{lowRiskCandidate("c1")}, domain.ExecutionModeAutoLowRisk)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	require.Len(t, second.ToExecute, 1)
	assert.Equal(t, first.ToExecute[0].ID, second.ToExecute[0].ID)
}

func TestDecide(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		setup    func(t *testing.T, s *Service) string
		decision domain.Decision
		by       string
		validate func(t *testing.T, p *domain.ActionProposal, err error)
	}{
		{
			name: "aprovar proposta aberta",
			setup: func(t *testing.T, s *Service) string {
				out, err := s.Propose(ctx, target, []domain.ProposalCandidate{pauseCandidate("c1")}, domain.ExecutionModeManual)
				require.NoError(t, err)
				return out.Created[0].ID
			},
			decision: domain.DecisionApprove,
			by:       "operador@empresa.com",
			validate: func(t *testing.T, p *domain.ActionProposal, err error) {
				require.NoError(t, err)
				assert.Equal(t, domain.ProposalApproved, p.Status)
				assert.Equal(t, "operador@empresa.com", p.DecidedBy)
			},
		},
		{
			name: "rejeitar proposta aberta",
			setup: func(t *testing.T, s *Service) string {
				out, err := s.Propose(ctx, target, []domain.ProposalCandidate{pauseCandidate("c1")}, domain.ExecutionModeManual)
				require.NoError(t, err)
				return out.Created[0].ID
			},
			decision: domain.DecisionReject,
			by:       "operador@empresa.com",
			validate: func(t *testing.T, p *domain.ActionProposal, err error) {
				require.NoError(t, err)
				assert.Equal(t, domain.ProposalRejected, p.Status)
			},
		},
		{
			name: "decidir duas vezes é estado inválido",
			setup: func(t *testing.T, s *Service) string {
				out, err := s.Propose(ctx, target, []domain.ProposalCandidate{pauseCandidate("c1")}, domain.ExecutionModeManual)
				require.NoError(t, err)
				_, err = s.Decide(ctx, out.Created[0].ID, domain.DecisionReject, "op")
				require.NoError(t, err)
				return out.Created[0].ID
			},
			decision: domain.DecisionApprove,
			by:       "op",
			validate: func(t *testing.T, p *domain.ActionProposal, err error) {
				assert.Nil(t, p)
				assert.ErrorIs(t, err, domain.ErrInvalidProposalState)
			},
		},
		{
			name:     "proposta inexistente",
			setup:    func(t *testing.T, s *Service) string { return "nao-existe" },
			decision: domain.DecisionApprove,
			by:       "op",
			validate: func(t *testing.T, p *domain.ActionProposal, err error) {
				assert.ErrorIs(t, err, domain.ErrProposalNotFound)
			},
		},
		{
			name:     "sem responsável pela decisão",
			setup:    func(t *testing.T, s *Service) string { return "qualquer" },
			decision: domain.DecisionApprove,
			by:       "  ",
			validate: func(t *testing.T, p *domain.ActionProposal, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, _ := memory.New()
			service := NewService(repos.Proposals)
			id := tt.setup(t, service)

			p, err := service.Decide(ctx, id, tt.decision, tt.by)
			tt.validate(t, p, err)
		})
	}
}

func TestProposePropagatesRepositoryErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProposalRepository(ctrl)

	dbErr := errors.New("conexão perdida")
	repo.EXPECT().CreateIfAbsent(gomock.Any(), gomock.Any()).Return(nil, false, dbErr)

	service := NewService(repo)
	_, err := service.Propose(context.Background(), target, []domain.ProposalCandidate{pauseCandidate("c1")}, domain.ExecutionModeManual)
	assert.ErrorIs(t, err, dbErr)
}

func TestDecideLosesRaceToConcurrentDecision(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProposalRepository(ctrl)

	proposal := &domain.ActionProposal{ID: "p1", Status: domain.ProposalProposed}
	repo.EXPECT().Get(gomock.Any(), "p1").Return(proposal, nil)
	repo.EXPECT().
		Transition(gomock.Any(), "p1", domain.ProposalProposed, domain.ProposalApproved, gomock.Any()).
		Return(nil, &domain.InvalidStateError{ProposalID: "p1", Current: domain.ProposalRejected, Target: domain.ProposalApproved})

	service := NewService(repo)
	_, err := service.Decide(context.Background(), "p1", domain.DecisionApprove, "op")
	assert.ErrorIs(t, err, domain.ErrInvalidProposalState)
}

func TestAutoApprovalSkipsProposalAlreadyDecided(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProposalRepository(ctrl)

	saved := &domain.ActionProposal{
		ID:         "p1",
		RuleID:     "budget_guard",
		EntityType: domain.EntityTypeCampaign,
		EntityID:   "c1",
		ActionKind: domain.ActionBudgetDecrease,
		Risk:       domain.RiskLow,
		Status:     domain.ProposalProposed,
	}
	repo.EXPECT().CreateIfAbsent(gomock.Any(), gomock.Any()).Return(saved, true, nil)
	// o store pode devolver o erro de estado embrulhado
	repo.EXPECT().
		Transition(gomock.Any(), "p1", domain.ProposalProposed, domain.ProposalApproved, gomock.Any()).
		Return(nil, fmt.Errorf("%w: proposal p1 rejected by operator", domain.ErrInvalidProposalState))

	service := NewService(repo)
	outcome, err := service.Propose(context.Background(), target, []domain.ProposalCandidate{lowRiskCandidate("c1")}, domain.ExecutionModeAutoLowRisk)
	require.NoError(t, err)
	assert.Len(t, outcome.Created, 1)
	assert.Empty(t, outcome.ToExecute)
}
