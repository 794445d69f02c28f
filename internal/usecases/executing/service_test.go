package executing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository/memory"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/connector/mocks"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"go.uber.org/mock/gomock"
)

type builderFunc func(cfg domain.ConnectorConfig) (connector.Connector, error)

func (f builderFunc) Build(cfg domain.ConnectorConfig) (connector.Connector, error) {
	return f(cfg)
}

func fixedBuilder(c connector.Connector) builderFunc {
	return func(domain.ConnectorConfig) (connector.Connector, error) { return c, nil }
}

// seed grava um conector e uma proposta no status pedido
func seed(t *testing.T, repos repository.Repositories, status domain.ProposalStatus) *domain.ActionProposal {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repos.Connectors.Save(ctx, &domain.ConnectorConfig{
		ID:       "meta-1",
		Platform: domain.PlatformMeta,
		Mode:     domain.ConnectorModeLiveAPI,
		Enabled:  true,
	}))

	p, _, err := repos.Proposals.CreateIfAbsent(ctx, &domain.ActionProposal{
		ID:          "p1",
		RuleID:      "kill_switch_campaign",
		ConnectorID: "meta-1",
		Platform:    domain.PlatformMeta,
		EntityType:  domain.EntityTypeCampaign,
		EntityID:    "c1",
		ActionKind:  domain.ActionPause,
		Risk:        domain.RiskHigh,
		Status:      domain.ProposalProposed,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	if status == domain.ProposalProposed {
		return p
	}

	p, err = repos.Proposals.Transition(ctx, p.ID, domain.ProposalProposed, domain.ProposalApproved, domain.ProposalUpdate{})
	require.NoError(t, err)
	if status == domain.ProposalApproved {
		return p
	}

	p, err = repos.Proposals.Transition(ctx, p.ID, domain.ProposalApproved, status, domain.ProposalUpdate{})
	require.NoError(t, err)
	return p
}

func newService(repos repository.Repositories, builder ConnectorBuilder) *Service {
	return NewService(repos.Proposals, repos.Executions, repos.Connectors, builder, time.Second)
}

func TestExecuteSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockConnector(ctrl)
	repos, _ := memory.New()
	seed(t, repos, domain.ProposalApproved)

	conn.EXPECT().SupportedActions().Return([]domain.ActionKind{domain.ActionPause}).AnyTimes()
	conn.EXPECT().ApplyAction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p *domain.ActionProposal) (*connector.ActionResult, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline, "a ação roda com timeout próprio")
			return &connector.ActionResult{
				Before: map[string]any{"status": "ACTIVE"},
				After:  map[string]any{"status": "PAUSED"},
			}, nil
		})

	exec, err := newService(repos, fixedBuilder(conn)).Execute(context.Background(), "p1", "operador")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionSuccess, exec.Result)
	assert.Equal(t, "PAUSED", exec.After["status"])

	p, err := repos.Proposals.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalExecuted, p.Status)
	assert.NotNil(t, p.ExecutedAt)

	records, err := repos.Executions.List(context.Background(), domain.ExecutionFilters{ProposalID: "p1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "operador", records[0].ExecutedBy)
	assert.Equal(t, "ACTIVE", records[0].Before["status"])
}

func TestExecuteActionFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockConnector(ctrl)
	repos, _ := memory.New()
	seed(t, repos, domain.ProposalApproved)

	conn.EXPECT().SupportedActions().Return([]domain.ActionKind{domain.ActionPause}).AnyTimes()
	conn.EXPECT().ApplyAction(gomock.Any(), gomock.Any()).Return(nil, domain.NewActionFailure("token expired")).Times(1)

	exec, err := newService(repos, fixedBuilder(conn)).Execute(context.Background(), "p1", "operador")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionFailure, exec.Result)
	assert.Equal(t, "token expired", exec.ErrorMessage)

	p, err := repos.Proposals.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalFailed, p.Status)
	assert.Equal(t, "token expired", p.Error)

	records, err := repos.Executions.List(context.Background(), domain.ExecutionFilters{ProposalID: "p1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ExecutionFailure, records[0].Result)
	assert.Equal(t, "token expired", records[0].ErrorMessage)

	// sem nova tentativa: a proposta já está em failed
	_, err = newService(repos, fixedBuilder(conn)).Execute(context.Background(), "p1", "operador")
	assert.ErrorIs(t, err, domain.ErrInvalidProposalState)
}

func TestExecuteRequiresApprovedStatus(t *testing.T) {
	for _, status := range []domain.ProposalStatus{domain.ProposalProposed, domain.ProposalExecuted, domain.ProposalFailed} {
		t.Run(string(status), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// nenhuma chamada é esperada no conector
			conn := mocks.NewMockConnector(ctrl)
			repos, _ := memory.New()
			seed(t, repos, status)

			_, err := newService(repos, fixedBuilder(conn)).Execute(context.Background(), "p1", "operador")
			var stateErr *domain.InvalidStateError
			require.ErrorAs(t, err, &stateErr)
			assert.Equal(t, status, stateErr.Current)

			records, err := repos.Executions.List(context.Background(), domain.ExecutionFilters{})
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestExecuteUnknownProposal(t *testing.T) {
	repos, _ := memory.New()
	_, err := newService(repos, fixedBuilder(nil)).Execute(context.Background(), "nope", "operador")
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)
}

func TestExecuteUnsupportedActionIsRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockConnector(ctrl)
	repos, _ := memory.New()
	seed(t, repos, domain.ProposalApproved)

	conn.EXPECT().SupportedActions().Return([]domain.ActionKind{domain.ActionBudgetDecrease}).AnyTimes()
	conn.EXPECT().Platform().Return(domain.PlatformMeta).AnyTimes()

	exec, err := newService(repos, fixedBuilder(conn)).Execute(context.Background(), "p1", "operador")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionFailure, exec.Result)
	assert.Contains(t, exec.ErrorMessage, "not supported")
}

func TestExecuteBuildFailureIsRecorded(t *testing.T) {
	repos, _ := memory.New()
	seed(t, repos, domain.ProposalApproved)

	builder := builderFunc(func(cfg domain.ConnectorConfig) (connector.Connector, error) {
		return nil, domain.NewUnsupportedPlatform(cfg.Platform, cfg.Mode)
	})

	exec, err := newService(repos, builder).Execute(context.Background(), "p1", "operador")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionFailure, exec.Result)

	p, err := repos.Proposals.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalFailed, p.Status)
}

func TestExecuteConcurrentCallsApplyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockConnector(ctrl)
	repos, _ := memory.New()
	seed(t, repos, domain.ProposalApproved)

	var calls atomic.Int32
	conn.EXPECT().SupportedActions().Return([]domain.ActionKind{domain.ActionPause}).AnyTimes()
	conn.EXPECT().ApplyAction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *domain.ActionProposal) (*connector.ActionResult, error) {
			calls.Add(1)
			time.Sleep(10 * time.Millisecond)
			return &connector.ActionResult{}, nil
		}).AnyTimes()

	service := newService(repos, fixedBuilder(conn))

	var (
		wg       sync.WaitGroup
		failures atomic.Int32
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.Execute(context.Background(), "p1", "operador"); err != nil {
				assert.True(t, errors.Is(err, domain.ErrInvalidProposalState))
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(4), failures.Load())

	records, err := repos.Executions.List(context.Background(), domain.ExecutionFilters{ProposalID: "p1"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExecuteSurvivesCallerCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockConnector(ctrl)
	repos, _ := memory.New()
	seed(t, repos, domain.ProposalApproved)

	ctx, cancel := context.WithCancel(context.Background())

	conn.EXPECT().SupportedActions().Return([]domain.ActionKind{domain.ActionPause}).AnyTimes()
	conn.EXPECT().ApplyAction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(actionCtx context.Context, _ *domain.ActionProposal) (*connector.ActionResult, error) {
			cancel()
			assert.NoError(t, actionCtx.Err(), "cancelar o ciclo não interrompe a ação em andamento")
			return &connector.ActionResult{}, nil
		})

	exec, err := newService(repos, fixedBuilder(conn)).Execute(ctx, "p1", "auto")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionSuccess, exec.Result)
}

// flakyProposals falha as próximas gravações de resultado sem tocar no store
type flakyProposals struct {
	repository.ProposalRepository
	failures atomic.Int32
}

func (f *flakyProposals) Complete(ctx context.Context, id string, execution *domain.Execution) (*domain.ActionProposal, error) {
	if f.failures.Add(-1) >= 0 {
		return nil, errors.New("db down")
	}
	return f.ProposalRepository.Complete(ctx, id, execution)
}

func newFlakyService(repos repository.Repositories, builder ConnectorBuilder, failures int32) (*Service, *flakyProposals) {
	flaky := &flakyProposals{ProposalRepository: repos.Proposals}
	flaky.failures.Store(failures)

	service := NewService(flaky, repos.Executions, repos.Connectors, builder, time.Second)
	service.retryBackoff = 0
	return service, flaky
}

func succeedingConnector(ctrl *gomock.Controller) *mocks.MockConnector {
	conn := mocks.NewMockConnector(ctrl)
	conn.EXPECT().SupportedActions().Return([]domain.ActionKind{domain.ActionPause}).AnyTimes()
	conn.EXPECT().ApplyAction(gomock.Any(), gomock.Any()).Return(&connector.ActionResult{
		After: map[string]any{"status": "PAUSED"},
	}, nil).Times(1)
	return conn
}

func TestExecuteRetriesCompleteAfterStoreFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repos, _ := memory.New()
	seed(t, repos, domain.ProposalApproved)

	service, _ := newFlakyService(repos, fixedBuilder(succeedingConnector(ctrl)), 1)

	exec, err := service.Execute(ctx, "p1", "operador")
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionSuccess, exec.Result)

	p, err := repos.Proposals.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalExecuted, p.Status)

	records, err := repos.Executions.List(ctx, domain.ExecutionFilters{ProposalID: "p1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ExecutionSuccess, records[0].Result)
}

func TestRecoverStaleClaimsReleasesDedupeKey(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repos, _ := memory.New()
	seed(t, repos, domain.ProposalApproved)

	claimedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	service, _ := newFlakyService(repos, fixedBuilder(succeedingConnector(ctrl)), completeAttempts)
	service.now = func() time.Time { return claimedAt }

	_, err := service.Execute(ctx, "p1", "operador")
	require.Error(t, err)

	p, err := repos.Proposals.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalApproved, p.Status)
	require.NotNil(t, p.ClaimedAt)

	// a ação não é repetida enquanto a reserva existe
	_, err = service.Execute(ctx, "p1", "operador")
	assert.ErrorIs(t, err, domain.ErrInvalidProposalState)

	// reserva recente ainda pode estar em andamento
	recovered, err := service.RecoverStaleClaims(ctx)
	require.NoError(t, err)
	assert.Zero(t, recovered)

	service.now = func() time.Time { return claimedAt.Add(time.Second + staleClaimGrace + time.Second) }
	recovered, err = service.RecoverStaleClaims(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, recovered)

	p, err = repos.Proposals.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalFailed, p.Status)
	assert.Equal(t, OutcomeLostMessage, p.Error)

	records, err := repos.Executions.List(ctx, domain.ExecutionFilters{ProposalID: "p1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ExecutionFailure, records[0].Result)
	assert.Equal(t, recoveryActor, records[0].ExecutedBy)

	// a chave (regra, entidade, ação) volta a aceitar propostas
	_, created, err := repos.Proposals.CreateIfAbsent(ctx, &domain.ActionProposal{
		ID:          "p2",
		RuleID:      "kill_switch_campaign",
		ConnectorID: "meta-1",
		Platform:    domain.PlatformMeta,
		EntityType:  domain.EntityTypeCampaign,
		EntityID:    "c1",
		ActionKind:  domain.ActionPause,
		Risk:        domain.RiskHigh,
		Status:      domain.ProposalProposed,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, created)
}
