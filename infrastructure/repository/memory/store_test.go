package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

func newProposal(id string) *domain.ActionProposal {
	return &domain.ActionProposal{
		ID:          id,
		RuleID:      "kill_switch_campaign",
		ConnectorID: "meta-1",
		Platform:    domain.PlatformMeta,
		EntityType:  domain.EntityTypeCampaign,
		EntityID:    "c1",
		ActionKind:  domain.ActionPause,
		Risk:        domain.RiskHigh,
		Status:      domain.ProposalProposed,
		CreatedAt:   time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestProposalsCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repos, _ := New()

	first, created, err := repos.Proposals.CreateIfAbsent(ctx, newProposal("p1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "p1", first.ID)

	again, created, err := repos.Proposals.CreateIfAbsent(ctx, newProposal("p2"))
	require.NoError(t, err)
	assert.False(t, created, "proposta aberta equivalente deve ser reaproveitada")
	assert.Equal(t, "p1", again.ID)

	now := time.Now()
	_, err = repos.Proposals.Transition(ctx, "p1", domain.ProposalProposed, domain.ProposalRejected, domain.ProposalUpdate{DecidedBy: "op", DecidedAt: &now})
	require.NoError(t, err)

	third, created, err := repos.Proposals.CreateIfAbsent(ctx, newProposal("p3"))
	require.NoError(t, err)
	assert.True(t, created, "depois de rejeitada, uma nova proposta pode ser criada")
	assert.Equal(t, "p3", third.ID)
}

func TestProposalsTransitionGuards(t *testing.T) {
	ctx := context.Background()
	repos, _ := New()

	_, _, err := repos.Proposals.CreateIfAbsent(ctx, newProposal("p1"))
	require.NoError(t, err)

	_, err = repos.Proposals.Transition(ctx, "p1", domain.ProposalApproved, domain.ProposalExecuted, domain.ProposalUpdate{})
	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, domain.ProposalProposed, stateErr.Current)

	_, err = repos.Proposals.Transition(ctx, "p1", domain.ProposalProposed, domain.ProposalExecuted, domain.ProposalUpdate{})
	assert.ErrorIs(t, err, domain.ErrInvalidProposalState)

	_, err = repos.Proposals.Transition(ctx, "nope", domain.ProposalProposed, domain.ProposalApproved, domain.ProposalUpdate{})
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)
}

func TestProposalsClaimAndComplete(t *testing.T) {
	ctx := context.Background()
	repos, _ := New()

	_, _, err := repos.Proposals.CreateIfAbsent(ctx, newProposal("p1"))
	require.NoError(t, err)

	_, err = repos.Proposals.Claim(ctx, "p1", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidProposalState, "só propostas aprovadas podem ser reservadas")

	_, err = repos.Proposals.Transition(ctx, "p1", domain.ProposalProposed, domain.ProposalApproved, domain.ProposalUpdate{})
	require.NoError(t, err)

	claimed, err := repos.Proposals.Claim(ctx, "p1", time.Now())
	require.NoError(t, err)
	assert.NotNil(t, claimed.ClaimedAt)

	_, err = repos.Proposals.Claim(ctx, "p1", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidProposalState, "a segunda reserva deve falhar")

	done, err := repos.Proposals.Complete(ctx, "p1", &domain.Execution{
		ID:           "e1",
		ProposalID:   "p1",
		ConnectorID:  "meta-1",
		Result:       domain.ExecutionFailure,
		ErrorMessage: "token expired",
		ExecutedAt:   time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalFailed, done.Status)
	assert.Equal(t, "token expired", done.Error)

	execs, err := repos.Executions.List(ctx, domain.ExecutionFilters{ProposalID: "p1"})
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, "token expired", execs[0].ErrorMessage)
}

func TestEntitiesReplaceSnapshot(t *testing.T) {
	ctx := context.Background()
	repos, _ := New()

	t1 := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	require.NoError(t, repos.Entities.ReplaceSnapshot(ctx, "meta-1", []domain.Entity{
		{Platform: domain.PlatformMeta, EntityType: domain.EntityTypeCampaign, EntityID: "c1"},
		{Platform: domain.PlatformMeta, EntityType: domain.EntityTypeCampaign, EntityID: "c2"},
	}, t1))
	require.NoError(t, repos.Entities.ReplaceSnapshot(ctx, "meta-1", []domain.Entity{
		{Platform: domain.PlatformMeta, EntityType: domain.EntityTypeCampaign, EntityID: "c1"},
	}, t2))

	all, err := repos.Entities.ListByConnector(ctx, "meta-1", domain.PlatformMeta, false)
	require.NoError(t, err)
	require.Len(t, all, 2, "entidades nunca são apagadas")
	assert.True(t, all[0].Active)
	assert.False(t, all[1].Active)

	active, err := repos.Entities.ListByConnector(ctx, "meta-1", domain.PlatformMeta, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "c1", active[0].EntityID)
}

func TestMetricsLegacyFallback(t *testing.T) {
	ctx := context.Background()
	repos, _ := New()

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Metrics.UpsertBatch(ctx, []domain.MetricRecord{
		// linha legada sem instância
		{Platform: domain.PlatformMeta, EntityType: domain.EntityTypeCampaign, EntityID: "c1", Date: day, Granularity: domain.GranularityDaily, Spend: domain.Float64Ptr(10)},
		{Platform: domain.PlatformMeta, EntityType: domain.EntityTypeCampaign, EntityID: "c1", Date: day.AddDate(0, 0, 1), Granularity: domain.GranularityDaily, Spend: domain.Float64Ptr(20)},
		{ConnectorID: "meta-1", Platform: domain.PlatformMeta, EntityType: domain.EntityTypeCampaign, EntityID: "c1", Date: day.AddDate(0, 0, 1), Granularity: domain.GranularityDaily, Spend: domain.Float64Ptr(25)},
		// outra plataforma não entra no fallback
		{Platform: domain.PlatformGoogle, EntityType: domain.EntityTypeCampaign, EntityID: "g1", Date: day, Granularity: domain.GranularityDaily, Spend: domain.Float64Ptr(5)},
	}))

	records, err := repos.Metrics.ListWindow(ctx, domain.MetricFilter{
		ConnectorID: "meta-1",
		Platform:    domain.PlatformMeta,
		Start:       day,
		End:         day.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 10.0, domain.FloatValue(records[0].Spend))
	assert.Equal(t, "meta-1", records[0].ConnectorID)
	assert.Equal(t, 25.0, domain.FloatValue(records[1].Spend), "a linha da instância prevalece sobre a legada")

	latest, err := repos.Metrics.LatestDate(ctx, "meta-1", domain.PlatformMeta)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Equal(day.AddDate(0, 0, 1)))
}

func TestMetricsUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos, store := New()

	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	rec := domain.MetricRecord{ConnectorID: "demo-1", Platform: domain.PlatformDemo, EntityType: domain.EntityTypeCampaign, EntityID: "d1", Date: day, Granularity: domain.GranularityDaily, Spend: domain.Float64Ptr(1)}

	require.NoError(t, repos.Metrics.Upsert(ctx, rec))
	rec.Spend = domain.Float64Ptr(2)
	require.NoError(t, repos.Metrics.Upsert(ctx, rec))

	all := store.Metrics()
	require.Len(t, all, 1)
	assert.Equal(t, 2.0, domain.FloatValue(all[0].Spend))
}

func TestConnectorsSetEnabled(t *testing.T) {
	ctx := context.Background()
	repos, _ := New()

	err := repos.Connectors.SetEnabled(ctx, "missing", true)
	assert.True(t, errors.Is(err, domain.ErrConnectorNotFound))

	require.NoError(t, repos.Connectors.Save(ctx, &domain.ConnectorConfig{ID: "demo-1", Platform: domain.PlatformDemo, Mode: domain.ConnectorModeImport, Enabled: true}))
	require.NoError(t, repos.Connectors.SetEnabled(ctx, "demo-1", false))

	enabled, err := repos.Connectors.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, enabled)

	c, err := repos.Connectors.Get(ctx, "demo-1")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthOff, c.Health)
}
