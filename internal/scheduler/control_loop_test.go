package scheduler

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository/memory"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/connector/mocks"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/executing"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/proposing"
	"go.uber.org/mock/gomock"
)

var today = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type builderFunc func(cfg domain.ConnectorConfig) (connector.Connector, error)

func (f builderFunc) Build(cfg domain.ConnectorConfig) (connector.Connector, error) {
	return f(cfg)
}

// byID resolve o conector pelo id da configuração
func byID(conns map[string]connector.Connector) builderFunc {
	return func(cfg domain.ConnectorConfig) (connector.Connector, error) {
		c, ok := conns[cfg.ID]
		if !ok {
			return nil, domain.NewUnsupportedPlatform(cfg.Platform, cfg.Mode)
		}
		return c, nil
	}
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.App{Timezone: "UTC", ExecutionMode: "manual"},
		ControlLoop: config.ControlLoop{
			MaxConcurrentConnectors: 2,
			ConnectorTimeoutSeconds: 5,
			ActionTimeoutSeconds:    5,
			LookbackDays:            2,
			RuleWindowDays:          14,
			FreshnessWarnDays:       2,
		},
	}
}

func newLoop(t *testing.T, repos repository.Repositories, builder executing.ConnectorBuilder) *ControlLoop {
	t.Helper()
	cfg := testConfig()
	proposer := proposing.NewService(repos.Proposals)
	executor := executing.NewService(repos.Proposals, repos.Executions, repos.Connectors, builder, cfg.ControlLoop.ActionTimeout())

	loop := NewControlLoop(repos, builder, proposer, executor, cfg)
	loop.now = func() time.Time { return today.Add(12 * time.Hour) }
	return loop
}

func saveConnector(t *testing.T, repos repository.Repositories, id, platform string) {
	t.Helper()
	require.NoError(t, repos.Connectors.Save(context.Background(), &domain.ConnectorConfig{
		ID:       id,
		Platform: platform,
		Mode:     domain.ConnectorModeLiveAPI,
		Enabled:  true,
	}))
}

func saveKillSwitch(t *testing.T, repos repository.Repositories, autoExecute bool) {
	t.Helper()
	require.NoError(t, repos.Rules.Save(context.Background(), &domain.Rule{
		ID:      "kill_switch_campaign",
		Name:    "Kill switch",
		Kind:    domain.RuleKindKillSwitch,
		Enabled: true,
		Params: map[string]any{
			"spend_threshold": 100000,
			"window_days":     3,
			"auto_execute":    autoExecute,
		},
	}))
}

func spendDay(connectorID, entityID string, day time.Time, spend float64) domain.MetricRecord {
	return domain.MetricRecord{
		ConnectorID: connectorID,
		Platform:    domain.PlatformMeta,
		EntityType:  domain.EntityTypeCampaign,
		EntityID:    entityID,
		Date:        day,
		Granularity: domain.GranularityDaily,
		Spend:       domain.Float64Ptr(spend),
		Clicks:      domain.Int64Ptr(300),
		Conversions: domain.Float64Ptr(0),
	}
}

// expectSync responde com uma campanha que gastou 40000 por dia em ontem e
// hoje, sem conversões
func expectSync(conn *mocks.MockConnector) {
	conn.EXPECT().SyncEntities(gomock.Any()).Return(connector.FromSlice([]domain.Entity{{
		EntityType: domain.EntityTypeCampaign,
		EntityID:   "c1",
		Name:       "Campanha 1",
		Status:     "ACTIVE",
	}}), nil).AnyTimes()
	conn.EXPECT().FetchMetricsDaily(gomock.Any(), connector.DateRange{Start: today.AddDate(0, 0, -1), End: today}).
		Return(connector.FromSlice([]domain.MetricRecord{
			spendDay("", "c1", today.AddDate(0, 0, -1), 40000),
			spendDay("", "c1", today, 40000),
		}), nil).AnyTimes()
}

func seedOlderSpend(t *testing.T, repos repository.Repositories, connectorID string) {
	t.Helper()
	require.NoError(t, repos.Metrics.UpsertBatch(context.Background(), []domain.MetricRecord{
		spendDay(connectorID, "c1", today.AddDate(0, 0, -2), 40000),
	}))
}

func TestRunCycleIsolatesConnectorFailures(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repos, _ := memory.New()

	saveConnector(t, repos, "meta-broken", domain.PlatformMeta)
	saveConnector(t, repos, "meta-ok", domain.PlatformMeta)
	saveKillSwitch(t, repos, false)
	seedOlderSpend(t, repos, "meta-ok")

	broken := mocks.NewMockConnector(ctrl)
	broken.EXPECT().HealthCheck(gomock.Any()).Return(domain.HealthReport{Status: domain.HealthOK})
	broken.EXPECT().SyncEntities(gomock.Any()).Return(nil, domain.NewTransportFailure(domain.PlatformMeta, errors.New("connection reset")))

	ok := mocks.NewMockConnector(ctrl)
	ok.EXPECT().HealthCheck(gomock.Any()).Return(domain.HealthReport{Status: domain.HealthOK})
	expectSync(ok)

	loop := newLoop(t, repos, byID(map[string]connector.Connector{"meta-broken": broken, "meta-ok": ok}))

	report, err := loop.RunCycle(ctx, domain.ExecutionModeManual)
	require.NoError(t, err)
	require.Len(t, report.Connectors, 2)
	assert.Equal(t, 1, report.Failed())
	assert.NotEmpty(t, report.CorrelationID)

	brokenCfg, err := repos.Connectors.Get(ctx, "meta-broken")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthErr, brokenCfg.Health)
	require.NotNil(t, brokenCfg.LastError)
	assert.Contains(t, *brokenCfg.LastError, "connection reset")

	okCfg, err := repos.Connectors.Get(ctx, "meta-ok")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthOK, okCfg.Health)
	assert.Nil(t, okCfg.LastError)
	assert.NotNil(t, okCfg.LastSyncAt)

	open, err := repos.Proposals.ListByStatus(ctx, domain.OpenProposalStatuses, 0)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "meta-ok", open[0].ConnectorID)
	assert.Equal(t, domain.ActionPause, open[0].ActionKind)
	assert.Equal(t, domain.RiskHigh, open[0].Risk)
	assert.Equal(t, domain.ProposalProposed, open[0].Status)
}

func TestRunCycleRecoversConnectorPanic(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repos, _ := memory.New()

	saveConnector(t, repos, "meta-panic", domain.PlatformMeta)
	saveConnector(t, repos, "meta-ok", domain.PlatformMeta)
	saveKillSwitch(t, repos, false)
	seedOlderSpend(t, repos, "meta-ok")

	panicking := mocks.NewMockConnector(ctrl)
	panicking.EXPECT().HealthCheck(gomock.Any()).Return(domain.HealthReport{Status: domain.HealthOK})
	panicking.EXPECT().SyncEntities(gomock.Any()).
		DoAndReturn(func(context.Context) (iter.Seq2[domain.Entity, error], error) {
			var seen map[string]domain.Entity
			seen["c1"] = domain.Entity{}
			return nil, nil
		})

	ok := mocks.NewMockConnector(ctrl)
	ok.EXPECT().HealthCheck(gomock.Any()).Return(domain.HealthReport{Status: domain.HealthOK})
	expectSync(ok)

	loop := newLoop(t, repos, byID(map[string]connector.Connector{"meta-panic": panicking, "meta-ok": ok}))

	report, err := loop.RunCycle(ctx, domain.ExecutionModeManual)
	require.NoError(t, err)
	require.Len(t, report.Connectors, 2)
	assert.Equal(t, 1, report.Failed())

	panicCfg, err := repos.Connectors.Get(ctx, "meta-panic")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthErr, panicCfg.Health)
	require.NotNil(t, panicCfg.LastError)
	assert.Contains(t, *panicCfg.LastError, "panic")

	okCfg, err := repos.Connectors.Get(ctx, "meta-ok")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthOK, okCfg.Health)
	assert.NotNil(t, okCfg.LastSyncAt)

	open, err := repos.Proposals.ListByStatus(ctx, domain.OpenProposalStatuses, 0)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "meta-ok", open[0].ConnectorID)

	// o ciclo liberou a trava mesmo com o panic
	assert.Equal(t, false, loop.GetStatus()["running"])
}

// committingConnector é um conector com cursor de ingestão
type committingConnector struct {
	*mocks.MockConnector
	committer *mocks.MockMetricsCommitter
}

func (c committingConnector) CommitMetricsDaily(ctx context.Context, dateRange connector.DateRange) error {
	return c.committer.CommitMetricsDaily(ctx, dateRange)
}

type failingMetrics struct {
	repository.MetricRepository
}

func (failingMetrics) UpsertBatch(context.Context, []domain.MetricRecord) error {
	return errors.New("disco cheio")
}

func TestRunCycleCommitsCursorOnlyAfterMetricsPersisted(t *testing.T) {
	tests := []struct {
		name        string
		failUpsert  bool
		commits     int
		wantFailure bool
	}{
		{name: "métricas gravadas confirmam o cursor", commits: 1},
		{name: "falha ao gravar mantém o cursor", failUpsert: true, commits: 0, wantFailure: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ctrl := gomock.NewController(t)
			repos, _ := memory.New()

			saveConnector(t, repos, "meta-ok", domain.PlatformMeta)
			if tt.failUpsert {
				repos.Metrics = failingMetrics{MetricRepository: repos.Metrics}
			}

			conn := mocks.NewMockConnector(ctrl)
			conn.EXPECT().HealthCheck(gomock.Any()).Return(domain.HealthReport{Status: domain.HealthOK})
			expectSync(conn)

			committer := mocks.NewMockMetricsCommitter(ctrl)
			committer.EXPECT().
				CommitMetricsDaily(gomock.Any(), connector.DateRange{Start: today.AddDate(0, 0, -1), End: today}).
				Return(nil).
				Times(tt.commits)

			loop := newLoop(t, repos, byID(map[string]connector.Connector{
				"meta-ok": committingConnector{MockConnector: conn, committer: committer},
			}))

			report, err := loop.RunCycle(ctx, domain.ExecutionModeManual)
			require.NoError(t, err)
			if tt.wantFailure {
				assert.Equal(t, 1, report.Failed())
			} else {
				assert.Zero(t, report.Failed())
			}
		})
	}
}

func TestRunCycleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repos, store := memory.New()

	saveConnector(t, repos, "meta-ok", domain.PlatformMeta)
	saveKillSwitch(t, repos, false)
	seedOlderSpend(t, repos, "meta-ok")

	conn := mocks.NewMockConnector(ctrl)
	conn.EXPECT().HealthCheck(gomock.Any()).Return(domain.HealthReport{Status: domain.HealthOK}).Times(2)
	expectSync(conn)

	loop := newLoop(t, repos, byID(map[string]connector.Connector{"meta-ok": conn}))

	_, err := loop.RunCycle(ctx, domain.ExecutionModeManual)
	require.NoError(t, err)
	first := len(store.Metrics())

	report, err := loop.RunCycle(ctx, domain.ExecutionModeManual)
	require.NoError(t, err)
	assert.Equal(t, first, len(store.Metrics()), "reimportar o mesmo período não duplica métricas")
	assert.Equal(t, 0, report.Connectors[0].ProposalsCreated)
	assert.Equal(t, 1, report.Connectors[0].ProposalsExisting)

	open, err := repos.Proposals.ListByStatus(ctx, domain.OpenProposalStatuses, 0)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestRunCycleAutoLowRiskExecutesInSameCycle(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repos, _ := memory.New()

	saveConnector(t, repos, "meta-ok", domain.PlatformMeta)
	saveKillSwitch(t, repos, true)
	seedOlderSpend(t, repos, "meta-ok")

	conn := mocks.NewMockConnector(ctrl)
	conn.EXPECT().HealthCheck(gomock.Any()).Return(domain.HealthReport{Status: domain.HealthOK})
	expectSync(conn)
	conn.EXPECT().SupportedActions().Return([]domain.ActionKind{domain.ActionPause}).AnyTimes()
	conn.EXPECT().ApplyAction(gomock.Any(), gomock.Any()).Return(&connector.ActionResult{
		Before: map[string]any{"status": "ACTIVE"},
		After:  map[string]any{"status": "PAUSED"},
	}, nil).Times(1)

	loop := newLoop(t, repos, byID(map[string]connector.Connector{"meta-ok": conn}))

	report, err := loop.RunCycle(ctx, domain.ExecutionModeAutoLowRisk)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Connectors[0].Executed)

	executed, err := repos.Proposals.ListByStatus(ctx, []domain.ProposalStatus{domain.ProposalExecuted}, 0)
	require.NoError(t, err)
	require.Len(t, executed, 1)
	assert.Equal(t, proposing.AutoActor, executed[0].DecidedBy)

	records, err := repos.Executions.List(ctx, domain.ExecutionFilters{ProposalID: executed[0].ID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.ExecutionSuccess, records[0].Result)
	assert.Equal(t, proposing.AutoActor, records[0].ExecutedBy)
}

func TestRunCycleManualModeNeverExecutes(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repos, _ := memory.New()

	saveConnector(t, repos, "meta-ok", domain.PlatformMeta)
	saveKillSwitch(t, repos, true)
	seedOlderSpend(t, repos, "meta-ok")

	// sem expectativa de ApplyAction: qualquer chamada falha o teste
	conn := mocks.NewMockConnector(ctrl)
	conn.EXPECT().HealthCheck(gomock.Any()).Return(domain.HealthReport{Status: domain.HealthOK})
	expectSync(conn)

	loop := newLoop(t, repos, byID(map[string]connector.Connector{"meta-ok": conn}))

	report, err := loop.RunCycle(ctx, domain.ExecutionModeManual)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Connectors[0].Executed)

	open, err := repos.Proposals.ListByStatus(ctx, []domain.ProposalStatus{domain.ProposalProposed}, 0)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestRunCycleSkipsSyncWhenHealthFails(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repos, _ := memory.New()
	saveConnector(t, repos, "meta-1", domain.PlatformMeta)

	conn := mocks.NewMockConnector(ctrl)
	conn.EXPECT().HealthCheck(gomock.Any()).Return(domain.HealthReport{Status: domain.HealthErr, Message: "token expired"})

	loop := newLoop(t, repos, byID(map[string]connector.Connector{"meta-1": conn}))
	report, err := loop.RunCycle(ctx, domain.ExecutionModeManual)
	require.NoError(t, err)
	assert.Equal(t, domain.HealthErr, report.Connectors[0].Health)

	cfg, err := repos.Connectors.Get(ctx, "meta-1")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthErr, cfg.Health)
	assert.Equal(t, "token expired", cfg.HealthMessage)
}

func TestRunCycleWarnsOnStaleData(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repos, _ := memory.New()
	saveConnector(t, repos, "meta-1", domain.PlatformMeta)

	require.NoError(t, repos.Metrics.UpsertBatch(ctx, []domain.MetricRecord{
		spendDay("meta-1", "c1", today.AddDate(0, 0, -5), 10),
	}))

	conn := mocks.NewMockConnector(ctrl)
	conn.EXPECT().HealthCheck(gomock.Any()).Return(domain.HealthReport{Status: domain.HealthOK})
	conn.EXPECT().SyncEntities(gomock.Any()).Return(connector.Empty[domain.Entity](), nil)
	conn.EXPECT().FetchMetricsDaily(gomock.Any(), gomock.Any()).Return(connector.Empty[domain.MetricRecord](), nil)

	loop := newLoop(t, repos, byID(map[string]connector.Connector{"meta-1": conn}))
	report, err := loop.RunCycle(ctx, domain.ExecutionModeManual)
	require.NoError(t, err)
	assert.Equal(t, domain.HealthWarn, report.Connectors[0].Health)
	assert.Empty(t, report.Connectors[0].Error)

	cfg, err := repos.Connectors.Get(ctx, "meta-1")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthWarn, cfg.Health)
	assert.Contains(t, cfg.HealthMessage, "stale data")
}

func TestRunCycleStopsLaunchingAfterCancel(t *testing.T) {
	repos, _ := memory.New()
	saveConnector(t, repos, "meta-1", domain.PlatformMeta)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := newLoop(t, repos, byID(nil))
	report, err := loop.RunCycle(ctx, domain.ExecutionModeManual)
	require.NoError(t, err)
	assert.Empty(t, report.Connectors)
	assert.Equal(t, 1, report.Skipped)
}
