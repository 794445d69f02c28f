package ssotica

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository/memory"
	ssoticadomain "github.com/vfg2006/traffic-autopilot/infrastructure/integrator/ssotica/domain"
	"github.com/vfg2006/traffic-autopilot/infrastructure/integrator/ssotica/ssoticaclient"
	"github.com/vfg2006/traffic-autopilot/infrastructure/integrator/ssotica/ssoticaclient/mocks"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"go.uber.org/mock/gomock"
)

var today = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func newIntegrator(t *testing.T, client ssoticaclient.Client, cursors repository.CursorRepository) *SSOticaIntegrator {
	t.Helper()
	integrator, err := New(domain.ConnectorConfig{
		ID:       "ssotica-1",
		Platform: domain.PlatformSSOtica,
		Mode:     domain.ConnectorModeLiveAPI,
		Config: map[string]string{
			SettingAccessToken: "token",
			SettingCNPJs:       "12.345.678/0001-90",
		},
	}, client, cursors, time.UTC)
	require.NoError(t, err)
	integrator.now = func() time.Time { return today.Add(12 * time.Hour) }
	return integrator
}

func TestNewRequiresCNPJ(t *testing.T) {
	_, err := New(domain.ConnectorConfig{ID: "ssotica-1"}, nil, nil, time.UTC)
	assert.ErrorContains(t, err, SettingCNPJs)
}

func TestSyncEntitiesOnePerStore(t *testing.T) {
	repos, _ := memory.New()
	seq, err := newIntegrator(t, nil, repos.Cursors).SyncEntities(context.Background())
	require.NoError(t, err)

	entities, err := connector.Collect(seq)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "12345678000190", entities[0].EntityID)
	assert.Equal(t, domain.EntityTypeAccount, entities[0].EntityType)
}

func TestFetchMetricsDailyGroupsSocialOrders(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	repos, _ := memory.New()
	ctx := context.Background()

	client.EXPECT().GetSales(gomock.Any(), ssoticaclient.SalesConsultationParams{
		StartDate: "2025-03-09",
		EndDate:   "2025-03-10",
		CNPJ:      "12345678000190",
		Token:     "token",
	}).Return(ssoticaclient.SalesConsultationResponse{
		{Date: "2025-03-09", NetAmount: 100, CustomerOrigins: []ssoticadomain.Origin{"Redes Sociais"}},
		{Date: "2025-03-09", NetAmount: 50, CustomerOrigins: []ssoticadomain.Origin{"Tráfego Pago"}},
		{Date: "2025-03-09", NetAmount: 999, CustomerOrigins: []ssoticadomain.Origin{"Indicação"}},
		{Date: "2025-03-10", NetAmount: 70},
	}, nil)

	integrator := newIntegrator(t, client, repos.Cursors)
	dateRange := connector.DateRange{Start: today.AddDate(0, 0, -1), End: today}

	seq, err := integrator.FetchMetricsDaily(ctx, dateRange)
	require.NoError(t, err)

	records, err := connector.Collect(seq)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byDay := map[string]domain.MetricRecord{}
	for _, r := range records {
		byDay[r.Date.Format(time.DateOnly)] = r
	}
	assert.InDelta(t, 2, *byDay["2025-03-09"].Conversions, 0.001)
	assert.InDelta(t, 150, *byDay["2025-03-09"].ConversionValue, 0.001)
	assert.Nil(t, byDay["2025-03-09"].Spend)
	assert.InDelta(t, 0, *byDay["2025-03-10"].Conversions, 0.001)

	// consumir o iterador não basta para avançar o cursor
	cursor, err := repos.Cursors.Get(ctx, "ssotica-1", CursorLastSyncedDate)
	require.NoError(t, err)
	assert.Empty(t, cursor)

	require.NoError(t, integrator.CommitMetricsDaily(ctx, dateRange))
	cursor, err = repos.Cursors.Get(ctx, "ssotica-1", CursorLastSyncedDate)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", cursor)
}

func TestSSOticaCommitsCursorOnlyThroughCommitter(t *testing.T) {
	var conn connector.Connector = newIntegrator(t, nil, nil)
	_, ok := conn.(connector.MetricsCommitter)
	assert.True(t, ok)
}

func TestFetchMetricsDailyBackfillsFromCursor(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	repos, _ := memory.New()
	ctx := context.Background()

	require.NoError(t, repos.Cursors.Set(ctx, "ssotica-1", CursorLastSyncedDate, "2025-03-05"))

	client.EXPECT().GetSales(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params ssoticaclient.SalesConsultationParams) (ssoticaclient.SalesConsultationResponse, error) {
			assert.Equal(t, "2025-03-06", params.StartDate)
			assert.Equal(t, "2025-03-10", params.EndDate)
			return nil, nil
		})

	seq, err := newIntegrator(t, client, repos.Cursors).FetchMetricsDaily(ctx, connector.DateRange{Start: today.AddDate(0, 0, -1), End: today})
	require.NoError(t, err)

	records, err := connector.Collect(seq)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetchMetricsDailyPropagatesAuthFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	repos, _ := memory.New()

	client.EXPECT().GetSales(gomock.Any(), gomock.Any()).Return(nil, domain.NewAuthFailure(domain.PlatformSSOtica, assert.AnError))

	_, err := newIntegrator(t, client, repos.Cursors).FetchMetricsDaily(context.Background(), connector.DateRange{Start: today, End: today})
	assert.ErrorIs(t, err, domain.ErrConnectorAuthFailure)

	cursor, err := repos.Cursors.Get(context.Background(), "ssotica-1", CursorLastSyncedDate)
	require.NoError(t, err)
	assert.Empty(t, cursor)
}

func TestHealthCheckRateLimitedIsWarn(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().GetSales(gomock.Any(), gomock.Any()).Return(nil, domain.NewRateLimited(domain.PlatformSSOtica, assert.AnError))

	report := newIntegrator(t, client, nil).HealthCheck(context.Background())
	assert.Equal(t, domain.HealthWarn, report.Status)
}

func TestApplyActionIsRejected(t *testing.T) {
	_, err := newIntegrator(t, nil, nil).ApplyAction(context.Background(), &domain.ActionProposal{ActionKind: domain.ActionPause})
	assert.ErrorIs(t, err, domain.ErrActionFailure)
}
