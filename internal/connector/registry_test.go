package connector

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

type stubConnector struct {
	cfg domain.ConnectorConfig
}

func (s *stubConnector) ID() string                 { return s.cfg.ID }
func (s *stubConnector) Platform() string           { return s.cfg.Platform }
func (s *stubConnector) Mode() domain.ConnectorMode { return s.cfg.Mode }
func (s *stubConnector) SupportedActions() []domain.ActionKind {
	return []domain.ActionKind{domain.ActionPause}
}
func (s *stubConnector) HealthCheck(context.Context) domain.HealthReport {
	return domain.HealthReport{Status: domain.HealthOK, CheckedAt: time.Now()}
}
func (s *stubConnector) SyncEntities(context.Context) (iter.Seq2[domain.Entity, error], error) {
	return Empty[domain.Entity](), nil
}
func (s *stubConnector) FetchMetricsDaily(context.Context, DateRange) (iter.Seq2[domain.MetricRecord, error], error) {
	return Empty[domain.MetricRecord](), nil
}
func (s *stubConnector) ApplyAction(context.Context, *domain.ActionProposal) (*ActionResult, error) {
	return &ActionResult{}, nil
}

func TestRegistry_Build(t *testing.T) {
	registry := NewRegistry()
	registry.Register(domain.PlatformDemo, domain.ConnectorModeImport, func(cfg domain.ConnectorConfig) (Connector, error) {
		return &stubConnector{cfg: cfg}, nil
	})

	tests := []struct {
		name     string
		cfg      domain.ConnectorConfig
		validate func(t *testing.T, c Connector, err error)
	}{
		{
			name: "plataforma e modo registrados",
			cfg:  domain.ConnectorConfig{ID: "demo-1", Platform: domain.PlatformDemo, Mode: domain.ConnectorModeImport},
			validate: func(t *testing.T, c Connector, err error) {
				require.NoError(t, err)
				assert.Equal(t, "demo-1", c.ID())
				assert.True(t, Supports(c, domain.ActionPause))
				assert.False(t, Supports(c, domain.ActionBudgetDecrease))
			},
		},
		{
			name: "plataforma desconhecida",
			cfg:  domain.ConnectorConfig{ID: "x", Platform: "myspace", Mode: domain.ConnectorModeImport},
			validate: func(t *testing.T, c Connector, err error) {
				assert.Nil(t, c)
				assert.ErrorIs(t, err, domain.ErrUnsupportedPlatform)

				var connErr *domain.ConnectorError
				require.True(t, errors.As(err, &connErr))
				assert.Equal(t, "x", connErr.ConnectorID)
			},
		},
		{
			name: "modo não registrado para a plataforma",
			cfg:  domain.ConnectorConfig{ID: "demo-2", Platform: domain.PlatformDemo, Mode: domain.ConnectorModeLiveAPI},
			validate: func(t *testing.T, c Connector, err error) {
				assert.Nil(t, c)
				assert.ErrorIs(t, err, domain.ErrUnsupportedPlatform)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := registry.Build(tt.cfg)
			tt.validate(t, c, err)
		})
	}
}

func TestRegistry_Platforms(t *testing.T) {
	registry := NewRegistry()
	factory := func(cfg domain.ConnectorConfig) (Connector, error) { return &stubConnector{cfg: cfg}, nil }
	registry.Register(domain.PlatformMeta, domain.ConnectorModeLiveAPI, factory)
	registry.Register(domain.PlatformMeta, domain.ConnectorModeImport, factory)

	platforms := registry.Platforms()

	assert.Equal(t, []domain.ConnectorMode{domain.ConnectorModeImport, domain.ConnectorModeLiveAPI}, platforms[domain.PlatformMeta])
	assert.True(t, registry.Supports(domain.PlatformMeta, domain.ConnectorModeImport))
	assert.False(t, registry.Supports(domain.PlatformGoogle, domain.ConnectorModeImport))
}

func TestCollect(t *testing.T) {
	items, err := Collect(FromSlice([]int{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, items)

	items, err = Collect(Empty[int]())
	require.NoError(t, err)
	assert.Empty(t, items)

	boom := errors.New("boom")
	var seq iter.Seq2[int, error] = func(yield func(int, error) bool) {
		if yield(1, nil) {
			yield(0, boom)
		}
	}
	items, err = Collect(seq)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, items)
}

func TestDateRange_Days(t *testing.T) {
	r := DateRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
	}

	assert.Len(t, r.Days(), 3)
	assert.True(t, r.Contains(time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
}
