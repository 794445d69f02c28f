package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.StoreDriver = StoreDriverMemory
	cfg.App.Timezone = "UTC"
	cfg.Fixture.BaseDir = "fixtures"
	return cfg
}

func TestRegistryCoversPlatforms(t *testing.T) {
	registry := NewRegistry(testConfig(), nil)

	tests := []struct {
		platform string
		mode     domain.ConnectorMode
		expected bool
	}{
		{domain.PlatformMeta, domain.ConnectorModeLiveAPI, true},
		{domain.PlatformMeta, domain.ConnectorModeImport, true},
		{domain.PlatformSSOtica, domain.ConnectorModeLiveAPI, true},
		{domain.PlatformSSOtica, domain.ConnectorModeImport, false},
		{domain.PlatformGoogle, domain.ConnectorModeImport, true},
		{domain.PlatformGoogle, domain.ConnectorModeLiveAPI, false},
		{domain.PlatformCafe24Analytics, domain.ConnectorModeImport, true},
		{domain.PlatformDemo, domain.ConnectorModeImport, true},
		{"myspace", domain.ConnectorModeImport, false},
	}

	for _, tt := range tests {
		t.Run(tt.platform+"/"+string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.expected, registry.Supports(tt.platform, tt.mode))
		})
	}
}

func TestRegistryBuildUnsupportedLiveAPI(t *testing.T) {
	registry := NewRegistry(testConfig(), nil)

	_, err := registry.Build(domain.ConnectorConfig{ID: "naver-1", Platform: domain.PlatformNaver, Mode: domain.ConnectorModeLiveAPI})
	assert.ErrorIs(t, err, domain.ErrUnsupportedPlatform)
}

func TestMemoryStoreSeedsDefaultRules(t *testing.T) {
	app, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer app.Close()

	rules, err := app.Repos.Rules.List(context.Background(), true)
	require.NoError(t, err)

	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"kill_switch_campaign", "creative_fatigue_ad"}, ids)

	applied, err := app.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestInvalidStoreDriver(t *testing.T) {
	cfg := testConfig()
	cfg.App.StoreDriver = "mongo"

	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "STORE_DRIVER")
}
