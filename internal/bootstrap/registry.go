package bootstrap

import (
	"github.com/vfg2006/traffic-autopilot/infrastructure/integrator/fixture"
	"github.com/vfg2006/traffic-autopilot/infrastructure/integrator/meta"
	"github.com/vfg2006/traffic-autopilot/infrastructure/integrator/ssotica"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

// NewRegistry registra as combinações plataforma/modo com implementação.
// O modo live_api das plataformas servidas só por arquivo fica de fora e
// resulta em UnsupportedPlatform.
func NewRegistry(cfg *config.Config, cursors repository.CursorRepository) *connector.Registry {
	registry := connector.NewRegistry()

	registry.Register(domain.PlatformMeta, domain.ConnectorModeLiveAPI, meta.NewFactory(cfg))
	registry.Register(domain.PlatformSSOtica, domain.ConnectorModeLiveAPI, ssotica.NewFactory(cfg, cursors))

	fixtureFactory := fixture.NewFactory(cfg)
	for _, platform := range fixture.Platforms {
		registry.Register(platform, domain.ConnectorModeImport, fixtureFactory)
	}

	return registry
}
