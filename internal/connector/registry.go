package connector

import (
	"sort"
	"sync"

	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

// Factory constrói um conector a partir da sua configuração persistida
type Factory func(cfg domain.ConnectorConfig) (Connector, error)

// Registry resolve (plataforma, modo) para a fábrica do conector.
// Plataformas ou modos não registrados devolvem ErrUnsupportedPlatform.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]map[domain.ConnectorMode]Factory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]map[domain.ConnectorMode]Factory),
	}
}

func (r *Registry) Register(platform string, mode domain.ConnectorMode, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.factories[platform] == nil {
		r.factories[platform] = make(map[domain.ConnectorMode]Factory)
	}
	r.factories[platform][mode] = factory
}

func (r *Registry) Supports(platform string, mode domain.ConnectorMode) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[platform][mode]
	return ok
}

func (r *Registry) Build(cfg domain.ConnectorConfig) (Connector, error) {
	r.mu.RLock()
	factory, ok := r.factories[cfg.Platform][cfg.Mode]
	r.mu.RUnlock()

	if !ok {
		err := domain.NewUnsupportedPlatform(cfg.Platform, cfg.Mode)
		err.ConnectorID = cfg.ID
		return nil, err
	}

	return factory(cfg)
}

// Platforms lista as plataformas registradas com seus modos, em ordem
func (r *Registry) Platforms() map[string][]domain.ConnectorMode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]domain.ConnectorMode, len(r.factories))
	for platform, modes := range r.factories {
		list := make([]domain.ConnectorMode, 0, len(modes))
		for mode := range modes {
			list = append(list, mode)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		out[platform] = list
	}
	return out
}
