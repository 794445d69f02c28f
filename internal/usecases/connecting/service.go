package connecting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/pkg/utils"
)

var ErrInvalidConnector = errors.New("configuração de conector inválida")

type Connecter interface {
	List(ctx context.Context) ([]*domain.ConnectorConfig, error)
	Configure(ctx context.Context, cfg *domain.ConnectorConfig) (*domain.ConnectorConfig, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
	CheckHealth(ctx context.Context, id string) (*domain.HealthReport, error)
	Platforms() map[string][]domain.ConnectorMode
}

type Service struct {
	connectors repository.ConnectorRepository
	registry   *connector.Registry
	timeout    time.Duration
}

func NewService(connectors repository.ConnectorRepository, registry *connector.Registry, timeout time.Duration) *Service {
	return &Service{
		connectors: connectors,
		registry:   registry,
		timeout:    timeout,
	}
}

func (s *Service) List(ctx context.Context) ([]*domain.ConnectorConfig, error) {
	return s.connectors.List(ctx, false)
}

// Configure cria ou atualiza um conector. A combinação plataforma/modo precisa
// existir no registro; senão o erro é UnsupportedPlatform.
func (s *Service) Configure(ctx context.Context, cfg *domain.ConnectorConfig) (*domain.ConnectorConfig, error) {
	cfg.Platform = strings.ToLower(strings.TrimSpace(cfg.Platform))
	if cfg.Platform == "" {
		return nil, fmt.Errorf("%w: platform é obrigatório", ErrInvalidConnector)
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.ConnectorModeImport
	}
	if !cfg.Mode.IsValid() {
		return nil, fmt.Errorf("%w: modo %q", ErrInvalidConnector, cfg.Mode)
	}
	if !s.registry.Supports(cfg.Platform, cfg.Mode) {
		err := domain.NewUnsupportedPlatform(cfg.Platform, cfg.Mode)
		err.ConnectorID = cfg.ID
		return nil, err
	}

	if cfg.ID == "" {
		id, err := utils.GenerateID()
		if err != nil {
			return nil, err
		}
		cfg.ID = fmt.Sprintf("%s-%s", cfg.Platform, strings.ToLower(id))
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = cfg.ID
	}

	// valida a configuração opaca construindo o conector uma vez
	if _, err := s.registry.Build(*cfg); err != nil {
		return nil, err
	}

	if err := s.connectors.Save(ctx, cfg); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"connector_id": cfg.ID,
		"platform":     cfg.Platform,
		"mode":         cfg.Mode,
		"enabled":      cfg.Enabled,
	}).Info("Conector configurado")

	return s.connectors.Get(ctx, cfg.ID)
}

func (s *Service) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if err := s.connectors.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"connector_id": id,
		"enabled":      enabled,
	}).Info("Estado do conector alterado")

	return nil
}

// CheckHealth roda o health check fora do ciclo, sem gravar o resultado
func (s *Service) CheckHealth(ctx context.Context, id string) (*domain.HealthReport, error) {
	cfg, err := s.connectors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, domain.ErrConnectorNotFound
	}

	if !cfg.Enabled {
		return &domain.HealthReport{Status: domain.HealthOff, Message: "connector disabled", CheckedAt: time.Now().UTC()}, nil
	}

	conn, err := s.registry.Build(*cfg)
	if err != nil {
		return nil, err
	}

	checkCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report := conn.HealthCheck(checkCtx)
	return &report, nil
}

func (s *Service) Platforms() map[string][]domain.ConnectorMode {
	return s.registry.Platforms()
}
