package ssotica

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ssoticadomain "github.com/vfg2006/traffic-autopilot/infrastructure/integrator/ssotica/domain"
	"github.com/vfg2006/traffic-autopilot/infrastructure/integrator/ssotica/ssoticaclient"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/pkg/utils"
)

const (
	SettingAccessToken = "access_token"
	SettingCNPJs       = "cnpjs"
	SettingOrigins     = "origins"

	// CursorLastSyncedDate guarda o último dia importado com sucesso
	CursorLastSyncedDate = "last_synced_date"

	maxBackfillDays = 31
)

// SSOticaIntegrator expõe as vendas de cada loja (CNPJ) como conversões
// diárias. É somente leitura: não há ações suportadas.
type SSOticaIntegrator struct {
	cfg      domain.ConnectorConfig
	client   ssoticaclient.Client
	cursors  repository.CursorRepository
	cnpjs    []string
	origins  []ssoticadomain.Origin
	location *time.Location
	now      func() time.Time
}

func NewFactory(cfg *config.Config, cursors repository.CursorRepository) connector.Factory {
	limiter := connector.NewLimiter(domain.PlatformSSOtica, cfg.SSOtica.RequestsPerSecond, 1)
	logrus.WithField("rate_limit", limiter.String()).Debug("Limitador de cota configurado")
	client := ssoticaclient.NewClient(cfg.SSOtica.URL, time.Duration(cfg.SSOtica.HTTPTimeoutSeconds)*time.Second, limiter)
	location := cfg.App.Location()

	return func(connCfg domain.ConnectorConfig) (connector.Connector, error) {
		return New(connCfg, client, cursors, location)
	}
}

func New(cfg domain.ConnectorConfig, client ssoticaclient.Client, cursors repository.CursorRepository, location *time.Location) (*SSOticaIntegrator, error) {
	cnpjs := make([]string, 0)
	for _, part := range strings.Split(cfg.Setting(SettingCNPJs), ",") {
		if cnpj := normalizeCNPJ(part); cnpj != "" {
			cnpjs = append(cnpjs, cnpj)
		}
	}
	if len(cnpjs) == 0 {
		return nil, errors.Errorf("conector %s: %s é obrigatório", cfg.ID, SettingCNPJs)
	}

	origins := ssoticadomain.SocialNetworkOrigins
	if custom := cfg.Setting(SettingOrigins); custom != "" {
		origins = make([]ssoticadomain.Origin, 0)
		for _, part := range strings.Split(custom, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, ssoticadomain.Origin(part))
			}
		}
	}

	if location == nil {
		location = time.UTC
	}

	return &SSOticaIntegrator{
		cfg:      cfg,
		client:   client,
		cursors:  cursors,
		cnpjs:    cnpjs,
		origins:  origins,
		location: location,
		now:      time.Now,
	}, nil
}

func (s *SSOticaIntegrator) ID() string { return s.cfg.ID }

func (s *SSOticaIntegrator) Platform() string { return domain.PlatformSSOtica }

func (s *SSOticaIntegrator) Mode() domain.ConnectorMode { return domain.ConnectorModeLiveAPI }

func (s *SSOticaIntegrator) SupportedActions() []domain.ActionKind { return nil }

// HealthCheck consulta as vendas de hoje da primeira loja
func (s *SSOticaIntegrator) HealthCheck(ctx context.Context) domain.HealthReport {
	now := s.now()
	report := domain.HealthReport{Status: domain.HealthOK, CheckedAt: now.UTC()}

	if s.cfg.Setting(SettingAccessToken) == "" {
		report.Status = domain.HealthErr
		report.Message = "missing access_token"
		return report
	}

	today := now.In(s.location).Format(time.DateOnly)
	_, err := s.client.GetSales(ctx, ssoticaclient.SalesConsultationParams{
		StartDate: today,
		EndDate:   today,
		CNPJ:      s.cnpjs[0],
		Token:     s.cfg.Setting(SettingAccessToken),
	})
	if err != nil {
		report.Status = domain.HealthFromError(err)
		report.Message = err.Error()
	}

	return report
}

func (s *SSOticaIntegrator) SyncEntities(context.Context) (iter.Seq2[domain.Entity, error], error) {
	now := s.now().UTC()

	entities := make([]domain.Entity, 0, len(s.cnpjs))
	for _, cnpj := range s.cnpjs {
		entities = append(entities, domain.Entity{
			EntityType: domain.EntityTypeAccount,
			EntityID:   cnpj,
			AccountID:  cnpj,
			Name:       "CNPJ " + cnpj,
			Status:     "ACTIVE",
			Active:     true,
			LastSeenAt: now,
		})
	}

	return connector.FromSlice(entities), nil
}

// FetchMetricsDaily busca as vendas do período para cada loja. Se o cursor
// indicar um buraco antes do início do intervalo, o período é estendido para
// trás (até maxBackfillDays). O cursor não é tocado aqui: ele só avança em
// CommitMetricsDaily.
func (s *SSOticaIntegrator) FetchMetricsDaily(ctx context.Context, dateRange connector.DateRange) (iter.Seq2[domain.MetricRecord, error], error) {
	start := s.backfillStart(ctx, dateRange)

	records := make([]domain.MetricRecord, 0)
	for _, cnpj := range s.cnpjs {
		orders, err := s.client.GetSales(ctx, ssoticaclient.SalesConsultationParams{
			StartDate: start.Format(time.DateOnly),
			EndDate:   dateRange.End.Format(time.DateOnly),
			CNPJ:      cnpj,
			Token:     s.cfg.Setting(SettingAccessToken),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "erro ao buscar vendas do CNPJ %s", cnpj)
		}
		if len(orders) == 0 {
			continue
		}

		for day, sales := range ssoticadomain.GroupSocialNetworkByDay(orders, s.origins) {
			date, err := time.ParseInLocation(time.DateOnly, day, s.location)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"connector_id": s.cfg.ID,
					"cnpj":         cnpj,
					"date":         day,
				}).Warn("Venda com data inválida ignorada")
				continue
			}

			records = append(records, domain.MetricRecord{
				ConnectorID:     s.cfg.ID,
				Platform:        domain.PlatformSSOtica,
				AccountID:       cnpj,
				EntityType:      domain.EntityTypeAccount,
				EntityID:        cnpj,
				Date:            date,
				Granularity:     domain.GranularityDaily,
				Conversions:     domain.Float64Ptr(float64(sales.Orders)),
				ConversionValue: domain.Float64Ptr(utils.Round(sales.NetAmount, 2)),
				RawPayload:      map[string]any{"source": "social_network_orders"},
			})
		}
	}

	return connector.FromSlice(records), nil
}

// CommitMetricsDaily marca o fim do intervalo como importado, depois que as
// métricas foram gravadas
func (s *SSOticaIntegrator) CommitMetricsDaily(ctx context.Context, dateRange connector.DateRange) error {
	if err := s.cursors.Set(ctx, s.cfg.ID, CursorLastSyncedDate, dateRange.End.Format(time.DateOnly)); err != nil {
		return errors.Wrap(err, "erro ao gravar cursor do SSOtica")
	}
	return nil
}

func (s *SSOticaIntegrator) backfillStart(ctx context.Context, dateRange connector.DateRange) time.Time {
	start := dateRange.Start

	value, err := s.cursors.Get(ctx, s.cfg.ID, CursorLastSyncedDate)
	if err != nil || value == "" {
		return start
	}

	last, err := time.ParseInLocation(time.DateOnly, value, dateRange.Start.Location())
	if err != nil {
		return start
	}

	next := last.AddDate(0, 0, 1)
	if !next.Before(start) {
		return start
	}

	limit := start.AddDate(0, 0, -maxBackfillDays)
	if next.Before(limit) {
		next = limit
	}

	logrus.WithFields(logrus.Fields{
		"connector_id": s.cfg.ID,
		"from":         next.Format(time.DateOnly),
		"to":           start.Format(time.DateOnly),
	}).Info("Recuperando dias sem sincronização do SSOtica")

	return next
}

func (s *SSOticaIntegrator) ApplyAction(context.Context, *domain.ActionProposal) (*connector.ActionResult, error) {
	return nil, domain.NewActionFailure("ssotica: analytics-only connector, actions are not supported")
}

func normalizeCNPJ(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
