package meta

import (
	"context"
	"iter"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/traffic-autopilot/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/traffic-autopilot/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

// Chaves da configuração opaca do conector
const (
	SettingAccessToken     = "access_token"
	SettingAdAccountID     = "ad_account_id"
	SettingConversionTypes = "conversion_action_types"
	SettingIngestLevels    = "ingest_levels"
)

// tokenExpiryWarning é a antecedência com que o health check avisa da expiração do token
const tokenExpiryWarning = 7 * 24 * time.Hour

var levelEntityTypes = map[string]domain.EntityType{
	"campaign": domain.EntityTypeCampaign,
	"adset":    domain.EntityTypeAdGroup,
}

type MetaIntegrator struct {
	cfg             domain.ConnectorConfig
	client          metaclient.Client
	accountID       string
	conversionTypes []string
	levels          []string
	location        *time.Location
	now             func() time.Time
}

// NewFactory devolve a fábrica registrada para meta/live_api. O limitador é
// compartilhado por todas as instâncias, já que a cota é por aplicativo.
func NewFactory(cfg *config.Config) connector.Factory {
	limiter := connector.NewLimiter(domain.PlatformMeta, cfg.Meta.RequestsPerSecond, cfg.Meta.RequestBurst)
	logrus.WithField("rate_limit", limiter.String()).Debug("Limitador de cota configurado")
	location := cfg.App.Location()

	return func(connCfg domain.ConnectorConfig) (connector.Connector, error) {
		client := metaclient.NewClient(metaclient.Options{
			URL:         cfg.Meta.URL,
			AccessToken: connCfg.Setting(SettingAccessToken),
			AppID:       cfg.Meta.AppID,
			AppSecret:   cfg.Meta.AppSecret,
			Timeout:     time.Duration(cfg.Meta.HTTPTimeoutSeconds) * time.Second,
			Limiter:     limiter,
		})
		return New(connCfg, client, location)
	}
}

func New(cfg domain.ConnectorConfig, client metaclient.Client, location *time.Location) (*MetaIntegrator, error) {
	accountID := strings.TrimPrefix(strings.TrimSpace(cfg.Setting(SettingAdAccountID)), "act_")
	if accountID == "" {
		return nil, errors.Errorf("conector %s: %s é obrigatório", cfg.ID, SettingAdAccountID)
	}

	levels := splitSetting(cfg.Setting(SettingIngestLevels))
	if len(levels) == 0 {
		levels = []string{"campaign"}
	}
	for _, level := range levels {
		if _, ok := levelEntityTypes[level]; !ok {
			return nil, errors.Errorf("conector %s: nível de ingestão inválido %q", cfg.ID, level)
		}
	}

	conversionTypes := splitSetting(cfg.Setting(SettingConversionTypes))
	if len(conversionTypes) == 0 {
		conversionTypes = metadomain.DefaultPurchaseActionTypes
	}

	if location == nil {
		location = time.UTC
	}

	return &MetaIntegrator{
		cfg:             cfg,
		client:          client,
		accountID:       accountID,
		conversionTypes: conversionTypes,
		levels:          levels,
		location:        location,
		now:             time.Now,
	}, nil
}

func (s *MetaIntegrator) ID() string { return s.cfg.ID }

func (s *MetaIntegrator) Platform() string { return domain.PlatformMeta }

func (s *MetaIntegrator) Mode() domain.ConnectorMode { return domain.ConnectorModeLiveAPI }

func (s *MetaIntegrator) SupportedActions() []domain.ActionKind {
	return []domain.ActionKind{domain.ActionPause, domain.ActionBudgetDecrease}
}

func (s *MetaIntegrator) HealthCheck(ctx context.Context) domain.HealthReport {
	report := domain.HealthReport{Status: domain.HealthOK, CheckedAt: s.now().UTC()}

	if s.cfg.Setting(SettingAccessToken) == "" {
		report.Status = domain.HealthErr
		report.Message = "missing access_token"
		return report
	}

	if err := s.client.Me(ctx); err != nil {
		report.Status = domain.HealthFromError(err)
		report.Message = err.Error()
		return report
	}

	// sem app id/secret não há como consultar o debug_token; o /me já bastou
	info, err := s.client.DebugToken(ctx)
	if err != nil {
		logrus.WithField("connector_id", s.cfg.ID).WithError(err).Debug("debug_token indisponível")
		return report
	}

	if !info.IsValid {
		report.Status = domain.HealthErr
		report.Message = "access token is not valid"
		return report
	}

	if remaining, ok := info.ExpiresIn(s.now()); ok && remaining < tokenExpiryWarning {
		report.Status = domain.HealthWarn
		report.Message = "access token expires in " + metaclient.FormatDuration(int64(remaining.Seconds()))
	}

	return report
}

func (s *MetaIntegrator) SyncEntities(ctx context.Context) (iter.Seq2[domain.Entity, error], error) {
	now := s.now().UTC()

	entities := []domain.Entity{{
		EntityType: domain.EntityTypeAccount,
		EntityID:   s.accountID,
		AccountID:  s.accountID,
		Name:       "act_" + s.accountID,
		Status:     "ACTIVE",
		Active:     true,
		LastSeenAt: now,
	}}

	campaigns, err := s.client.ListCampaigns(ctx, s.accountID)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar campanhas")
	}
	for _, c := range campaigns {
		entities = append(entities, domain.Entity{
			EntityType: domain.EntityTypeCampaign,
			EntityID:   c.ID,
			ParentType: domain.EntityTypeAccount,
			ParentID:   s.accountID,
			AccountID:  s.accountID,
			Name:       c.Name,
			Status:     c.CurrentStatus(),
			Active:     true,
			Meta:       nodeMeta(c.Objective, c.DailyBudget),
			LastSeenAt: now,
		})
	}

	if s.ingests("adset") {
		adSets, err := s.client.ListAdSets(ctx, s.accountID)
		if err != nil {
			return nil, errors.Wrap(err, "erro ao listar conjuntos de anúncios")
		}
		for _, a := range adSets {
			entities = append(entities, domain.Entity{
				EntityType: domain.EntityTypeAdGroup,
				EntityID:   a.ID,
				ParentType: domain.EntityTypeCampaign,
				ParentID:   a.CampaignID,
				AccountID:  s.accountID,
				Name:       a.Name,
				Status:     a.CurrentStatus(),
				Active:     true,
				Meta:       nodeMeta("", a.DailyBudget),
				LastSeenAt: now,
			})
		}
	}

	logrus.WithFields(logrus.Fields{
		"connector_id": s.cfg.ID,
		"account_id":   s.accountID,
		"entities":     len(entities),
	}).Debug("Entidades do Meta sincronizadas")

	return connector.FromSlice(entities), nil
}

// FetchMetricsDaily busca insights diários em cada nível configurado.
// Resposta sem linhas significa "sem dados" e vira um iterador vazio.
func (s *MetaIntegrator) FetchMetricsDaily(ctx context.Context, dateRange connector.DateRange) (iter.Seq2[domain.MetricRecord, error], error) {
	records := make([]domain.MetricRecord, 0)

	for _, level := range s.levels {
		rows, err := s.client.GetInsights(ctx, s.accountID, metaclient.InsightParams{
			Level: level,
			Since: dateRange.Start.Format(time.DateOnly),
			Until: dateRange.End.Format(time.DateOnly),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "erro ao buscar insights no nível %s", level)
		}

		for _, row := range rows {
			record, ok := s.toRecord(level, row)
			if !ok {
				continue
			}
			records = append(records, record)
		}
	}

	if len(records) == 0 {
		return connector.Empty[domain.MetricRecord](), nil
	}
	return connector.FromSlice(records), nil
}

func (s *MetaIntegrator) toRecord(level string, row metadomain.Insight) (domain.MetricRecord, bool) {
	entityID := row.CampaignID
	if level == "adset" {
		entityID = row.AdsetID
	}
	if entityID == "" {
		return domain.MetricRecord{}, false
	}

	day, err := time.ParseInLocation(time.DateOnly, row.DateStart, s.location)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"connector_id": s.cfg.ID,
			"date_start":   row.DateStart,
		}).Warn("Linha de insight com data inválida ignorada")
		return domain.MetricRecord{}, false
	}

	actions := metadomain.ActionMap(row.Actions)
	actionValues := metadomain.ActionMap(row.ActionValues)

	return domain.MetricRecord{
		ConnectorID:     s.cfg.ID,
		Platform:        domain.PlatformMeta,
		AccountID:       s.accountID,
		EntityType:      levelEntityTypes[level],
		EntityID:        entityID,
		Date:            day,
		Granularity:     domain.GranularityDaily,
		Spend:           metadomain.OptionalFloat(row.Spend),
		Impressions:     metadomain.OptionalInt(row.Impressions),
		Clicks:          metadomain.OptionalInt(row.Clicks),
		Conversions:     domain.Float64Ptr(metadomain.SumActions(actions, s.conversionTypes)),
		ConversionValue: domain.Float64Ptr(metadomain.SumActions(actionValues, s.conversionTypes)),
		Frequency:       metadomain.OptionalFloat(row.Frequency),
		RawPayload: map[string]any{
			"level":         level,
			"actions":       actions,
			"action_values": actionValues,
		},
	}, true
}

func (s *MetaIntegrator) ApplyAction(ctx context.Context, proposal *domain.ActionProposal) (*connector.ActionResult, error) {
	if proposal.EntityType != domain.EntityTypeCampaign && proposal.EntityType != domain.EntityTypeAdGroup {
		return nil, domain.NewActionFailure("meta: unsupported entity type " + string(proposal.EntityType))
	}

	switch proposal.ActionKind {
	case domain.ActionPause:
		return s.update(ctx, proposal.EntityID, func(*metadomain.Node) (url.Values, error) {
			return url.Values{"status": {"PAUSED"}}, nil
		})
	case domain.ActionBudgetDecrease:
		pct := payloadFloat(proposal.Payload, "decrease_pct")
		if pct <= 0 || pct >= 100 {
			return nil, domain.NewActionFailure("meta: decrease_pct must be between 0 and 100")
		}
		return s.update(ctx, proposal.EntityID, func(node *metadomain.Node) (url.Values, error) {
			budget, err := strconv.ParseInt(node.DailyBudget, 10, 64)
			if err != nil || budget <= 0 {
				return nil, domain.NewActionFailure("meta: entity has no daily_budget")
			}
			reduced := int64(math.Floor(float64(budget) * (1 - pct/100)))
			return url.Values{"daily_budget": {strconv.FormatInt(reduced, 10)}}, nil
		})
	case domain.ActionCreativeRefresh:
		return nil, domain.NewActionFailure("meta: creative_refresh requires a manual creative swap")
	}

	return nil, domain.NewActionFailure("meta: action " + string(proposal.ActionKind) + " not supported")
}

// update lê o objeto, aplica a mudança e relê para compor o antes/depois
func (s *MetaIntegrator) update(ctx context.Context, id string, change func(*metadomain.Node) (url.Values, error)) (*connector.ActionResult, error) {
	before, err := s.client.GetNode(ctx, id)
	if err != nil {
		return nil, actionFailure(err)
	}

	fields, err := change(before)
	if err != nil {
		return nil, err
	}

	if err := s.client.UpdateNode(ctx, id, fields); err != nil {
		return nil, actionFailure(err)
	}

	after, err := s.client.GetNode(ctx, id)
	if err != nil {
		// a mudança já foi aplicada; o estado final é o pedido
		logrus.WithField("connector_id", s.cfg.ID).WithError(err).Warn("Falha ao reler o objeto após a ação")
		after = &metadomain.Node{ID: before.ID, Name: before.Name, Status: before.Status, DailyBudget: before.DailyBudget}
		if v := fields.Get("status"); v != "" {
			after.Status = v
		}
		if v := fields.Get("daily_budget"); v != "" {
			after.DailyBudget = v
		}
	}

	logrus.WithFields(logrus.Fields{
		"connector_id": s.cfg.ID,
		"entity_id":    id,
		"fields":       fields.Encode(),
	}).Info("Ação aplicada no Meta")

	return &connector.ActionResult{
		Before: nodeState(before),
		After:  nodeState(after),
	}, nil
}

func (s *MetaIntegrator) ingests(level string) bool {
	for _, l := range s.levels {
		if l == level {
			return true
		}
	}
	return false
}

func actionFailure(err error) error {
	return &domain.ActionFailure{Message: err.Error(), Err: err}
}

func nodeState(n *metadomain.Node) map[string]any {
	state := map[string]any{"id": n.ID, "status": n.Status}
	if n.DailyBudget != "" {
		state["daily_budget"] = n.DailyBudget
	}
	return state
}

func nodeMeta(objective, dailyBudget string) map[string]any {
	meta := map[string]any{}
	if objective != "" {
		meta["objective"] = objective
	}
	if dailyBudget != "" {
		meta["daily_budget"] = dailyBudget
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func payloadFloat(payload map[string]any, key string) float64 {
	switch v := payload[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

func splitSetting(value string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
