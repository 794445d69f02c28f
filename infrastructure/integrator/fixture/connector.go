// Package fixture implementa o modo import: as métricas e entidades vêm de um
// diretório com entities.json, metrics_daily.csv e metrics_intraday.csv, e as
// ações são apenas simuladas.
package fixture

import (
	"context"
	"fmt"
	"iter"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

const (
	SettingDir = "fixture_dir"
	// SettingAnchorToToday desloca as datas do arquivo para que o último dia
	// coincida com o fim do intervalo pedido
	SettingAnchorToToday = "anchor_to_today"
)

// Platforms são as plataformas servidas pelo conector de arquivos no modo import
var Platforms = []string{
	domain.PlatformGoogle,
	domain.PlatformNaver,
	domain.PlatformTikTok,
	domain.PlatformCoupang,
	domain.PlatformSmartstore,
	domain.PlatformCafe24Analytics,
	domain.PlatformDemo,
	domain.PlatformMeta,
}

type FixtureConnector struct {
	cfg      domain.ConnectorConfig
	dir      string
	anchor   bool
	location *time.Location
	now      func() time.Time
}

func NewFactory(cfg *config.Config) connector.Factory {
	location := cfg.App.Location()
	baseDir := cfg.Fixture.BaseDir

	return func(connCfg domain.ConnectorConfig) (connector.Connector, error) {
		return New(connCfg, baseDir, location), nil
	}
}

func New(cfg domain.ConnectorConfig, baseDir string, location *time.Location) *FixtureConnector {
	dir := cfg.Setting(SettingDir)
	if dir == "" {
		dir = filepath.Join(baseDir, cfg.Platform, "sample")
	}
	if location == nil {
		location = time.UTC
	}

	return &FixtureConnector{
		cfg:      cfg,
		dir:      dir,
		anchor:   strings.EqualFold(cfg.Setting(SettingAnchorToToday), "true"),
		location: location,
		now:      time.Now,
	}
}

func (c *FixtureConnector) ID() string { return c.cfg.ID }

func (c *FixtureConnector) Platform() string { return c.cfg.Platform }

func (c *FixtureConnector) Mode() domain.ConnectorMode { return domain.ConnectorModeImport }

func (c *FixtureConnector) SupportedActions() []domain.ActionKind {
	return []domain.ActionKind{domain.ActionPause, domain.ActionBudgetDecrease, domain.ActionCreativeRefresh}
}

func (c *FixtureConnector) HealthCheck(context.Context) domain.HealthReport {
	report := domain.HealthReport{Status: domain.HealthOK, CheckedAt: c.now().UTC()}

	info, err := os.Stat(c.dir)
	if err != nil || !info.IsDir() {
		report.Status = domain.HealthErr
		report.Message = "fixture dir not found: " + c.dir
		return report
	}

	if _, err := os.Stat(filepath.Join(c.dir, metricsDailyFile)); err != nil {
		report.Status = domain.HealthWarn
		report.Message = "no " + metricsDailyFile + " in " + c.dir
	}

	return report
}

func (c *FixtureConnector) SyncEntities(context.Context) (iter.Seq2[domain.Entity, error], error) {
	rows, err := loadEntities(c.dir)
	if err != nil {
		return nil, domain.NewTransportFailure(c.cfg.Platform, err)
	}

	now := c.now().UTC()
	entities := make([]domain.Entity, 0, len(rows))
	for _, row := range rows {
		if row.EntityID == "" || row.EntityType == "" {
			continue
		}
		entities = append(entities, domain.Entity{
			EntityType: domain.EntityType(row.EntityType),
			EntityID:   row.EntityID,
			ParentType: domain.EntityType(row.ParentType),
			ParentID:   row.ParentID,
			AccountID:  row.AccountID,
			Name:       row.Name,
			Status:     row.Status,
			Active:     true,
			Meta:       row.Meta,
			LastSeenAt: now,
		})
	}

	return connector.FromSlice(entities), nil
}

func (c *FixtureConnector) FetchMetricsDaily(_ context.Context, dateRange connector.DateRange) (iter.Seq2[domain.MetricRecord, error], error) {
	rows, err := loadMetrics(c.dir, metricsDailyFile, "date")
	if err != nil {
		return nil, domain.NewTransportFailure(c.cfg.Platform, err)
	}

	type dated struct {
		row  metricRow
		date time.Time
	}

	parsed := make([]dated, 0, len(rows))
	var latest time.Time
	for _, row := range rows {
		if !c.accepts(row) {
			continue
		}
		day, err := time.ParseInLocation(time.DateOnly, row.Bucket, c.location)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"connector_id": c.cfg.ID,
				"date":         row.Bucket,
			}).Warn("Linha do fixture com data inválida ignorada")
			continue
		}
		if day.After(latest) {
			latest = day
		}
		parsed = append(parsed, dated{row: row, date: day})
	}

	shift := 0
	if c.anchor && !latest.IsZero() {
		shift = int(math.Round(dateRange.End.Sub(latest).Hours() / 24))
	}

	records := make([]domain.MetricRecord, 0)
	for _, p := range parsed {
		day := p.date.AddDate(0, 0, shift)
		if !dateRange.Contains(day) {
			continue
		}
		records = append(records, c.toRecord(p.row, day, domain.GranularityDaily))
	}

	if len(records) == 0 {
		return connector.Empty[domain.MetricRecord](), nil
	}
	return connector.FromSlice(records), nil
}

// FetchMetricsIntraday devolve os baldes horários do dia pedido
func (c *FixtureConnector) FetchMetricsIntraday(_ context.Context, day time.Time) (iter.Seq2[domain.MetricRecord, error], error) {
	rows, err := loadMetrics(c.dir, metricsHourlyFile, "hour_ts")
	if err != nil {
		return nil, domain.NewTransportFailure(c.cfg.Platform, err)
	}

	day = domain.TruncateDay(day, c.location)
	records := make([]domain.MetricRecord, 0)
	for _, row := range rows {
		if !c.accepts(row) {
			continue
		}
		hour, err := parseHour(row.Bucket, c.location)
		if err != nil {
			logrus.WithField("connector_id", c.cfg.ID).WithError(err).Warn("Linha horária do fixture ignorada")
			continue
		}
		if !domain.TruncateDay(hour, c.location).Equal(day) {
			continue
		}
		records = append(records, c.toRecord(row, hour, domain.GranularityIntraday))
	}

	return connector.FromSlice(records), nil
}

// ApplyAction não chama plataforma nenhuma; o resultado é marcado como simulado
func (c *FixtureConnector) ApplyAction(_ context.Context, proposal *domain.ActionProposal) (*connector.ActionResult, error) {
	if !connector.Supports(c, proposal.ActionKind) {
		return nil, domain.NewActionFailure(fmt.Sprintf("%s: action %s not supported", c.cfg.Platform, proposal.ActionKind))
	}

	logrus.WithFields(logrus.Fields{
		"connector_id": c.cfg.ID,
		"entity_id":    proposal.EntityID,
		"action_kind":  proposal.ActionKind,
	}).Info("Ação simulada no modo import")

	return &connector.ActionResult{
		Before: map[string]any{"entity_id": proposal.EntityID},
		After: map[string]any{
			"simulated":   true,
			"platform":    c.cfg.Platform,
			"action_kind": string(proposal.ActionKind),
			"payload":     proposal.Payload,
		},
	}, nil
}

// accepts descarta linhas de outra plataforma quando a coluna vem preenchida
func (c *FixtureConnector) accepts(row metricRow) bool {
	if row.EntityID == "" || row.EntityType == "" {
		return false
	}
	return row.Platform == "" || strings.EqualFold(row.Platform, c.cfg.Platform)
}

func (c *FixtureConnector) toRecord(row metricRow, bucket time.Time, granularity domain.Granularity) domain.MetricRecord {
	return domain.MetricRecord{
		ConnectorID:     c.cfg.ID,
		Platform:        c.cfg.Platform,
		AccountID:       row.AccountID,
		EntityType:      domain.EntityType(row.EntityType),
		EntityID:        row.EntityID,
		Date:            bucket,
		Granularity:     granularity,
		Spend:           row.Spend,
		Impressions:     row.Impressions,
		Clicks:          row.Clicks,
		Conversions:     row.Conversions,
		ConversionValue: row.ConversionValue,
		RawPayload:      row.Extra,
	}
}
