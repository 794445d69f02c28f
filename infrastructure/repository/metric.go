package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/traffic-autopilot/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

const (
	metricsTable    = "metric_records"
	metricBatchSize = 400
)

type metricRepository struct {
	conn postgres.Conn
}

func NewMetricRepository(conn postgres.Conn) MetricRepository {
	return &metricRepository{
		conn: conn,
	}
}

func (r *metricRepository) Upsert(ctx context.Context, record domain.MetricRecord) error {
	return r.upsert(ctx, r.conn, []domain.MetricRecord{record})
}

// UpsertBatch grava todas as linhas numa única transação
func (r *metricRepository) UpsertBatch(ctx context.Context, records []domain.MetricRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(records); start += metricBatchSize {
			end := min(start+metricBatchSize, len(records))
			if err := r.upsert(ctx, tx, records[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *metricRepository) upsert(ctx context.Context, q postgres.Queryer, records []domain.MetricRecord) error {
	insert := squirrel.StatementBuilder.
		Insert(metricsTable).
		Columns("connector_id", "platform", "account_id", "entity_type", "entity_id", "date", "granularity",
			"spend", "impressions", "clicks", "conversions", "conversion_value", "frequency", "raw_payload")

	// a mesma chave duas vezes no mesmo INSERT quebra o ON CONFLICT; a última vence
	index := make(map[domain.MetricKey]int, len(records))
	unique := make([]domain.MetricRecord, 0, len(records))
	for _, rec := range records {
		if i, ok := index[rec.Key()]; ok {
			unique[i] = rec
			continue
		}
		index[rec.Key()] = len(unique)
		unique = append(unique, rec)
	}

	for _, rec := range unique {
		raw, err := marshalJSON(rec.RawPayload)
		if err != nil {
			return fmt.Errorf("erro ao serializar payload da métrica %s: %w", rec.EntityID, err)
		}
		insert = insert.Values(
			rec.ConnectorID, rec.Platform, rec.AccountID, string(rec.EntityType), rec.EntityID,
			wallClock(rec.Date), string(rec.Granularity),
			nullFloat(rec.Spend), nullInt(rec.Impressions), nullInt(rec.Clicks),
			nullFloat(rec.Conversions), nullFloat(rec.ConversionValue), nullFloat(rec.Frequency), raw,
		)
	}

	query, args, err := insert.
		Suffix(`ON CONFLICT (connector_id, entity_id, date, granularity) DO UPDATE SET
			platform = EXCLUDED.platform,
			account_id = EXCLUDED.account_id,
			entity_type = EXCLUDED.entity_type,
			spend = EXCLUDED.spend,
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			conversions = EXCLUDED.conversions,
			conversion_value = EXCLUDED.conversion_value,
			frequency = EXCLUDED.frequency,
			raw_payload = EXCLUDED.raw_payload,
			updated_at = NOW()`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return dbError("salvar métricas", err)
	}

	return nil
}

func (r *metricRepository) ListWindow(ctx context.Context, filter domain.MetricFilter) ([]domain.MetricRecord, error) {
	granularity := filter.Granularity
	if granularity == "" {
		granularity = domain.GranularityDaily
	}

	query, args, err := squirrel.
		Select("connector_id", "platform", "account_id", "entity_type", "entity_id", "date", "granularity",
			"spend", "impressions", "clicks", "conversions", "conversion_value", "frequency", "raw_payload", "updated_at").
		From(metricsTable).
		Where(squirrel.Or{
			squirrel.Eq{"connector_id": filter.ConnectorID},
			squirrel.And{squirrel.Eq{"connector_id": ""}, squirrel.Eq{"platform": filter.Platform}},
		}).
		Where(squirrel.Eq{"granularity": string(granularity)}).
		Where(squirrel.GtOrEq{"date": wallClock(filter.Start)}).
		Where(squirrel.LtOrEq{"date": wallClock(filter.End)}).
		OrderBy("entity_id ASC", "date ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("listar métricas", err)
	}
	defer rows.Close()

	var scoped, legacy []domain.MetricRecord
	for rows.Next() {
		rec, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		if rec.ConnectorID == "" {
			legacy = append(legacy, rec)
		} else {
			scoped = append(scoped, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return MergeLegacyMetrics(filter.ConnectorID, scoped, legacy), nil
}

func (r *metricRepository) LatestDate(ctx context.Context, connectorID, platform string) (*time.Time, error) {
	query, args, err := squirrel.
		Select("MAX(date)").
		From(metricsTable).
		Where(squirrel.Or{
			squirrel.Eq{"connector_id": connectorID},
			squirrel.And{squirrel.Eq{"connector_id": ""}, squirrel.Eq{"platform": platform}},
		}).
		Where(squirrel.Eq{"granularity": string(domain.GranularityDaily)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var latest sql.NullTime
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&latest); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, dbError("buscar última data de métricas", err)
	}

	return timePtr(latest), nil
}

// MergeLegacyMetrics junta linhas da instância e linhas legadas, preferindo a
// da instância quando as duas cobrem a mesma entidade no mesmo balde. As
// linhas legadas passam a carregar o connector_id de quem leu.
func MergeLegacyMetrics(connectorID string, scoped, legacy []domain.MetricRecord) []domain.MetricRecord {
	if len(legacy) == 0 {
		return scoped
	}

	seen := make(map[domain.MetricKey]struct{}, len(scoped))
	for _, rec := range scoped {
		seen[rec.Key()] = struct{}{}
	}

	out := scoped
	for _, rec := range legacy {
		rec.ConnectorID = connectorID
		if _, ok := seen[rec.Key()]; ok {
			continue
		}
		seen[rec.Key()] = struct{}{}
		out = append(out, rec)
	}

	return out
}

func scanMetric(row rowScanner) (domain.MetricRecord, error) {
	var (
		rec             domain.MetricRecord
		entityType      string
		granularity     string
		spend           sql.NullFloat64
		impressions     sql.NullInt64
		clicks          sql.NullInt64
		conversions     sql.NullFloat64
		conversionValue sql.NullFloat64
		frequency       sql.NullFloat64
		raw             []byte
	)

	if err := row.Scan(
		&rec.ConnectorID,
		&rec.Platform,
		&rec.AccountID,
		&entityType,
		&rec.EntityID,
		&rec.Date,
		&granularity,
		&spend,
		&impressions,
		&clicks,
		&conversions,
		&conversionValue,
		&frequency,
		&raw,
		&rec.UpdatedAt,
	); err != nil {
		return rec, err
	}

	rec.EntityType = domain.EntityType(entityType)
	rec.Granularity = domain.Granularity(granularity)
	rec.Spend = floatPtr(spend)
	rec.Impressions = intPtr(impressions)
	rec.Clicks = intPtr(clicks)
	rec.Conversions = floatPtr(conversions)
	rec.ConversionValue = floatPtr(conversionValue)
	rec.Frequency = floatPtr(frequency)

	payload, err := unmarshalMap(raw)
	if err != nil {
		return rec, fmt.Errorf("erro ao ler payload da métrica %s: %w", rec.EntityID, err)
	}
	rec.RawPayload = payload

	return rec, nil
}

// wallClock descarta o fuso mantendo o horário de parede, que é o que a coluna
// TIMESTAMP guarda
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
