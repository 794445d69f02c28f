package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/traffic-autopilot/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

const connectorsTable = "connectors"

var connectorColumns = []string{
	"id", "platform", "display_name", "mode", "enabled", "config",
	"health", "health_message", "last_sync_at", "last_error", "created_at", "updated_at",
}

type connectorRepository struct {
	conn postgres.Conn
}

func NewConnectorRepository(conn postgres.Conn) ConnectorRepository {
	return &connectorRepository{
		conn: conn,
	}
}

func (r *connectorRepository) List(ctx context.Context, onlyEnabled bool) ([]*domain.ConnectorConfig, error) {
	queryBuilder := squirrel.
		Select(connectorColumns...).
		From(connectorsTable).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if onlyEnabled {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"enabled": true})
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("listar conectores", err)
	}
	defer rows.Close()

	connectors := make([]*domain.ConnectorConfig, 0)
	for rows.Next() {
		c, err := scanConnector(rows)
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, c)
	}

	return connectors, rows.Err()
}

func (r *connectorRepository) Get(ctx context.Context, id string) (*domain.ConnectorConfig, error) {
	query, args, err := squirrel.
		Select(connectorColumns...).
		From(connectorsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	c, err := scanConnector(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return c, nil
}

func (r *connectorRepository) Save(ctx context.Context, c *domain.ConnectorConfig) error {
	cfg, err := marshalJSON(c.Config)
	if err != nil {
		return fmt.Errorf("erro ao serializar config do conector: %w", err)
	}
	if cfg == nil {
		cfg = []byte("{}")
	}

	health := c.Health
	if health == "" {
		health = domain.HealthOff
	}

	query, args, err := squirrel.StatementBuilder.
		Insert(connectorsTable).
		Columns("id", "platform", "display_name", "mode", "enabled", "config", "health", "health_message").
		Values(c.ID, c.Platform, c.DisplayName, string(c.Mode), c.Enabled, cfg, string(health), c.HealthMessage).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			platform = EXCLUDED.platform,
			display_name = EXCLUDED.display_name,
			mode = EXCLUDED.mode,
			enabled = EXCLUDED.enabled,
			config = EXCLUDED.config,
			updated_at = NOW()`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return dbError("salvar conector", err)
	}

	return nil
}

func (r *connectorRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	update := squirrel.
		Update(connectorsTable).
		Set("enabled", enabled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	// conector desligado fica com saúde off até a próxima verificação
	if !enabled {
		update = update.Set("health", string(domain.HealthOff))
	}

	query, args, err := update.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return dbError("atualizar conector", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrConnectorNotFound
	}

	return nil
}

func (r *connectorRepository) RecordSync(ctx context.Context, result domain.ConnectorSyncResult) error {
	update := squirrel.
		Update(connectorsTable).
		Set("health", string(result.Health)).
		Set("health_message", result.HealthMessage).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": result.ConnectorID})

	if result.SyncedAt != nil {
		update = update.Set("last_sync_at", *result.SyncedAt)
	}

	if result.Err != nil {
		update = update.Set("last_error", result.Err.Error())
	} else {
		update = update.Set("last_error", nil)
	}

	query, args, err := update.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return dbError("registrar sincronização", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnector(row rowScanner) (*domain.ConnectorConfig, error) {
	var (
		c          domain.ConnectorConfig
		mode       string
		health     string
		cfg        []byte
		lastSyncAt sql.NullTime
		lastError  sql.NullString
	)

	if err := row.Scan(
		&c.ID,
		&c.Platform,
		&c.DisplayName,
		&mode,
		&c.Enabled,
		&cfg,
		&health,
		&c.HealthMessage,
		&lastSyncAt,
		&lastError,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	c.Mode = domain.ConnectorMode(mode)
	c.Health = domain.HealthStatus(health)
	c.LastSyncAt = timePtr(lastSyncAt)
	if lastError.Valid {
		c.LastError = &lastError.String
	}

	if len(cfg) > 0 {
		c.Config = make(map[string]string)
		if err := json.Unmarshal(cfg, &c.Config); err != nil {
			return nil, fmt.Errorf("erro ao ler config do conector %s: %w", c.ID, err)
		}
	}

	return &c, nil
}
