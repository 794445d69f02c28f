package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/traffic-autopilot/infrastructure/database/postgres"
)

const cursorsTable = "connector_cursors"

// cursorRepository guarda marcadores incrementais por conector (ex.: o último
// dia já importado de uma fonte de vendas)
type cursorRepository struct {
	conn postgres.Conn
}

func NewCursorRepository(conn postgres.Conn) CursorRepository {
	return &cursorRepository{
		conn: conn,
	}
}

func (r *cursorRepository) Get(ctx context.Context, connectorID, key string) (string, error) {
	query, args, err := squirrel.
		Select("value").
		From(cursorsTable).
		Where(squirrel.Eq{"connector_id": connectorID, "key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("erro ao construir a query: %w", err)
	}

	var value string
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", dbError("buscar cursor", err)
	}

	return value, nil
}

func (r *cursorRepository) Set(ctx context.Context, connectorID, key, value string) error {
	query, args, err := squirrel.StatementBuilder.
		Insert(cursorsTable).
		Columns("connector_id", "key", "value").
		Values(connectorID, key, value).
		Suffix("ON CONFLICT (connector_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return dbError("gravar cursor", err)
	}

	return nil
}
