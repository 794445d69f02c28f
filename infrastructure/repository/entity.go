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
	entitiesTable = "entities"
	// lote de linhas por INSERT para não estourar o limite de parâmetros
	entityBatchSize = 500
)

type entityRepository struct {
	conn postgres.Conn
}

func NewEntityRepository(conn postgres.Conn) EntityRepository {
	return &entityRepository{
		conn: conn,
	}
}

func (r *entityRepository) ReplaceSnapshot(ctx context.Context, connectorID string, entities []domain.Entity, seenAt time.Time) error {
	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(entities); start += entityBatchSize {
			end := min(start+entityBatchSize, len(entities))
			if err := r.upsertBatch(ctx, tx, connectorID, entities[start:end], seenAt); err != nil {
				return err
			}
		}

		query, args, err := squirrel.
			Update(entitiesTable).
			Set("active", false).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"connector_id": connectorID, "active": true}).
			Where(squirrel.Lt{"last_seen_at": seenAt}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return dbError("desativar entidades ausentes", err)
		}

		return nil
	})
}

func (r *entityRepository) upsertBatch(ctx context.Context, q postgres.Queryer, connectorID string, entities []domain.Entity, seenAt time.Time) error {
	if len(entities) == 0 {
		return nil
	}

	insert := squirrel.StatementBuilder.
		Insert(entitiesTable).
		Columns("connector_id", "platform", "entity_type", "entity_id", "parent_type", "parent_id",
			"account_id", "name", "status", "active", "meta", "last_seen_at")

	for _, e := range entities {
		meta, err := marshalJSON(e.Meta)
		if err != nil {
			return fmt.Errorf("erro ao serializar meta da entidade %s: %w", e.EntityID, err)
		}
		insert = insert.Values(connectorID, e.Platform, string(e.EntityType), e.EntityID, string(e.ParentType),
			e.ParentID, e.AccountID, e.Name, e.Status, true, meta, seenAt)
	}

	query, args, err := insert.
		Suffix(`ON CONFLICT (connector_id, entity_type, entity_id) DO UPDATE SET
			platform = EXCLUDED.platform,
			parent_type = EXCLUDED.parent_type,
			parent_id = EXCLUDED.parent_id,
			account_id = EXCLUDED.account_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			active = TRUE,
			meta = EXCLUDED.meta,
			last_seen_at = EXCLUDED.last_seen_at,
			updated_at = NOW()`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return dbError("salvar entidades", err)
	}

	return nil
}

// ListByConnector inclui linhas legadas da mesma plataforma; quando a mesma
// entidade existe nas duas formas, a linha da instância prevalece.
func (r *entityRepository) ListByConnector(ctx context.Context, connectorID, platform string, onlyActive bool) ([]domain.Entity, error) {
	queryBuilder := squirrel.
		Select("connector_id", "platform", "entity_type", "entity_id", "parent_type", "parent_id",
			"account_id", "name", "status", "active", "meta", "last_seen_at", "updated_at").
		From(entitiesTable).
		Where(squirrel.Or{
			squirrel.Eq{"connector_id": connectorID},
			squirrel.And{squirrel.Eq{"connector_id": ""}, squirrel.Eq{"platform": platform}},
		}).
		OrderBy("entity_type ASC", "entity_id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if onlyActive {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"active": true})
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("listar entidades", err)
	}
	defer rows.Close()

	var scoped, legacy []domain.Entity
	for rows.Next() {
		var (
			e          domain.Entity
			entityType string
			parentType string
			meta       []byte
		)
		if err := rows.Scan(
			&e.ConnectorID,
			&e.Platform,
			&entityType,
			&e.EntityID,
			&parentType,
			&e.ParentID,
			&e.AccountID,
			&e.Name,
			&e.Status,
			&e.Active,
			&meta,
			&e.LastSeenAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		e.EntityType = domain.EntityType(entityType)
		e.ParentType = domain.EntityType(parentType)
		if e.Meta, err = unmarshalMap(meta); err != nil {
			return nil, fmt.Errorf("erro ao ler meta da entidade %s: %w", e.EntityID, err)
		}

		if e.ConnectorID == "" {
			legacy = append(legacy, e)
		} else {
			scoped = append(scoped, e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return mergeEntities(scoped, legacy), nil
}

func mergeEntities(scoped, legacy []domain.Entity) []domain.Entity {
	if len(legacy) == 0 {
		return scoped
	}

	seen := make(map[domain.EntityKey]struct{}, len(scoped))
	for _, e := range scoped {
		seen[e.Key()] = struct{}{}
	}

	out := scoped
	for _, e := range legacy {
		if _, ok := seen[e.Key()]; ok {
			continue
		}
		out = append(out, e)
	}

	return out
}
