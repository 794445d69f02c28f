package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/traffic-autopilot/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

const rulesTable = "rules"

var ruleColumns = []string{"id", "name", "kind", "enabled", "params", "target_scope", "created_at", "updated_at"}

type ruleRepository struct {
	conn postgres.Conn
}

func NewRuleRepository(conn postgres.Conn) RuleRepository {
	return &ruleRepository{
		conn: conn,
	}
}

func (r *ruleRepository) List(ctx context.Context, onlyEnabled bool) ([]domain.Rule, error) {
	queryBuilder := squirrel.
		Select(ruleColumns...).
		From(rulesTable).
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
		return nil, dbError("listar regras", err)
	}
	defer rows.Close()

	rules := make([]domain.Rule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}

	return rules, rows.Err()
}

func (r *ruleRepository) Get(ctx context.Context, id string) (*domain.Rule, error) {
	query, args, err := squirrel.
		Select(ruleColumns...).
		From(rulesTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rule, err := scanRule(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return rule, nil
}

func (r *ruleRepository) Save(ctx context.Context, rule *domain.Rule) error {
	params, err := marshalJSON(rule.Params)
	if err != nil {
		return fmt.Errorf("erro ao serializar parâmetros da regra: %w", err)
	}
	if params == nil {
		params = []byte("{}")
	}

	scope, err := json.Marshal(rule.Scope)
	if err != nil {
		return fmt.Errorf("erro ao serializar escopo da regra: %w", err)
	}

	query, args, err := squirrel.StatementBuilder.
		Insert(rulesTable).
		Columns("id", "name", "kind", "enabled", "params", "target_scope").
		Values(rule.ID, rule.Name, string(rule.Kind), rule.Enabled, params, scope).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			enabled = EXCLUDED.enabled,
			params = EXCLUDED.params,
			target_scope = EXCLUDED.target_scope,
			updated_at = NOW()`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return dbError("salvar regra", err)
	}

	return nil
}

func (r *ruleRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	query, args, err := squirrel.
		Update(rulesTable).
		Set("enabled", enabled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return dbError("atualizar regra", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrRuleNotFound
	}

	return nil
}

func scanRule(row rowScanner) (*domain.Rule, error) {
	var (
		rule   domain.Rule
		kind   string
		params []byte
		scope  []byte
	)

	if err := row.Scan(
		&rule.ID,
		&rule.Name,
		&kind,
		&rule.Enabled,
		&params,
		&scope,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rule.Kind = domain.RuleKind(kind)

	var err error
	if rule.Params, err = unmarshalMap(params); err != nil {
		return nil, fmt.Errorf("erro ao ler parâmetros da regra %s: %w", rule.ID, err)
	}

	if len(scope) > 0 {
		if err := json.Unmarshal(scope, &rule.Scope); err != nil {
			return nil, fmt.Errorf("erro ao ler escopo da regra %s: %w", rule.ID, err)
		}
	}

	return &rule, nil
}
