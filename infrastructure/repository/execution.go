package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/traffic-autopilot/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

const defaultExecutionLimit = 100

type executionRepository struct {
	conn postgres.Conn
}

func NewExecutionRepository(conn postgres.Conn) ExecutionRepository {
	return &executionRepository{
		conn: conn,
	}
}

func insertExecution(ctx context.Context, q postgres.Queryer, e *domain.Execution) error {
	before, err := marshalJSON(e.Before)
	if err != nil {
		return fmt.Errorf("erro ao serializar estado anterior: %w", err)
	}
	after, err := marshalJSON(e.After)
	if err != nil {
		return fmt.Errorf("erro ao serializar estado posterior: %w", err)
	}

	query, args, err := squirrel.StatementBuilder.
		Insert(executionsTable).
		Columns("id", "proposal_id", "connector_id", "before_json", "after_json", "result",
			"error_message", "executed_by", "executed_at").
		Values(e.ID, e.ProposalID, e.ConnectorID, before, after, string(e.Result),
			e.ErrorMessage, e.ExecutedBy, e.ExecutedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("proposta %s já foi executada: %w", e.ProposalID, domain.ErrInvalidProposalState)
		}
		return dbError("gravar execução", err)
	}

	return nil
}

func (r *executionRepository) List(ctx context.Context, filters domain.ExecutionFilters) ([]*domain.Execution, error) {
	limit := filters.Limit
	if limit == 0 {
		limit = defaultExecutionLimit
	}

	queryBuilder := squirrel.
		Select("id", "proposal_id", "connector_id", "before_json", "after_json", "result",
			"error_message", "executed_by", "executed_at").
		From(executionsTable).
		OrderBy("executed_at DESC", "id ASC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar)

	if filters.ProposalID != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"proposal_id": filters.ProposalID})
	}
	if filters.ConnectorID != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"connector_id": filters.ConnectorID})
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError("listar execuções", err)
	}
	defer rows.Close()

	executions := make([]*domain.Execution, 0)
	for rows.Next() {
		var (
			e      domain.Execution
			before []byte
			after  []byte
			result string
		)
		if err := rows.Scan(
			&e.ID,
			&e.ProposalID,
			&e.ConnectorID,
			&before,
			&after,
			&result,
			&e.ErrorMessage,
			&e.ExecutedBy,
			&e.ExecutedAt,
		); err != nil {
			return nil, err
		}

		e.Result = domain.ExecutionResult(result)
		if e.Before, err = unmarshalMap(before); err != nil {
			return nil, fmt.Errorf("erro ao ler execução %s: %w", e.ID, err)
		}
		if e.After, err = unmarshalMap(after); err != nil {
			return nil, fmt.Errorf("erro ao ler execução %s: %w", e.ID, err)
		}

		executions = append(executions, &e)
	}

	return executions, rows.Err()
}
