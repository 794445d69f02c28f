package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/traffic-autopilot/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

const (
	proposalsTable  = "action_proposals"
	executionsTable = "executions"
)

var proposalColumns = []string{
	"id", "rule_id", "connector_id", "platform", "entity_type", "entity_id", "action_kind", "payload",
	"reason", "risk", "requires_approval", "status", "created_at", "decided_at", "decided_by",
	"claimed_at", "executed_at", "error",
}

var returningProposal = "RETURNING " + strings.Join(proposalColumns, ", ")

type proposalRepository struct {
	conn postgres.Conn
}

func NewProposalRepository(conn postgres.Conn) ProposalRepository {
	return &proposalRepository{
		conn: conn,
	}
}

func (r *proposalRepository) CreateIfAbsent(ctx context.Context, p *domain.ActionProposal) (*domain.ActionProposal, bool, error) {
	payload, err := marshalJSON(p.Payload)
	if err != nil {
		return nil, false, fmt.Errorf("erro ao serializar payload da proposta: %w", err)
	}

	query, args, err := squirrel.StatementBuilder.
		Insert(proposalsTable).
		Columns("id", "rule_id", "connector_id", "platform", "entity_type", "entity_id", "action_kind",
			"payload", "reason", "risk", "requires_approval", "status", "created_at").
		Values(p.ID, p.RuleID, p.ConnectorID, p.Platform, string(p.EntityType), p.EntityID, string(p.ActionKind),
			payload, p.Reason, string(p.Risk), p.RequiresApproval, string(p.Status), p.CreatedAt).
		Suffix("ON CONFLICT (rule_id, entity_id, action_kind) WHERE status IN ('proposed', 'approved') DO NOTHING " + returningProposal).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	// uma proposta aberta pode ser fechada entre o INSERT e a busca; nesse
	// caso tenta de novo uma vez
	for attempt := 0; attempt < 2; attempt++ {
		created, err := scanProposal(r.conn.QueryRowContext(ctx, query, args...))
		if err == nil {
			return created, true, nil
		}
		if err != sql.ErrNoRows {
			return nil, false, dbError("criar proposta", err)
		}

		existing, err := r.findOpen(ctx, p.DedupeKey())
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	return nil, false, fmt.Errorf("proposta %s em conflito com outra que não pôde ser lida", p.ID)
}

func (r *proposalRepository) findOpen(ctx context.Context, key domain.DedupeKey) (*domain.ActionProposal, error) {
	query, args, err := squirrel.
		Select(proposalColumns...).
		From(proposalsTable).
		Where(squirrel.Eq{
			"rule_id":     key.RuleID,
			"entity_id":   key.EntityID,
			"action_kind": string(key.ActionKind),
			"status":      statusStrings(domain.OpenProposalStatuses),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	p, err := scanProposal(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, dbError("buscar proposta aberta", err)
	}

	return p, nil
}

func (r *proposalRepository) Get(ctx context.Context, id string) (*domain.ActionProposal, error) {
	return r.get(ctx, r.conn, id)
}

func (r *proposalRepository) get(ctx context.Context, q postgres.Queryer, id string) (*domain.ActionProposal, error) {
	query, args, err := squirrel.
		Select(proposalColumns...).
		From(proposalsTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	p, err := scanProposal(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, dbError("buscar proposta", err)
	}

	return p, nil
}

func (r *proposalRepository) ListByStatus(ctx context.Context, statuses []domain.ProposalStatus, limit uint64) ([]*domain.ActionProposal, error) {
	queryBuilder := squirrel.
		Select(proposalColumns...).
		From(proposalsTable).
		OrderBy("created_at DESC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(statuses) > 0 {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"status": statusStrings(statuses)})
	}
	if limit > 0 {
		queryBuilder = queryBuilder.Limit(limit)
	}

	return r.list(ctx, queryBuilder, "listar propostas")
}

func (r *proposalRepository) ListStaleClaims(ctx context.Context, claimedBefore time.Time) ([]*domain.ActionProposal, error) {
	queryBuilder := squirrel.
		Select(proposalColumns...).
		From(proposalsTable).
		Where(squirrel.Eq{"status": string(domain.ProposalApproved)}).
		Where(squirrel.Lt{"claimed_at": claimedBefore}).
		OrderBy("claimed_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.list(ctx, queryBuilder, "listar reservas abandonadas")
}

func (r *proposalRepository) list(ctx context.Context, queryBuilder squirrel.SelectBuilder, action string) ([]*domain.ActionProposal, error) {
	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(action, err)
	}
	defer rows.Close()

	proposals := make([]*domain.ActionProposal, 0)
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}

	return proposals, rows.Err()
}

func (r *proposalRepository) Transition(ctx context.Context, id string, from, to domain.ProposalStatus, update domain.ProposalUpdate) (*domain.ActionProposal, error) {
	if !from.CanTransitionTo(to) {
		return nil, &domain.InvalidStateError{ProposalID: id, Current: from, Target: to}
	}

	return r.transition(ctx, r.conn, id, from, to, update)
}

func (r *proposalRepository) transition(ctx context.Context, q postgres.Queryer, id string, from, to domain.ProposalStatus, update domain.ProposalUpdate) (*domain.ActionProposal, error) {
	builder := squirrel.
		Update(proposalsTable).
		Set("status", string(to)).
		Where(squirrel.Eq{"id": id, "status": string(from)})

	if update.DecidedAt != nil {
		builder = builder.Set("decided_at", *update.DecidedAt).Set("decided_by", update.DecidedBy)
	}
	if update.ExecutedAt != nil {
		builder = builder.Set("executed_at", *update.ExecutedAt)
	}
	if update.Error != "" {
		builder = builder.Set("error", update.Error)
	}

	query, args, err := builder.Suffix(returningProposal).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	p, err := scanProposal(q.QueryRowContext(ctx, query, args...))
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return nil, dbError("atualizar proposta", err)
	}

	current, err := r.get(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrProposalNotFound
	}

	return nil, &domain.InvalidStateError{ProposalID: id, Current: current.Status, Target: to}
}

func (r *proposalRepository) Claim(ctx context.Context, id string, at time.Time) (*domain.ActionProposal, error) {
	query, args, err := squirrel.
		Update(proposalsTable).
		Set("claimed_at", at).
		Where(squirrel.Eq{"id": id, "status": string(domain.ProposalApproved), "claimed_at": nil}).
		Suffix(returningProposal).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	p, err := scanProposal(r.conn.QueryRowContext(ctx, query, args...))
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return nil, dbError("reservar proposta", err)
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrProposalNotFound
	}

	return nil, ClaimError(current)
}

func (r *proposalRepository) Complete(ctx context.Context, id string, execution *domain.Execution) (*domain.ActionProposal, error) {
	target := domain.ProposalExecuted
	if execution.Result == domain.ExecutionFailure {
		target = domain.ProposalFailed
	}

	var (
		updated *domain.ActionProposal
		missed  error
	)

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if err := insertExecution(ctx, tx, execution); err != nil {
			return err
		}

		executedAt := execution.ExecutedAt
		p, err := r.transition(ctx, tx, id, domain.ProposalApproved, target, domain.ProposalUpdate{
			ExecutedAt: &executedAt,
			Error:      execution.ErrorMessage,
		})
		if err != nil {
			// o registro de execução é mantido mesmo quando a proposta já saiu de approved
			if errors.Is(err, domain.ErrInvalidProposalState) {
				missed = err
				return nil
			}
			return err
		}

		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if missed != nil {
		return nil, missed
	}

	return updated, nil
}

// ClaimError explica por que uma proposta não pôde ser reservada
func ClaimError(p *domain.ActionProposal) error {
	if p.Status != domain.ProposalApproved {
		return &domain.InvalidStateError{ProposalID: p.ID, Current: p.Status, Target: domain.ProposalExecuted}
	}
	return fmt.Errorf("%w: proposal %s already claimed", domain.ErrInvalidProposalState, p.ID)
}

func statusStrings(statuses []domain.ProposalStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanProposal(row rowScanner) (*domain.ActionProposal, error) {
	var (
		p          domain.ActionProposal
		entityType string
		actionKind string
		risk       string
		status     string
		payload    []byte
		decidedAt  sql.NullTime
		claimedAt  sql.NullTime
		executedAt sql.NullTime
	)

	if err := row.Scan(
		&p.ID,
		&p.RuleID,
		&p.ConnectorID,
		&p.Platform,
		&entityType,
		&p.EntityID,
		&actionKind,
		&payload,
		&p.Reason,
		&risk,
		&p.RequiresApproval,
		&status,
		&p.CreatedAt,
		&decidedAt,
		&p.DecidedBy,
		&claimedAt,
		&executedAt,
		&p.Error,
	); err != nil {
		return nil, err
	}

	p.EntityType = domain.EntityType(entityType)
	p.ActionKind = domain.ActionKind(actionKind)
	p.Risk = domain.RiskLevel(risk)
	p.Status = domain.ProposalStatus(status)
	p.DecidedAt = timePtr(decidedAt)
	p.ClaimedAt = timePtr(claimedAt)
	p.ExecutedAt = timePtr(executedAt)

	var err error
	if p.Payload, err = unmarshalMap(payload); err != nil {
		return nil, fmt.Errorf("erro ao ler payload da proposta %s: %w", p.ID, err)
	}

	return &p, nil
}
