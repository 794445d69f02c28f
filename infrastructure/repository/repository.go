package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"github.com/vfg2006/traffic-autopilot/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

//go:generate mockgen -source=repository.go -destination=mocks/repository.go -package=mocks

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ConnectorRepository interface {
	List(ctx context.Context, onlyEnabled bool) ([]*domain.ConnectorConfig, error)
	Get(ctx context.Context, id string) (*domain.ConnectorConfig, error)
	Save(ctx context.Context, connector *domain.ConnectorConfig) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
	RecordSync(ctx context.Context, result domain.ConnectorSyncResult) error
}

type EntityRepository interface {
	// ReplaceSnapshot grava as entidades vistas e desativa as que não apareceram
	ReplaceSnapshot(ctx context.Context, connectorID string, entities []domain.Entity, seenAt time.Time) error
	ListByConnector(ctx context.Context, connectorID, platform string, onlyActive bool) ([]domain.Entity, error)
}

type MetricRepository interface {
	Upsert(ctx context.Context, record domain.MetricRecord) error
	UpsertBatch(ctx context.Context, records []domain.MetricRecord) error
	ListWindow(ctx context.Context, filter domain.MetricFilter) ([]domain.MetricRecord, error)
	LatestDate(ctx context.Context, connectorID, platform string) (*time.Time, error)
}

type RuleRepository interface {
	List(ctx context.Context, onlyEnabled bool) ([]domain.Rule, error)
	Get(ctx context.Context, id string) (*domain.Rule, error)
	Save(ctx context.Context, rule *domain.Rule) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

type ProposalRepository interface {
	// CreateIfAbsent devolve a proposta aberta equivalente, se existir, e false
	CreateIfAbsent(ctx context.Context, proposal *domain.ActionProposal) (*domain.ActionProposal, bool, error)
	Get(ctx context.Context, id string) (*domain.ActionProposal, error)
	ListByStatus(ctx context.Context, statuses []domain.ProposalStatus, limit uint64) ([]*domain.ActionProposal, error)
	// Transition só altera a proposta se o status atual for from
	Transition(ctx context.Context, id string, from, to domain.ProposalStatus, update domain.ProposalUpdate) (*domain.ActionProposal, error)
	// Claim reserva uma proposta aprovada para execução; só um chamador vence
	Claim(ctx context.Context, id string, at time.Time) (*domain.ActionProposal, error)
	// Complete encerra uma proposta reservada e grava o registro de execução
	Complete(ctx context.Context, id string, execution *domain.Execution) (*domain.ActionProposal, error)
	// ListStaleClaims lista propostas aprovadas reservadas antes de claimedBefore
	// e que nunca foram encerradas
	ListStaleClaims(ctx context.Context, claimedBefore time.Time) ([]*domain.ActionProposal, error)
}

type ExecutionRepository interface {
	List(ctx context.Context, filters domain.ExecutionFilters) ([]*domain.Execution, error)
}

type CursorRepository interface {
	Get(ctx context.Context, connectorID, key string) (string, error)
	Set(ctx context.Context, connectorID, key, value string) error
}

// Repositories agrupa as implementações usadas pelos casos de uso
type Repositories struct {
	Connectors ConnectorRepository
	Entities   EntityRepository
	Metrics    MetricRepository
	Rules      RuleRepository
	Proposals  ProposalRepository
	Executions ExecutionRepository
	Cursors    CursorRepository
}

func NewPostgresRepositories(conn *postgres.Connection) Repositories {
	return Repositories{
		Connectors: NewConnectorRepository(conn),
		Entities:   NewEntityRepository(conn),
		Metrics:    NewMetricRepository(conn),
		Rules:      NewRuleRepository(conn),
		Proposals:  NewProposalRepository(conn),
		Executions: NewExecutionRepository(conn),
		Cursors:    NewCursorRepository(conn),
	}
}

func dbError(action string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("erro no banco de dados ao %s: %w (código: %s)", action, pqErr, pqErr.Code)
	}
	return fmt.Errorf("erro ao %s: %w", action, err)
}

func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalMap(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

func nullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}
