// Package memory guarda o estado do autopilot em memória. Usado nos testes e
// com STORE_DRIVER=memory, quando não há Postgres disponível.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

type entityKey struct {
	connectorID string
	entityType  domain.EntityType
	entityID    string
}

type cursorKey struct {
	connectorID string
	key         string
}

type Store struct {
	mu         sync.Mutex
	connectors map[string]domain.ConnectorConfig
	entities   map[entityKey]domain.Entity
	metrics    map[domain.MetricKey]domain.MetricRecord
	rules      map[string]domain.Rule
	proposals  map[string]domain.ActionProposal
	executions []domain.Execution
	cursors    map[cursorKey]string
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		connectors: make(map[string]domain.ConnectorConfig),
		entities:   make(map[entityKey]domain.Entity),
		metrics:    make(map[domain.MetricKey]domain.MetricRecord),
		rules:      make(map[string]domain.Rule),
		proposals:  make(map[string]domain.ActionProposal),
		executions: make([]domain.Execution, 0, 64),
		cursors:    make(map[cursorKey]string),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// New devolve o conjunto de repositórios apoiado num Store novo
func New() (repository.Repositories, *Store) {
	s := NewStore()
	return s.Repositories(), s
}

func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Connectors: connectors{s},
		Entities:   entities{s},
		Metrics:    metrics{s},
		Rules:      rules{s},
		Proposals:  proposals{s},
		Executions: executions{s},
		Cursors:    cursors{s},
	}
}

type connectors struct{ *Store }

func (s connectors) List(_ context.Context, onlyEnabled bool) ([]*domain.ConnectorConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.ConnectorConfig, 0, len(s.connectors))
	for _, c := range s.connectors {
		if onlyEnabled && !c.Enabled {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s connectors) Get(_ context.Context, id string) (*domain.ConnectorConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.connectors[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s connectors) Save(_ context.Context, c *domain.ConnectorConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	saved := *c
	if existing, ok := s.connectors[c.ID]; ok {
		saved.CreatedAt = existing.CreatedAt
		saved.Health = existing.Health
		saved.HealthMessage = existing.HealthMessage
		saved.LastSyncAt = existing.LastSyncAt
		saved.LastError = existing.LastError
	} else {
		saved.CreatedAt = now
		if saved.Health == "" {
			saved.Health = domain.HealthOff
		}
	}
	saved.UpdatedAt = now
	s.connectors[c.ID] = saved
	return nil
}

func (s connectors) SetEnabled(_ context.Context, id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.connectors[id]
	if !ok {
		return domain.ErrConnectorNotFound
	}
	c.Enabled = enabled
	if !enabled {
		c.Health = domain.HealthOff
	}
	c.UpdatedAt = s.now()
	s.connectors[id] = c
	return nil
}

func (s connectors) RecordSync(_ context.Context, result domain.ConnectorSyncResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.connectors[result.ConnectorID]
	if !ok {
		return nil
	}
	c.Health = result.Health
	c.HealthMessage = result.HealthMessage
	if result.SyncedAt != nil {
		at := *result.SyncedAt
		c.LastSyncAt = &at
	}
	if result.Err != nil {
		msg := result.Err.Error()
		c.LastError = &msg
	} else {
		c.LastError = nil
	}
	c.UpdatedAt = s.now()
	s.connectors[c.ID] = c
	return nil
}

type entities struct{ *Store }

func (s entities) ReplaceSnapshot(_ context.Context, connectorID string, list []domain.Entity, seenAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, e := range list {
		e.ConnectorID = connectorID
		e.Active = true
		e.LastSeenAt = seenAt
		e.UpdatedAt = now
		s.entities[entityKey{connectorID, e.EntityType, e.EntityID}] = e
	}

	for key, e := range s.entities {
		if key.connectorID == connectorID && e.Active && e.LastSeenAt.Before(seenAt) {
			e.Active = false
			e.UpdatedAt = now
			s.entities[key] = e
		}
	}
	return nil
}

func (s entities) ListByConnector(_ context.Context, connectorID, platform string, onlyActive bool) ([]domain.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var scoped, legacy []domain.Entity
	for key, e := range s.entities {
		if onlyActive && !e.Active {
			continue
		}
		switch {
		case key.connectorID == connectorID:
			scoped = append(scoped, e)
		case key.connectorID == "" && e.Platform == platform:
			legacy = append(legacy, e)
		}
	}

	seen := make(map[domain.EntityKey]struct{}, len(scoped))
	for _, e := range scoped {
		seen[e.Key()] = struct{}{}
	}
	out := scoped
	for _, e := range legacy {
		if _, ok := seen[e.Key()]; !ok {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].EntityType != out[j].EntityType {
			return out[i].EntityType < out[j].EntityType
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out, nil
}

type metrics struct{ *Store }

func (s metrics) Upsert(ctx context.Context, record domain.MetricRecord) error {
	return s.UpsertBatch(ctx, []domain.MetricRecord{record})
}

func (s metrics) UpsertBatch(_ context.Context, records []domain.MetricRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, rec := range records {
		rec.UpdatedAt = now
		s.metrics[rec.Key()] = rec
	}
	return nil
}

func (s metrics) ListWindow(_ context.Context, filter domain.MetricFilter) ([]domain.MetricRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	granularity := filter.Granularity
	if granularity == "" {
		granularity = domain.GranularityDaily
	}
	start := filter.Start.Format(domain.BucketLayout)
	end := filter.End.Format(domain.BucketLayout)

	var scoped, legacy []domain.MetricRecord
	for key, rec := range s.metrics {
		if key.Granularity != granularity || key.Date < start || key.Date > end {
			continue
		}
		switch {
		case key.ConnectorID == filter.ConnectorID:
			scoped = append(scoped, rec)
		case key.ConnectorID == "" && rec.Platform == filter.Platform:
			legacy = append(legacy, rec)
		}
	}

	out := repository.MergeLegacyMetrics(filter.ConnectorID, scoped, legacy)
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntityID != out[j].EntityID {
			return out[i].EntityID < out[j].EntityID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (s metrics) LatestDate(_ context.Context, connectorID, platform string) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *time.Time
	for key, rec := range s.metrics {
		if key.Granularity != domain.GranularityDaily {
			continue
		}
		if key.ConnectorID != connectorID && !(key.ConnectorID == "" && rec.Platform == platform) {
			continue
		}
		if latest == nil || rec.Date.After(*latest) {
			d := rec.Date
			latest = &d
		}
	}
	return latest, nil
}

// Metrics devolve uma cópia de todas as métricas gravadas
func (s *Store) Metrics() []domain.MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.MetricRecord, 0, len(s.metrics))
	for _, rec := range s.metrics {
		out = append(out, rec)
	}
	return out
}

type rules struct{ *Store }

func (s rules) List(_ context.Context, onlyEnabled bool) ([]domain.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		if onlyEnabled && !r.Enabled {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s rules) Get(_ context.Context, id string) (*domain.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s rules) Save(_ context.Context, rule *domain.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	saved := *rule
	if existing, ok := s.rules[rule.ID]; ok {
		saved.CreatedAt = existing.CreatedAt
	} else {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now
	s.rules[rule.ID] = saved
	return nil
}

func (s rules) SetEnabled(_ context.Context, id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[id]
	if !ok {
		return domain.ErrRuleNotFound
	}
	r.Enabled = enabled
	r.UpdatedAt = s.now()
	s.rules[id] = r
	return nil
}

type proposals struct{ *Store }

func (s proposals) CreateIfAbsent(_ context.Context, p *domain.ActionProposal) (*domain.ActionProposal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := p.DedupeKey()
	for _, existing := range s.proposals {
		if existing.Status.IsOpen() && existing.DedupeKey() == key {
			existing := existing
			return &existing, false, nil
		}
	}

	if _, ok := s.proposals[p.ID]; ok {
		return nil, false, fmt.Errorf("proposta %s já existe", p.ID)
	}

	created := *p
	s.proposals[p.ID] = created
	return &created, true, nil
}

func (s proposals) Get(_ context.Context, id string) (*domain.ActionProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s proposals) ListByStatus(_ context.Context, statuses []domain.ProposalStatus, limit uint64) ([]*domain.ActionProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[domain.ProposalStatus]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}

	out := make([]*domain.ActionProposal, 0)
	for _, p := range s.proposals {
		if len(wanted) > 0 && !wanted[p.Status] {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s proposals) Transition(_ context.Context, id string, from, to domain.ProposalStatus, update domain.ProposalUpdate) (*domain.ActionProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transition(id, from, to, update)
}

func (s proposals) transition(id string, from, to domain.ProposalStatus, update domain.ProposalUpdate) (*domain.ActionProposal, error) {
	if !from.CanTransitionTo(to) {
		return nil, &domain.InvalidStateError{ProposalID: id, Current: from, Target: to}
	}

	p, ok := s.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	if p.Status != from {
		return nil, &domain.InvalidStateError{ProposalID: id, Current: p.Status, Target: to}
	}

	p.Status = to
	if update.DecidedAt != nil {
		at := *update.DecidedAt
		p.DecidedAt = &at
		p.DecidedBy = update.DecidedBy
	}
	if update.ExecutedAt != nil {
		at := *update.ExecutedAt
		p.ExecutedAt = &at
	}
	if update.Error != "" {
		p.Error = update.Error
	}
	s.proposals[id] = p
	return &p, nil
}

func (s proposals) Claim(_ context.Context, id string, at time.Time) (*domain.ActionProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	if p.Status != domain.ProposalApproved || p.ClaimedAt != nil {
		return nil, repository.ClaimError(&p)
	}
	p.ClaimedAt = &at
	s.proposals[id] = p
	return &p, nil
}

func (s proposals) Complete(_ context.Context, id string, execution *domain.Execution) (*domain.ActionProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.executions = append(s.executions, *execution)

	target := domain.ProposalExecuted
	if execution.Result == domain.ExecutionFailure {
		target = domain.ProposalFailed
	}
	executedAt := execution.ExecutedAt
	return s.transition(id, domain.ProposalApproved, target, domain.ProposalUpdate{
		ExecutedAt: &executedAt,
		Error:      execution.ErrorMessage,
	})
}

func (s proposals) ListStaleClaims(_ context.Context, claimedBefore time.Time) ([]*domain.ActionProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.ActionProposal, 0)
	for _, p := range s.proposals {
		if p.Status != domain.ProposalApproved || p.ClaimedAt == nil || !p.ClaimedAt.Before(claimedBefore) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimedAt.Before(*out[j].ClaimedAt) })
	return out, nil
}

type executions struct{ *Store }

func (s executions) List(_ context.Context, filters domain.ExecutionFilters) ([]*domain.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Execution, 0)
	for i := len(s.executions) - 1; i >= 0; i-- {
		e := s.executions[i]
		if filters.ProposalID != "" && e.ProposalID != filters.ProposalID {
			continue
		}
		if filters.ConnectorID != "" && e.ConnectorID != filters.ConnectorID {
			continue
		}
		out = append(out, &e)
		if filters.Limit > 0 && uint64(len(out)) >= filters.Limit {
			break
		}
	}
	return out, nil
}

type cursors struct{ *Store }

func (s cursors) Get(_ context.Context, connectorID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[cursorKey{connectorID, key}], nil
}

func (s cursors) Set(_ context.Context, connectorID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[cursorKey{connectorID, key}] = value
	return nil
}
