// Package connector define o contrato que toda plataforma de anúncios ou de
// vendas precisa cumprir para participar do ciclo de controle.
package connector

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/pkg/utils"
)

//go:generate mockgen -source=connector.go -destination=mocks/connector.go -package=mocks

// Connector é a fronteira com uma plataforma externa.
//
// HealthCheck nunca devolve erro: falhas viram um HealthReport com status err
// (ou warn, quando é limite de taxa). "Sem dados para a data" é um iterador
// vazio, não um erro. ApplyAction nunca é repetido pelo chamador.
type Connector interface {
	ID() string
	Platform() string
	Mode() domain.ConnectorMode
	SupportedActions() []domain.ActionKind
	HealthCheck(ctx context.Context) domain.HealthReport
	SyncEntities(ctx context.Context) (iter.Seq2[domain.Entity, error], error)
	FetchMetricsDaily(ctx context.Context, dateRange DateRange) (iter.Seq2[domain.MetricRecord, error], error)
	ApplyAction(ctx context.Context, proposal *domain.ActionProposal) (*ActionResult, error)
}

// IntradayFetcher é implementado pelos conectores que expõem métricas por hora
type IntradayFetcher interface {
	FetchMetricsIntraday(ctx context.Context, day time.Time) (iter.Seq2[domain.MetricRecord, error], error)
}

// MetricsCommitter é implementado pelos conectores que guardam um cursor de
// ingestão. O ciclo chama CommitMetricsDaily só depois de gravar as métricas
// devolvidas por FetchMetricsDaily para o mesmo intervalo.
type MetricsCommitter interface {
	CommitMetricsDaily(ctx context.Context, dateRange DateRange) error
}

// DateRange é um intervalo de dias, inclusivo nas duas pontas
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Days() []time.Time {
	return utils.DaysInRange(r.Start, r.End)
}

func (r DateRange) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.Start.Location())
	return !day.Before(r.Start) && !day.After(r.End)
}

// ActionResult guarda o estado observado antes e depois de aplicar uma ação
type ActionResult struct {
	Before map[string]any
	After  map[string]any
}

func Supports(c Connector, kind domain.ActionKind) bool {
	return slices.Contains(c.SupportedActions(), kind)
}

// FromSlice expõe uma lista já materializada como iterador
func FromSlice[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Empty é o iterador de "sem dados"
func Empty[T any]() iter.Seq2[T, error] {
	return func(func(T, error) bool) {}
}

// Collect consome o iterador inteiro, parando no primeiro erro
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	items := make([]T, 0)
	for item, err := range seq {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}
