// Package observability concentra as métricas Prometheus do autopilot,
// expostas em /metrics.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_cycles_total",
		Help: "Ciclos do control loop por modo de execução e resultado",
	}, []string{"mode", "result"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "autopilot_cycle_duration_seconds",
		Help:    "Duração de um ciclo completo",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	connectorSyncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_connector_sync_total",
		Help: "Processamentos de conector por plataforma e saúde resultante",
	}, []string{"platform", "health"})

	metricRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_metric_records_upserted_total",
		Help: "Linhas de métricas gravadas por plataforma e granularidade",
	}, []string{"platform", "granularity"})

	proposalsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_proposals_created_total",
		Help: "Propostas criadas por regra e tipo de ação",
	}, []string{"rule_id", "action_kind"})

	proposalDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_proposal_decisions_total",
		Help: "Decisões sobre propostas, incluindo aprovações automáticas",
	}, []string{"decision", "actor"})

	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autopilot_executions_total",
		Help: "Execuções de ações por plataforma e resultado",
	}, []string{"platform", "result"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "autopilot_http_request_duration_seconds",
		Help:    "Duração das requisições HTTP por método e classe de status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

func ObserveCycle(mode, result string, took time.Duration) {
	cyclesTotal.WithLabelValues(mode, result).Inc()
	cycleDuration.Observe(took.Seconds())
}

func ObserveConnectorSync(platform, health string) {
	connectorSyncTotal.WithLabelValues(platform, health).Inc()
}

func ObserveMetricRecords(platform, granularity string, n int) {
	if n <= 0 {
		return
	}
	metricRecordsTotal.WithLabelValues(platform, granularity).Add(float64(n))
}

func ObserveProposalCreated(ruleID, actionKind string) {
	proposalsCreatedTotal.WithLabelValues(ruleID, actionKind).Inc()
}

func ObserveDecision(decision, actor string) {
	proposalDecisionsTotal.WithLabelValues(decision, actor).Inc()
}

func ObserveExecution(platform, result string) {
	executionsTotal.WithLabelValues(platform, result).Inc()
}

// ObserveHTTPRequest agrupa o status por classe (2xx, 4xx...) para não
// explodir a cardinalidade
func ObserveHTTPRequest(method string, status int, took time.Duration) {
	httpRequestDuration.WithLabelValues(method, fmt.Sprintf("%dxx", status/100)).Observe(took.Seconds())
}
