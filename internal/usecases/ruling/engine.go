package ruling

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

const dayLayout = "2006-01-02"

// Engine avalia regras sobre uma janela de métricas diárias. Não guarda estado
// entre chamadas: a mesma entrada sempre produz a mesma saída.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate devolve os candidatos a proposta ordenados por (regra, entidade, ação).
// Regras desabilitadas, fora do escopo do conector ou com parâmetros inválidos
// são ignoradas.
func (e *Engine) Evaluate(rules []domain.Rule, window domain.MetricsWindow) []domain.ProposalCandidate {
	series := window.ByEntity()
	end := windowEnd(window)

	keys := make([]domain.EntityKey, 0, len(series))
	for key := range series {
		if !entityEligible(window, key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].EntityID != keys[j].EntityID {
			return keys[i].EntityID < keys[j].EntityID
		}
		return keys[i].EntityType < keys[j].EntityType
	})

	candidates := make([]domain.ProposalCandidate, 0)
	for _, rule := range rules {
		if !rule.Enabled || !rule.Scope.MatchesConnector(window.Platform, window.ConnectorID) {
			continue
		}

		evaluate, err := evaluatorFor(rule)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"rule_id": rule.ID,
				"kind":    rule.Kind,
				"error":   err.Error(),
			}).Warn("Regra ignorada por parâmetros inválidos")
			continue
		}

		for _, key := range keys {
			if !rule.Scope.MatchesEntity(key.EntityType) {
				continue
			}
			if c, ok := evaluate(series[key], end); ok {
				c.RuleID = rule.ID
				c.EntityType = key.EntityType
				c.EntityID = key.EntityID
				candidates = append(candidates, c)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		if a.ActionKind != b.ActionKind {
			return a.ActionKind < b.ActionKind
		}
		return a.EntityType < b.EntityType
	})

	return candidates
}

type evaluator func(series []domain.MetricRecord, end time.Time) (domain.ProposalCandidate, bool)

func evaluatorFor(rule domain.Rule) (evaluator, error) {
	switch rule.Kind {
	case domain.RuleKindKillSwitch:
		p, err := parseKillSwitch(rule.Params)
		if err != nil {
			return nil, err
		}
		return func(series []domain.MetricRecord, end time.Time) (domain.ProposalCandidate, bool) {
			return killSwitch(p, trailingDays(series, end, p.WindowDays))
		}, nil
	case domain.RuleKindROASFloor:
		p, err := parseROASFloor(rule.Params)
		if err != nil {
			return nil, err
		}
		return func(series []domain.MetricRecord, end time.Time) (domain.ProposalCandidate, bool) {
			return roasFloor(p, trailingDays(series, end, 0))
		}, nil
	case domain.RuleKindCreativeFatigue:
		p, err := parseCreativeFatigue(rule.Params)
		if err != nil {
			return nil, err
		}
		return func(series []domain.MetricRecord, end time.Time) (domain.ProposalCandidate, bool) {
			return creativeFatigue(p, trailingDays(series, end, p.WindowDays))
		}, nil
	}
	return nil, fmt.Errorf("tipo de regra desconhecido: %q", rule.Kind)
}

// killSwitch pausa entidades que gastaram acima do limite na janela sem
// nenhuma conversão
func killSwitch(p killSwitchParams, series []domain.MetricRecord) (domain.ProposalCandidate, bool) {
	var (
		spend       float64
		conversions float64
		clicks      int64
	)
	for _, rec := range series {
		spend += domain.FloatValue(rec.Spend)
		conversions += domain.FloatValue(rec.Conversions)
		clicks += domain.IntValue(rec.Clicks)
	}

	if spend <= p.SpendThreshold || conversions != 0 || clicks < p.MinClicks {
		return domain.ProposalCandidate{}, false
	}

	candidate := domain.ProposalCandidate{
		ActionKind: domain.ActionPause,
		Payload:    map[string]any{"op": "pause"},
		Reason: fmt.Sprintf("spend=%.2f>thr(%.2f) clicks=%d conv=0 window=%dd",
			spend, p.SpendThreshold, clicks, p.WindowDays),
		Risk:             domain.RiskHigh,
		RequiresApproval: true,
	}
	if p.AutoExecute {
		candidate.Risk = domain.RiskLow
		candidate.RequiresApproval = false
	}

	return candidate, true
}

// roasFloor reduz orçamento quando os últimos N dias com gasto ficaram todos
// abaixo do piso. Dias sem gasto não contam nem quebram a sequência.
func roasFloor(p roasFloorParams, series []domain.MetricRecord) (domain.ProposalCandidate, bool) {
	streak := make([]float64, 0, p.Days)
	for i := len(series) - 1; i >= 0; i-- {
		roas, ok := series[i].ROAS()
		if !ok {
			continue
		}
		if roas >= p.Floor {
			break
		}
		streak = append(streak, roas)
		if len(streak) == p.Days {
			break
		}
	}

	if len(streak) < p.Days {
		return domain.ProposalCandidate{}, false
	}

	values := make([]string, len(streak))
	for i, roas := range streak {
		// do mais antigo para o mais recente
		values[len(streak)-1-i] = fmt.Sprintf("%.2f", roas)
	}

	return domain.ProposalCandidate{
		ActionKind: domain.ActionBudgetDecrease,
		Payload: map[string]any{
			"op":           "budget_decrease",
			"decrease_pct": p.DecreasePct,
		},
		Reason: fmt.Sprintf("roas=[%s]<floor(%.2f) for %d spending days",
			strings.Join(values, ","), p.Floor, p.Days),
		Risk:             domain.RiskMedium,
		RequiresApproval: true,
	}, true
}

// creativeFatigue sugere troca de criativo quando o CTR cai enquanto a
// frequência sobe
func creativeFatigue(p creativeFatigueParams, series []domain.MetricRecord) (domain.ProposalCandidate, bool) {
	var xs, ctrs, freqs []float64
	var origin time.Time
	for _, rec := range series {
		ctr, ok := rec.CTR()
		if !ok || rec.Frequency == nil {
			continue
		}
		if origin.IsZero() {
			origin = rec.Date
		}
		xs = append(xs, math.Round(rec.Date.Sub(origin).Hours()/24))
		ctrs = append(ctrs, ctr)
		freqs = append(freqs, *rec.Frequency)
	}

	if len(xs) < p.MinDays {
		return domain.ProposalCandidate{}, false
	}

	ctrSlope, ok := slope(xs, ctrs)
	if !ok || ctrSlope >= 0 {
		return domain.ProposalCandidate{}, false
	}
	freqSlope, ok := slope(xs, freqs)
	if !ok || freqSlope <= 0 {
		return domain.ProposalCandidate{}, false
	}

	return domain.ProposalCandidate{
		ActionKind: domain.ActionCreativeRefresh,
		Payload:    map[string]any{"op": "creative_refresh"},
		Reason: fmt.Sprintf("ctr_slope=%.6f<0 frequency_slope=%.4f>0 over %d days",
			ctrSlope, freqSlope, len(xs)),
		Risk:             domain.RiskLow,
		RequiresApproval: true,
	}, true
}

// slope é o coeficiente angular da regressão linear por mínimos quadrados
func slope(xs, ys []float64) (float64, bool) {
	n := float64(len(xs))
	if n < 2 {
		return 0, false
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var num, den float64
	for i := range xs {
		dx := xs[i] - meanX
		num += dx * (ys[i] - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// trailingDays filtra a série aos últimos n dias terminando em end (inclusive).
// n <= 0 mantém a série inteira até end.
func trailingDays(series []domain.MetricRecord, end time.Time, n int) []domain.MetricRecord {
	last := end.Format(dayLayout)
	first := ""
	if n > 0 {
		first = end.AddDate(0, 0, -(n - 1)).Format(dayLayout)
	}

	out := make([]domain.MetricRecord, 0, len(series))
	for _, rec := range series {
		day := rec.Date.Format(dayLayout)
		if day > last || (first != "" && day < first) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func windowEnd(window domain.MetricsWindow) time.Time {
	if !window.End.IsZero() {
		return window.End
	}

	var end time.Time
	for _, rec := range window.Records {
		if rec.Date.Format(dayLayout) > end.Format(dayLayout) {
			end = rec.Date
		}
	}
	return end
}

// entityEligible descarta entidades conhecidas e inativas; métricas de
// entidades ainda não sincronizadas são avaliadas normalmente
func entityEligible(window domain.MetricsWindow, key domain.EntityKey) bool {
	if window.Entities == nil {
		return true
	}
	entity, ok := window.Entities[key]
	return !ok || entity.Active
}
