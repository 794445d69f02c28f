package domain

import (
	"sort"
	"time"
)

type Granularity string

const (
	GranularityDaily    Granularity = "daily"
	GranularityIntraday Granularity = "intraday"
)

// MetricRecord é uma linha de métricas de uma entidade num balde de tempo.
// A chave natural é (ConnectorID, EntityID, Date, Granularity). Para a
// granularidade diária Date é meia-noite; para intraday é o início da hora.
// Campos numéricos nulos significam "não informado pela plataforma".
type MetricRecord struct {
	ConnectorID     string         `json:"connector_id"`
	Platform        string         `json:"platform"`
	AccountID       string         `json:"account_id,omitempty"`
	EntityType      EntityType     `json:"entity_type"`
	EntityID        string         `json:"entity_id"`
	Date            time.Time      `json:"date"`
	Granularity     Granularity    `json:"granularity"`
	Spend           *float64       `json:"spend,omitempty"`
	Impressions     *int64         `json:"impressions,omitempty"`
	Clicks          *int64         `json:"clicks,omitempty"`
	Conversions     *float64       `json:"conversions,omitempty"`
	ConversionValue *float64       `json:"conversion_value,omitempty"`
	Frequency       *float64       `json:"frequency,omitempty"`
	RawPayload      map[string]any `json:"raw_payload,omitempty"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// BucketLayout é o formato de relógio de parede usado na chave do balde.
// O fuso não participa da chave.
const BucketLayout = "2006-01-02T15:04"

type MetricKey struct {
	ConnectorID string
	EntityID    string
	Date        string
	Granularity Granularity
}

func (m MetricRecord) Key() MetricKey {
	return MetricKey{
		ConnectorID: m.ConnectorID,
		EntityID:    m.EntityID,
		Date:        m.Date.Format(BucketLayout),
		Granularity: m.Granularity,
	}
}

// ROAS retorna conversion_value / spend. O segundo retorno é falso quando
// não há gasto no dia, caso em que o ROAS não é definido.
func (m MetricRecord) ROAS() (float64, bool) {
	spend := FloatValue(m.Spend)
	if spend <= 0 {
		return 0, false
	}
	return FloatValue(m.ConversionValue) / spend, true
}

// CTR retorna clicks / impressions; falso quando não houve impressões
func (m MetricRecord) CTR() (float64, bool) {
	impressions := IntValue(m.Impressions)
	if impressions <= 0 {
		return 0, false
	}
	return float64(IntValue(m.Clicks)) / float64(impressions), true
}

// MetricsWindow agrupa as métricas diárias lidas para uma avaliação de regras.
// End é o último dia (inclusivo) da janela.
type MetricsWindow struct {
	ConnectorID string
	Platform    string
	End         time.Time
	Entities    map[EntityKey]Entity
	Records     []MetricRecord
}

// ByEntity devolve as séries por entidade, cada uma ordenada por data
func (w MetricsWindow) ByEntity() map[EntityKey][]MetricRecord {
	series := make(map[EntityKey][]MetricRecord)
	for _, rec := range w.Records {
		key := EntityKey{EntityType: rec.EntityType, EntityID: rec.EntityID}
		series[key] = append(series[key], rec)
	}
	for key := range series {
		recs := series[key]
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Date.Before(recs[j].Date)
		})
	}
	return series
}

func Float64Ptr(v float64) *float64 { return &v }

func Int64Ptr(v int64) *int64 { return &v }

func FloatValue(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func IntValue(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

// TruncateDay normaliza um instante para a meia-noite do seu dia no fuso dado
func TruncateDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// MetricFilter seleciona as métricas de uma instância numa janela [Start, End].
// Platform habilita o fallback para linhas legadas sem connector_id.
type MetricFilter struct {
	ConnectorID string
	Platform    string
	Granularity Granularity
	Start       time.Time
	End         time.Time
}
