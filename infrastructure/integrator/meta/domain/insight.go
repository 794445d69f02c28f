package metadomain

import (
	"strconv"
	"strings"
)

// DefaultPurchaseActionTypes são as ações contadas como conversão quando o
// conector não define conversion_action_types
var DefaultPurchaseActionTypes = []string{
	"purchase",
	"omni_purchase",
	"offsite_conversion.fb_pixel_purchase",
}

type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// Insight é uma linha de /insights com time_increment=1. Os números chegam como texto.
type Insight struct {
	DateStart    string   `json:"date_start"`
	DateStop     string   `json:"date_stop"`
	AccountID    string   `json:"account_id"`
	CampaignID   string   `json:"campaign_id"`
	CampaignName string   `json:"campaign_name"`
	AdsetID      string   `json:"adset_id"`
	AdsetName    string   `json:"adset_name"`
	Spend        string   `json:"spend"`
	Impressions  string   `json:"impressions"`
	Clicks       string   `json:"clicks"`
	Frequency    string   `json:"frequency"`
	Actions      []Action `json:"actions"`
	ActionValues []Action `json:"action_values"`
}

// ActionMap soma os valores por action_type
func ActionMap(actions []Action) map[string]float64 {
	out := make(map[string]float64, len(actions))
	for _, a := range actions {
		t := strings.TrimSpace(a.ActionType)
		if t == "" {
			continue
		}
		out[t] += ParseFloat(a.Value)
	}
	return out
}

// SumActions soma os tipos pedidos, na ordem dada
func SumActions(values map[string]float64, types []string) float64 {
	var total float64
	for _, t := range types {
		total += values[t]
	}
	return total
}

// ParseFloat aceita separador de milhar e devolve zero para valores inválidos
func ParseFloat(v string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

func ParseInt(v string) int64 {
	return int64(ParseFloat(v))
}

// OptionalFloat devolve nil quando a API não mandou o campo
func OptionalFloat(v string) *float64 {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	f := ParseFloat(v)
	return &f
}

func OptionalInt(v string) *int64 {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	i := ParseInt(v)
	return &i
}
