package domain

import "time"

type RuleKind string

const (
	RuleKindKillSwitch      RuleKind = "kill_switch"
	RuleKindROASFloor       RuleKind = "roas_floor"
	RuleKindCreativeFatigue RuleKind = "creative_fatigue"
)

// TargetScope restringe a quais conectores e tipos de entidade uma regra se aplica.
// Campos vazios não restringem.
type TargetScope struct {
	Platform    string     `json:"platform,omitempty"`
	ConnectorID string     `json:"connector_id,omitempty"`
	EntityType  EntityType `json:"entity_type,omitempty"`
}

func (s TargetScope) MatchesConnector(platform, connectorID string) bool {
	if s.Platform != "" && s.Platform != platform {
		return false
	}
	if s.ConnectorID != "" && s.ConnectorID != connectorID {
		return false
	}
	return true
}

func (s TargetScope) MatchesEntity(entityType EntityType) bool {
	return s.EntityType == "" || s.EntityType == entityType
}

// Rule é uma regra declarativa e sem estado. Os parâmetros são decodificados
// pelo motor de regras de acordo com o Kind.
type Rule struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Kind      RuleKind       `json:"kind"`
	Enabled   bool           `json:"enabled"`
	Params    map[string]any `json:"params"`
	Scope     TargetScope    `json:"target_scope"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DefaultRules são as regras semeadas numa instalação nova. No Postgres elas
// vêm da migração 0002_seed_rules.sql; o store em memória usa esta lista.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:      "kill_switch_campaign",
			Name:    "Kill switch: gasto sem conversão",
			Kind:    RuleKindKillSwitch,
			Enabled: true,
			Params:  map[string]any{"spend_threshold": 50000.0, "window_days": 3, "min_clicks": 0},
			Scope:   TargetScope{EntityType: EntityTypeCampaign},
		},
		{
			ID:      "roas_floor_campaign",
			Name:    "ROAS abaixo do piso",
			Kind:    RuleKindROASFloor,
			Enabled: false,
			Params:  map[string]any{"floor": 1.0, "days": 3, "decrease_pct": 20.0},
			Scope:   TargetScope{EntityType: EntityTypeCampaign},
		},
		{
			ID:      "creative_fatigue_ad",
			Name:    "Fadiga de criativo",
			Kind:    RuleKindCreativeFatigue,
			Enabled: true,
			Params:  map[string]any{"min_days": 3, "window_days": 7},
			Scope:   TargetScope{Platform: PlatformMeta},
		},
	}
}
