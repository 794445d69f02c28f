package domain

import "time"

type EntityType string

const (
	EntityTypeAccount  EntityType = "account"
	EntityTypeCampaign EntityType = "campaign"
	EntityTypeAdGroup  EntityType = "adgroup"
	EntityTypeAd       EntityType = "ad"
	EntityTypeKeyword  EntityType = "keyword"
	EntityTypeProduct  EntityType = "product"
	EntityTypeDomain   EntityType = "domain"
)

// Entity é um objeto gerenciável de uma plataforma. Entidades nunca são
// apagadas; as que não aparecem numa sincronização ficam inativas.
type Entity struct {
	ConnectorID string         `json:"connector_id"`
	Platform    string         `json:"platform"`
	EntityType  EntityType     `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	ParentType  EntityType     `json:"parent_type,omitempty"`
	ParentID    string         `json:"parent_id,omitempty"`
	AccountID   string         `json:"account_id,omitempty"`
	Name        string         `json:"name"`
	Status      string         `json:"status,omitempty"`
	Active      bool           `json:"active"`
	Meta        map[string]any `json:"meta,omitempty"`
	LastSeenAt  time.Time      `json:"last_seen_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type EntityKey struct {
	EntityType EntityType
	EntityID   string
}

func (e Entity) Key() EntityKey {
	return EntityKey{EntityType: e.EntityType, EntityID: e.EntityID}
}
