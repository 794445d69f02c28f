package domain

import "time"

type ConnectorMode string

const (
	ConnectorModeImport  ConnectorMode = "import"
	ConnectorModeLiveAPI ConnectorMode = "live_api"
)

func (m ConnectorMode) IsValid() bool {
	return m == ConnectorModeImport || m == ConnectorModeLiveAPI
}

// Plataformas conhecidas pelo registro de conectores
const (
	PlatformMeta            = "meta"
	PlatformSSOtica         = "ssotica"
	PlatformGoogle          = "google"
	PlatformNaver           = "naver"
	PlatformTikTok          = "tiktok"
	PlatformCoupang         = "coupang"
	PlatformSmartstore      = "smartstore"
	PlatformCafe24Analytics = "cafe24_analytics"
	PlatformDemo            = "demo"
)

type HealthStatus string

const (
	HealthOK   HealthStatus = "ok"
	HealthWarn HealthStatus = "warn"
	HealthErr  HealthStatus = "err"
	HealthOff  HealthStatus = "off"
)

// CanSync indica se o ciclo deve prosseguir com a sincronização após o health check
func (h HealthStatus) CanSync() bool {
	return h == HealthOK || h == HealthWarn
}

type HealthReport struct {
	Status    HealthStatus `json:"status"`
	Message   string       `json:"message,omitempty"`
	CheckedAt time.Time    `json:"checked_at"`
}

// ConnectorConfig representa uma instância configurada de conector.
// Pode haver mais de uma instância por plataforma (ex.: duas contas Meta).
type ConnectorConfig struct {
	ID            string            `json:"id"`
	Platform      string            `json:"platform"`
	DisplayName   string            `json:"display_name"`
	Mode          ConnectorMode     `json:"mode"`
	Enabled       bool              `json:"enabled"`
	Config        map[string]string `json:"config,omitempty"`
	Health        HealthStatus      `json:"health"`
	HealthMessage string            `json:"health_message,omitempty"`
	LastSyncAt    *time.Time        `json:"last_sync_at,omitempty"`
	LastError     *string           `json:"last_error,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Setting retorna um valor da configuração opaca do conector, ou vazio
func (c *ConnectorConfig) Setting(key string) string {
	if c == nil || c.Config == nil {
		return ""
	}
	return c.Config[key]
}

// ConnectorSyncResult é o que o ciclo grava no conector ao terminar de processá-lo
type ConnectorSyncResult struct {
	ConnectorID   string
	Health        HealthStatus
	HealthMessage string
	SyncedAt      *time.Time
	Err           error
}
