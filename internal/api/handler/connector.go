package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/connecting"
	"github.com/vfg2006/traffic-autopilot/pkg/apiErrors"
)

const redactedValue = "********"

type ConfigureConnectorRequest struct {
	ID          string               `json:"id"`
	Platform    string               `json:"platform"`
	DisplayName string               `json:"display_name"`
	Mode        domain.ConnectorMode `json:"mode"`
	Enabled     *bool                `json:"enabled"`
	Config      map[string]string    `json:"config"`
}

func ListConnectors(service connecting.Connecter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connectors, err := service.List(r.Context())
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar conectores")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar conectores", nil)
			return
		}

		out := make([]*domain.ConnectorConfig, 0, len(connectors))
		for _, c := range connectors {
			out = append(out, redact(c))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// ConfigureConnector cria ou atualiza um conector. A combinação plataforma/modo
// é validada no registro antes de gravar.
func ConfigureConnector(service connecting.Connecter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConfigureConnectorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		cfg := &domain.ConnectorConfig{
			ID:          strings.TrimSpace(req.ID),
			Platform:    req.Platform,
			DisplayName: req.DisplayName,
			Mode:        req.Mode,
			Enabled:     true,
			Config:      req.Config,
		}
		if req.Enabled != nil {
			cfg.Enabled = *req.Enabled
		}

		saved, err := service.Configure(r.Context(), cfg)
		if err != nil {
			if errors.Is(err, connecting.ErrInvalidConnector) {
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
				return
			}
			logrus.WithError(err).WithField("platform", req.Platform).Warn("Configuração de conector recusada")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, redact(saved))
	}
}

func SetConnectorEnabled(service connecting.Connecter, enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		if err := service.SetEnabled(r.Context(), id, enabled); err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":      id,
			"enabled": enabled,
		})
	}
}

func ConnectorHealth(service connecting.Connecter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		report, err := service.CheckHealth(r.Context(), id)
		if err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

func ListPlatforms(service connecting.Connecter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, service.Platforms())
	}
}

// redact esconde tokens e segredos da configuração opaca antes de responder
func redact(c *domain.ConnectorConfig) *domain.ConnectorConfig {
	if c == nil || len(c.Config) == 0 {
		return c
	}

	out := *c
	out.Config = make(map[string]string, len(c.Config))
	for k, v := range c.Config {
		key := strings.ToLower(k)
		if strings.Contains(key, "token") || strings.Contains(key, "secret") || strings.Contains(key, "password") {
			v = redactedValue
		}
		out.Config[k] = v
	}
	return &out
}
