package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/pkg/apiErrors"
)

func ListRules(rules repository.RuleRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := rules.List(r.Context(), false)
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar regras")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar regras", nil)
			return
		}

		if list == nil {
			list = []domain.Rule{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func SetRuleEnabled(rules repository.RuleRepository, enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		if err := rules.SetEnabled(r.Context(), id, enabled); err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		logrus.WithFields(logrus.Fields{
			"rule_id": id,
			"enabled": enabled,
		}).Info("Estado da regra alterado")

		writeJSON(w, http.StatusOK, map[string]any{
			"id":      id,
			"enabled": enabled,
		})
	}
}
