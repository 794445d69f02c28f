package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/executing"
	"github.com/vfg2006/traffic-autopilot/pkg/apiErrors"
)

// ListExecutions aceita ?proposal_id=, ?connector_id= e ?limit=
func ListExecutions(service executing.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "limit inválido", nil)
			return
		}

		executions, err := service.List(r.Context(), domain.ExecutionFilters{
			ProposalID:  r.URL.Query().Get("proposal_id"),
			ConnectorID: r.URL.Query().Get("connector_id"),
			Limit:       limit,
		})
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar execuções")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar execuções", nil)
			return
		}

		if executions == nil {
			executions = []*domain.Execution{}
		}
		writeJSON(w, http.StatusOK, executions)
	}
}
