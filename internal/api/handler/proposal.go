package handler

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/executing"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/proposing"
	"github.com/vfg2006/traffic-autopilot/pkg/apiErrors"
	"github.com/vfg2006/traffic-autopilot/pkg/middleware"
)

type DecisionRequest struct {
	Decision string `json:"decision"`
}

// ListProposals aceita ?status=proposed,approved; sem filtro devolve as abertas
func ListProposals(service proposing.Proposer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses := domain.OpenProposalStatuses
		if raw := r.URL.Query().Get("status"); raw != "" {
			statuses = nil
			for _, part := range strings.Split(raw, ",") {
				status, err := domain.ParseProposalStatus(strings.TrimSpace(part))
				if err != nil {
					apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
					return
				}
				statuses = append(statuses, status)
			}
		}

		limit, err := parseLimit(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "limit inválido", nil)
			return
		}

		proposals, err := service.ListByStatus(r.Context(), statuses, limit)
		if err != nil {
			logrus.WithError(err).Error("Erro ao listar propostas")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar propostas", nil)
			return
		}

		if proposals == nil {
			proposals = []*domain.ActionProposal{}
		}
		writeJSON(w, http.StatusOK, proposals)
	}
}

func GetProposal(service proposing.Proposer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		proposal, err := service.Get(r.Context(), id)
		if err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, proposal)
	}
}

// DecideProposal registra approve ou reject em nome do operador autenticado
func DecideProposal(service proposing.Proposer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		operator, ok := middleware.OperatorFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Operador não autenticado", nil)
			return
		}

		var req DecisionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		decision, err := domain.ParseDecision(strings.ToLower(strings.TrimSpace(req.Decision)))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		proposal, err := service.Decide(r.Context(), id, decision, operator)
		if err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, proposal)
	}
}

// ExecuteProposal aplica uma proposta aprovada. Falha da plataforma não é erro
// HTTP: a execução volta com result=failure e a proposta fica em failed.
func ExecuteProposal(service executing.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		operator, ok := middleware.OperatorFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Operador não autenticado", nil)
			return
		}

		execution, err := service.Execute(r.Context(), id, operator)
		if err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, execution)
	}
}
