package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/internal/scheduler"
	"github.com/vfg2006/traffic-autopilot/pkg/apiErrors"
	"github.com/vfg2006/traffic-autopilot/pkg/log"
)

// CycleRunner é satisfeito por *scheduler.ControlLoop
type CycleRunner interface {
	TriggerManualSync(ctx context.Context) bool
	RunCycle(ctx context.Context, mode domain.ExecutionMode) (*scheduler.CycleReport, error)
	GetStatus() map[string]any
}

// RunCron dispara um ciclo fora do agendamento. Com ?wait=true o ciclo roda
// na requisição e o relatório volta na resposta. ?mode= só pode restringir o
// modo configurado: pedir auto_low_risk com o serviço em manual é recusado.
func RunCron(loop CycleRunner, defaultMode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		logger.Info("INIT - RunCron")

		wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
		if !wait {
			if !loop.TriggerManualSync(r.Context()) {
				apiErrors.WriteError(w, apiErrors.ErrCycleRunning, "Ciclo de controle já em andamento", nil)
				return
			}
			writeJSON(w, http.StatusAccepted, map[string]any{
				"message": "Ciclo de controle iniciado",
			})
			return
		}

		configured, err := domain.ParseExecutionMode(defaultMode)
		if err != nil {
			configured = domain.ExecutionModeManual
		}

		mode := configured
		if rawMode := r.URL.Query().Get("mode"); rawMode != "" {
			mode, err = domain.ParseExecutionMode(rawMode)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
				return
			}
		}

		if mode == domain.ExecutionModeAutoLowRisk && configured != domain.ExecutionModeAutoLowRisk {
			logger.WithFields(log.Fields{
				"mode":            mode,
				"configured_mode": configured,
			}).Warn("Modo de execução mais permissivo que o configurado recusado")
			apiErrors.WriteError(w, apiErrors.ErrModeNotAllowed, "Modo auto_low_risk não habilitado na configuração", nil)
			return
		}

		report, err := loop.RunCycle(r.Context(), mode)
		if err != nil {
			if errors.Is(err, scheduler.ErrCycleRunning) {
				apiErrors.WriteError(w, apiErrors.ErrCycleRunning, "Ciclo de controle já em andamento", nil)
				return
			}
			logrus.WithError(err).Error("Erro ao executar ciclo de controle")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

func GetCronStatus(loop CycleRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, loop.GetStatus())
	}
}
