package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/internal/api/handler"
	"github.com/vfg2006/traffic-autopilot/internal/api/handler/router"
	"github.com/vfg2006/traffic-autopilot/internal/bootstrap"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"github.com/vfg2006/traffic-autopilot/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
	app        *bootstrap.App
}

func New(config *config.Config, app *bootstrap.App) (*Server, error) {
	if app == nil {
		return nil, fmt.Errorf("dependências da API não inicializadas")
	}

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
			Handler:           NewHandler(config, app),
			ReadHeaderTimeout: 2 * time.Second,
		},
		app: app,
	}

	return srv, nil
}

// NewHandler monta o router com a cadeia global de middlewares
func NewHandler(config *config.Config, app *bootstrap.App) http.Handler {
	rt := router.New(
		router.WithRoutes(handler.Healthcheck(app)...),
		router.WithRoutes(handler.Metrics()...),
		router.WithRoutes(handler.Authentication(app.Authenticator)...),
		router.WithRoutes(handler.Connectors(app.Connecter)...),
		router.WithRoutes(handler.Proposals(app.Proposer, app.Executor)...),
		router.WithRoutes(handler.Executions(app.Executor)...),
		router.WithRoutes(handler.Rules(app.Repos.Rules)...),
		router.WithRoutes(handler.CronJobs(app.ControlLoop, config.App.ExecutionMode)...),
	)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(config.Server.AllowedOrigins),
		middleware.AuthMiddleware(app.Authenticator),
	}

	return alice.New(middlewares...).Then(rt)
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	// Canal para aguardar sinais de término
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	// Aguardar pelo sinal ou pelo cancelamento do contexto
	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": shutdownTimeout.String(),
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

func (s Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		return err
	}
	logrus.Info("Servidor HTTP desligado com sucesso")

	// o store só fecha depois que nenhuma requisição pode mais usá-lo
	logrus.Info("Fechando conexões do store")
	s.app.Close()
	return nil
}
