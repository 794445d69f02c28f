// Package bootstrap monta o grafo de dependências compartilhado pela API e
// pela CLI: store, registro de conectores, casos de uso e ciclo de controle.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/infrastructure/database/postgres"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository"
	"github.com/vfg2006/traffic-autopilot/infrastructure/repository/memory"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"github.com/vfg2006/traffic-autopilot/internal/connector"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/internal/scheduler"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/authenticating"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/connecting"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/executing"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/proposing"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type App struct {
	Config        *config.Config
	Repos         repository.Repositories
	Registry      *connector.Registry
	Connecter     *connecting.Service
	Proposer      *proposing.Service
	Executor      *executing.Service
	Authenticator *authenticating.Service
	ControlLoop   *scheduler.ControlLoop

	conn *postgres.Connection
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	repos, conn, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return Wire(cfg, repos, conn), nil
}

// Wire monta os serviços sobre um conjunto de repositórios já aberto
func Wire(cfg *config.Config, repos repository.Repositories, conn *postgres.Connection) *App {
	registry := NewRegistry(cfg, repos.Cursors)

	proposer := proposing.NewService(repos.Proposals)
	executor := executing.NewService(repos.Proposals, repos.Executions, repos.Connectors, registry, cfg.ControlLoop.ActionTimeout())

	return &App{
		Config:        cfg,
		Repos:         repos,
		Registry:      registry,
		Connecter:     connecting.NewService(repos.Connectors, registry, cfg.ControlLoop.ConnectorTimeout()),
		Proposer:      proposer,
		Executor:      executor,
		Authenticator: authenticating.NewService(cfg),
		ControlLoop:   scheduler.NewControlLoop(repos, registry, proposer, executor, cfg),
		conn:          conn,
	}
}

// OpenStore escolhe o store pelo STORE_DRIVER. No modo memory as regras padrão
// são semeadas, já que não há migração.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Repositories, *postgres.Connection, error) {
	switch cfg.App.StoreDriver {
	case StoreDriverMemory:
		repos, _ := memory.New()
		for _, rule := range domain.DefaultRules() {
			if err := repos.Rules.Save(ctx, &rule); err != nil {
				return repository.Repositories{}, nil, err
			}
		}
		logrus.Warn("Usando store em memória: os dados não sobrevivem a um reinício")
		return repos, nil, nil

	case StoreDriverPostgres, "":
		conn, err := postgres.NewConnection(ctx, cfg.Database)
		if err != nil {
			return repository.Repositories{}, nil, fmt.Errorf("erro ao conectar ao PostgreSQL: %w", err)
		}
		logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
		return repository.NewPostgresRepositories(conn), conn, nil
	}

	return repository.Repositories{}, nil, fmt.Errorf("STORE_DRIVER inválido: %q", cfg.App.StoreDriver)
}

// Migrate aplica as migrações embutidas; no store em memória não há nada a fazer
func (a *App) Migrate(ctx context.Context) ([]string, error) {
	if a.conn == nil {
		return nil, nil
	}
	return postgres.Migrate(ctx, a.conn)
}

// Ping verifica o store; o store em memória está sempre disponível
func (a *App) Ping(ctx context.Context) error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Ping(ctx)
}

func (a *App) Close() {
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			logrus.WithError(err).Warn("Erro ao fechar conexão com PostgreSQL")
		}
	}
}
