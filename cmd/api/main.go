package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/traffic-autopilot/internal/api"
	"github.com/vfg2006/traffic-autopilot/internal/bootstrap"
	"github.com/vfg2006/traffic-autopilot/internal/config"
	"github.com/vfg2006/traffic-autopilot/pkg/log"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao inicializar dependências")
	}

	applied, err := app.Migrate(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao aplicar migrações")
	}
	if len(applied) > 0 {
		logrus.Infof("Migrações aplicadas: %v", applied)
	}

	// Inicia o ciclo de controle em background
	if err := app.ControlLoop.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o ciclo de controle")
	} else {
		logrus.Info("Ciclo de controle iniciado com sucesso")
	}

	server, err := api.New(cfg, app)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger usa texto legível em desenvolvimento e JSON nos demais
// ambientes, onde os logs são coletados
func configureLogger() {
	if log.IsDevelopment() {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
		return
	}

	logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
}
