package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/traffic-autopilot/internal/bootstrap"
	"github.com/vfg2006/traffic-autopilot/internal/config"
)

// cli guarda o estado compartilhado entre os subcomandos
type cli struct {
	loadConfig func() (*config.Config, error)
	out        io.Writer

	cfg *config.Config
	app *bootstrap.App
}

func newRootCmd(c *cli) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "autopilot",
		Short:         "Operação do traffic autopilot pela linha de comando",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return fmt.Errorf("erro ao carregar configuração: %w", err)
			}
			if logLevel != "" {
				cfg.App.LogLevel = logLevel
			}

			level, err := logrus.ParseLevel(cfg.App.LogLevel)
			if err != nil {
				level = logrus.InfoLevel
			}
			logrus.SetLevel(level)

			c.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.app != nil {
				c.app.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Sobrepõe LOG_LEVEL")

	rootCmd.AddCommand(
		newTickCmd(c),
		newProposalsCmd(c),
		newDecideCmd(c),
		newExecuteCmd(c),
		newMigrateCmd(c),
		newHashPasswordCmd(c),
		newMetaTokenCmd(c),
	)

	return rootCmd
}

// open monta as dependências sob demanda; comandos utilitários não abrem o store
func (c *cli) open(ctx context.Context) (*bootstrap.App, error) {
	if c.app != nil {
		return c.app, nil
	}

	app, err := bootstrap.New(ctx, c.cfg)
	if err != nil {
		return nil, err
	}
	c.app = app
	return app, nil
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logrus.SetOutput(os.Stderr)

	c := &cli{
		loadConfig: config.NewConfig,
		out:        os.Stdout,
	}

	if err := newRootCmd(c).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Erro:", err)
		os.Exit(1)
	}
}
