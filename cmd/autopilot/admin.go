package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vfg2006/traffic-autopilot/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/traffic-autopilot/internal/usecases/authenticating"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica as migrações pendentes do PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}

			applied, err := app.Migrate(cmd.Context())
			if err != nil {
				return err
			}

			if len(applied) == 0 {
				fmt.Fprintln(c.out, "Nenhuma migração pendente")
				return nil
			}
			for _, version := range applied {
				fmt.Fprintf(c.out, "Aplicada: %s\n", version)
			}
			return nil
		},
	}
}

// newHashPasswordCmd gera o valor de OPERATOR_PASSWORD_HASH
func newHashPasswordCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <senha>",
		Short: "Gera o hash bcrypt para OPERATOR_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := authenticating.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, hash)
			return nil
		},
	}
}

func newMetaTokenCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta-token",
		Short: "Utilitários para tokens de acesso do Meta",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "exchange <token-curto>",
			Short: "Troca um token de curta duração por um de longa duração",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client := c.metaClient(args[0])
				resp, err := client.ExchangeToken(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				fmt.Fprintln(c.out, resp.AccessToken)
				fmt.Fprintf(c.out, "Expira em: %s\n", metaclient.FormatDuration(resp.ExpiresIn))
				return nil
			},
		},
		&cobra.Command{
			Use:   "debug <token>",
			Short: "Mostra validade e escopos de um token",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				info, err := c.metaClient(args[0]).DebugToken(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintf(c.out, "Válido: %t\n", info.IsValid)
				fmt.Fprintf(c.out, "Escopos: %v\n", info.Scopes)
				if remaining, ok := info.ExpiresIn(time.Now()); ok {
					fmt.Fprintf(c.out, "Expira em: %s\n", metaclient.FormatDuration(int64(remaining.Seconds())))
				} else {
					fmt.Fprintln(c.out, "Expira em: nunca")
				}
				return nil
			},
		},
	)

	return cmd
}

func (c *cli) metaClient(token string) *metaclient.MetaClient {
	return metaclient.NewClient(metaclient.Options{
		URL:         c.cfg.Meta.URL,
		AccessToken: token,
		AppID:       c.cfg.Meta.AppID,
		AppSecret:   c.cfg.Meta.AppSecret,
		Timeout:     time.Duration(c.cfg.Meta.HTTPTimeoutSeconds) * time.Second,
	})
}
