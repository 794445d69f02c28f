package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/pkg/utils"
)

func newProposalsCmd(c *cli) *cobra.Command {
	var (
		status string
		limit  uint64
	)

	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "Lista propostas por status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := domain.OpenProposalStatuses
			if status != "" {
				statuses = nil
				for _, part := range strings.Split(status, ",") {
					s, err := domain.ParseProposalStatus(strings.TrimSpace(part))
					if err != nil {
						return err
					}
					statuses = append(statuses, s)
				}
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}

			proposals, err := app.Proposer.ListByStatus(cmd.Context(), statuses, limit)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.out, utils.PrettyJson(proposals))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Status separados por vírgula (padrão: proposed,approved)")
	cmd.Flags().Uint64Var(&limit, "limit", 0, "Máximo de propostas")
	return cmd
}

func newDecideCmd(c *cli) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "decide <proposal-id> approve|reject",
		Short: "Aprova ou rejeita uma proposta",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision, err := domain.ParseDecision(strings.ToLower(args[1]))
			if err != nil {
				return err
			}
			if by == "" {
				by = c.cfg.Auth.OperatorEmail
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}

			proposal, err := app.Proposer.Decide(cmd.Context(), args[0], decision, by)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Proposta %s agora está em %s\n", proposal.ID, proposal.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "Quem decide (padrão: OPERATOR_EMAIL)")
	return cmd
}

func newExecuteCmd(c *cli) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "execute <proposal-id>",
		Short: "Aplica uma proposta aprovada na plataforma",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if by == "" {
				by = c.cfg.Auth.OperatorEmail
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}

			execution, err := app.Executor.Execute(cmd.Context(), args[0], by)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.out, utils.PrettyJson(execution))
			if execution.Result == domain.ExecutionFailure {
				return fmt.Errorf("execução falhou: %s", execution.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "Quem executa (padrão: OPERATOR_EMAIL)")
	return cmd
}
