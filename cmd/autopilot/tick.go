package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
	"github.com/vfg2006/traffic-autopilot/pkg/utils"
)

func newTickCmd(c *cli) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Roda um ciclo sync → propose → execute e imprime o relatório",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode == "" {
				mode = c.cfg.App.ExecutionMode
			}
			executionMode, err := domain.ParseExecutionMode(mode)
			if err != nil {
				return err
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}

			report, err := app.ControlLoop.RunCycle(cmd.Context(), executionMode)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.out, utils.PrettyJson(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "manual | auto_low_risk (padrão: EXECUTION_MODE)")
	return cmd
}
