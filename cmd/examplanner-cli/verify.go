package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/examplanner-api/internal/allocation"
)

func newVerifyCmd(app *cliContext) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-check a generated plan against the seating rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open plan: %w", err)
			}
			defer in.Close() //nolint:errcheck

			checked, err := runVerify(in)
			if err != nil {
				app.logger.Error("plan verification failed", zap.String("input", input), zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d sessions verified\n", checked)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "plan YAML file produced by plan")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// runVerify returns the number of sessions checked.
func runVerify(in io.Reader) (int, error) {
	var plan planFile
	if err := yaml.NewDecoder(in).Decode(&plan); err != nil {
		return 0, fmt.Errorf("decode plan: %w", err)
	}
	for _, session := range plan.Sessions {
		if err := allocation.VerifySeatPlan(session.Plan, plan.Classrooms); err != nil {
			return 0, fmt.Errorf("session %s: %w", session.SessionKey, err)
		}
	}
	return len(plan.Sessions), nil
}
