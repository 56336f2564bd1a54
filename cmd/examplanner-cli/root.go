package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/examplanner-api/pkg/config"
	"github.com/noah-isme/examplanner-api/pkg/logger"
)

// cliContext carries what every subcommand needs once flags are parsed.
type cliContext struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	app := &cliContext{}

	root := &cobra.Command{
		Use:           "examplanner-cli",
		Short:         "Offline exam seat and invigilator planner",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// Logs go to stderr; console encoding reads better in a terminal.
			cfg.Log.Format = "console"
			logr, err := logger.New(cfg)
			if err != nil {
				return err
			}
			app.cfg = cfg
			app.logger = logr
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	root.AddCommand(newPlanCmd(app))
	root.AddCommand(newVerifyCmd(app))
	root.AddCommand(newTokenCmd(app))
	return root
}
