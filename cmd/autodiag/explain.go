package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/autodiag/internal/events"
	"github.com/tjfontaine/autodiag/internal/storage/memory"
	"github.com/tjfontaine/autodiag/internal/workspace"
)

var explainCmd = &cobra.Command{
	Use:   "explain <code>",
	Short: "Explain an OBD-II trouble code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cmd.ErrOrStderr(), cfg.Logging.Level)

		client, err := newOracle(cmd.Context(), cfg.Oracle, cfg.Conversation.MaxTurns, logger)
		if err != nil {
			return fmt.Errorf("configure oracle: %w", err)
		}
		manager := workspace.NewManager(client, memory.New(), workspace.Options{
			Events: events.Discard{},
			Logger: logger,
		})

		exp, err := manager.ExplainCode(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if exp.Known != nil {
			fmt.Fprintf(out, "%s: %s\n\n", exp.Code, exp.Known.Description)
		}
		fmt.Fprintln(out, exp.Text)
		if exp.Fallback {
			fmt.Fprintln(out, "\n(the diagnostic model was unavailable; this is a generic answer)")
		}
		return nil
	},
}
