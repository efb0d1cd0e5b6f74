package cli

import (
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and drive the booth session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSession()
		},
	}

	sessionCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSession()
		},
	})

	sessionCmd.AddCommand(&cobra.Command{
		Use:   "scoring",
		Short: "Lock the active session for score entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/session/scoring", nil, nil); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage("Session is now scoring")
			return nil
		},
	})

	sessionCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Abandon the current session without recording a score",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/session/reset", nil, nil); err != nil {
				return err
			}
			NewOutput(cfg.Output).PrintMessage("Session reset")
			return nil
		},
	})

	return sessionCmd
}

func showSession() error {
	var result Session

	if err := client.Get("/api/v1/session", &result); err != nil {
		return err
	}

	NewOutput(cfg.Output).Print(result)
	return nil
}
