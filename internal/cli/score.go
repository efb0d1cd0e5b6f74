package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <caught>",
		Short: "Record the caught count for the scoring session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caught, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}

			body := map[string]int{"caught": caught}
			if err := client.Post("/api/v1/session/score", body, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Score recorded")
			return nil
		},
	}
}
