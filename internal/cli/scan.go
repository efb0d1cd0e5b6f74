package cli

import (
	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <badge-id>",
		Short: "Submit a badge scan as if it came from the booth reader",
		Long: `Submit a badge identifier to the scan pipeline.

The scan is accepted asynchronously; whether it started a session shows
up on the event stream (see 'ringctl events') and in 'ringctl session'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"candidate": args[0]}

			if err := client.Post("/api/v1/scan", body, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Scan accepted")
			return nil
		},
	}
}
