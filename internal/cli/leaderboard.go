package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Leaderboard

			if err := client.Get("/api/v1/leaderboard", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster [player-id]",
		Short: "List all players, or show one player by ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			if len(args) == 1 {
				var player Player
				if err := client.Get(fmt.Sprintf("/api/v1/roster/%s", args[0]), &player); err != nil {
					return err
				}
				out.Print(player)
				return nil
			}

			var roster []Player
			if err := client.Get("/api/v1/roster", &roster); err != nil {
				return err
			}
			out.Print(roster)
			return nil
		},
	}
}
