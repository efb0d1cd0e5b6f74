package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Bulk import players from a roster snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			var result ImportResult
			if err := client.PostRaw("/api/v1/import", data, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var outPath string

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full roster as a snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := client.GetRaw("/api/v1/export")
			if err != nil {
				return err
			}

			if outPath == "" {
				fmt.Println(string(data))
				return nil
			}

			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}
			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Exported roster to %s", outPath))
			return nil
		},
	}

	exportCmd.Flags().StringVarP(&outPath, "file", "f", "", "Write the export to a file instead of stdout")

	return exportCmd
}
