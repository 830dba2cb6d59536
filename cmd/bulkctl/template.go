package main

import (
	"fmt"
	"os"

	"github.com/mohammadpnp/user-bulkops/internal/application/bulk"
	"github.com/spf13/cobra"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the header-only CSV import template",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := bulk.NewDownloadImportTemplate().Execute(cmd.Context())
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("out")
		if path == "" {
			path = out.FileName
		}
		if path == "-" {
			_, err := cmd.OutOrStdout().Write(out.Content)
			return err
		}
		if err := os.WriteFile(path, out.Content, 0o644); err != nil {
			return fmt.Errorf("write template: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	templateCmd.Flags().String("out", "", `output file, "-" for stdout`)
	rootCmd.AddCommand(templateCmd)
}
