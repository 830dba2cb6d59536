package main

import (
	"fmt"
	"io"

	"github.com/mohammadpnp/user-bulkops/internal/application/bulk"
	"github.com/mohammadpnp/user-bulkops/internal/infrastructure/file"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import users from a local CSV file",
	Example: `  bulkctl import --admin 0b6a3c55-1d7e-4a4c-9d3c-5c2f0c7e9a10 --file users.csv --dry-run
  bulkctl import --admin <uuid> --file legacy.csv --map "E-mail=email" --update-existing`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("file", "", "CSV file to import (relative to bulk.import_base_dir)")
	importCmd.Flags().Bool("dry-run", false, "report outcomes without writing anything")
	importCmd.Flags().Bool("update-existing", false, "update users whose email already exists")
	importCmd.Flags().StringToString("map", nil, "rename CSV headers, header=field")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	admin, err := requireAdmin()
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	updateExisting, _ := cmd.Flags().GetBool("update-existing")
	mapping, _ := cmd.Flags().GetStringToString("map")

	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	upload, err := file.NewLocalSource(s.cfg.Bulk.ImportBaseDir).Open(ctx, path)
	if err != nil {
		return err
	}
	defer upload.Close()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Importing "+upload.Name),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	out, err := s.services.Bulk.Import.Execute(ctx, bulk.ImportUsersFromCSVInput{
		Admin:          admin,
		ContentType:    upload.ContentType,
		File:           upload,
		DryRun:         dryRun,
		UpdateExisting: updateExisting,
		FieldMapping:   mapping,
		Progress:       bar,
	})
	_ = bar.Finish()
	if err != nil {
		// Rows before an infrastructure fault stay committed; show them.
		if out.Result != nil {
			printBatch(cmd.OutOrStdout(), out)
		}
		return err
	}

	printBatch(cmd.OutOrStdout(), out)
	if !out.Decision.Success {
		return fmt.Errorf("import finished with status %s", out.Decision.Status)
	}
	return nil
}

func printBatch(w io.Writer, out bulk.BatchOutput) {
	r := out.Result
	status := string(out.Decision.Status)
	if status == "" {
		status = "aborted"
	}
	fmt.Fprintf(w, "batch %s: %s\n", out.BatchID, status)
	fmt.Fprintf(w, "processed=%d successful=%d failed=%d skipped=%d\n",
		r.TotalProcessed, r.TotalSuccessful, r.TotalFailed, r.TotalSkipped)
	for _, o := range r.Failed {
		fmt.Fprintf(w, "  row %d %s: %s\n", o.Row, o.Email, o.Error)
	}
	for _, o := range r.SkippedRows {
		fmt.Fprintf(w, "  row %d %s skipped: %s\n", o.Row, o.Email, o.Reason)
	}
}
