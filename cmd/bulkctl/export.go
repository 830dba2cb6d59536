package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mohammadpnp/user-bulkops/internal/application/bulk"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export users matching the filters to a CSV file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("status", "", "only users with this status")
	exportCmd.Flags().String("role", "", "only users with this role")
	exportCmd.Flags().String("search", "", "free-text match on name or email")
	exportCmd.Flags().String("from", "", "created on or after (YYYY-MM-DD or RFC3339)")
	exportCmd.Flags().String("to", "", "created on or before (YYYY-MM-DD or RFC3339)")
	exportCmd.Flags().StringSlice("fields", nil, "columns to write, in order")
	exportCmd.Flags().String("out", "", "output file (defaults to bulk.export_file_name)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	admin, err := requireAdmin()
	if err != nil {
		return err
	}

	from, err := parseDate(cmd, "from")
	if err != nil {
		return err
	}
	to, err := parseDate(cmd, "to")
	if err != nil {
		return err
	}
	status, _ := cmd.Flags().GetString("status")
	role, _ := cmd.Flags().GetString("role")
	search, _ := cmd.Flags().GetString("search")
	fields, _ := cmd.Flags().GetStringSlice("fields")
	outPath, _ := cmd.Flags().GetString("out")

	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	out, err := s.services.Bulk.Export.Execute(ctx, bulk.ExportUsersToCSVInput{
		Admin:       admin,
		Status:      status,
		Role:        role,
		Search:      search,
		CreatedFrom: from,
		CreatedTo:   to,
		Fields:      fields,
		FileName:    filepath.Base(outPath),
	})
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = out.FileName
	} else {
		outPath = filepath.Join(filepath.Dir(outPath), out.FileName)
	}
	if err := os.WriteFile(outPath, out.Content, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d users to %s\n", out.Count, outPath)
	return nil
}

func parseDate(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("--%s must be YYYY-MM-DD or RFC3339", name)
}
