package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var expiringFlags struct {
	days int
}

var expiringCmd = &cobra.Command{
	Use:   "expiring",
	Short: "List issued documents and uploads that expire soon",
	Args:  cobra.NoArgs,
	RunE:  runExpiring,
}

func init() {
	expiringCmd.Flags().IntVar(&expiringFlags.days, "days", 0, "Window in days (default EXPIRY_WINDOW_DAYS)")
}

func runExpiring(cmd *cobra.Command, _ []string) error {
	a, cfg, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	days := expiringFlags.days
	if !cmd.Flags().Changed("days") {
		days = cfg.Documents.ExpiryWindowDays
	}

	if days < 0 {
		return fmt.Errorf("--days must not be negative")
	}

	generated, err := a.Documents.Expiring(cmd.Context(), days)
	if err != nil {
		return err
	}

	uploads, err := a.Documents.ExpiringUploaded(cmd.Context(), days)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(generated)+len(uploads) == 0 {
		fmt.Fprintf(out, "Nothing expires in the next %d days.\n", days)
		return nil
	}

	var rows [][]string

	for _, d := range generated {
		rows = append(rows, []string{"generated", d.DocumentNumber, d.TemplateType, d.MemberID, d.ValidUntil.Format(time.DateOnly)})
	}

	for _, u := range uploads {
		rows = append(rows, []string{"uploaded", u.ID.String()[:8], u.DocumentType, u.LinkedEntityID, u.ExpiryDate.Format(time.DateOnly)})
	}

	printTable(out, []string{"SOURCE", "REF", "TYPE", "ENTITY", "EXPIRES"}, rows)

	return nil
}
