package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/dossier/internal/document"
)

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Show the document number sequences",
	Args:  cobra.NoArgs,
	RunE:  runCounters,
}

func runCounters(cmd *cobra.Command, _ []string) error {
	a, _, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	counters, err := a.Documents.Counters(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(counters) == 0 {
		fmt.Fprintln(out, "No documents numbered yet.")
		return nil
	}

	rows := make([][]string, len(counters))
	for i, c := range counters {
		rows[i] = []string{
			c.Prefix,
			strconv.Itoa(c.Year),
			strconv.FormatInt(c.Value, 10),
			document.FormatNumber(c.Prefix, c.Year, c.Value),
		}
	}

	printTable(out, []string{"PREFIX", "YEAR", "VALUE", "LAST NUMBER"}, rows)

	return nil
}
