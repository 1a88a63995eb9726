package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
)

var requirementsCmd = &cobra.Command{
	Use:   "requirements <scope> [entity-id]",
	Short: "Check which required uploads an entity has",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runRequirements,
}

func runRequirements(cmd *cobra.Command, args []string) error {
	a, _, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	var entityID string
	if len(args) == 2 {
		entityID = args[1]
	}

	res, err := a.Documents.CheckRequirements(cmd.Context(), catalog.Scope(args[0]), entityID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Completion: %d%% (%d of %d)\n", res.CompletionPercentage, len(res.Required)-len(res.Missing), len(res.Required))
	fmt.Fprintf(out, "Missing:    %s\n", list(res.Missing))
	fmt.Fprintf(out, "Expired:    %s\n", list(res.Expired))
	fmt.Fprintf(out, "Pending:    %s\n", list(res.Pending))

	return nil
}

func list(s []string) string {
	if len(s) == 0 {
		return "-"
	}

	return strings.Join(s, ", ")
}
