// dossierctl administers a dossier deployment: schema migration, catalog inspection,
// number counters, expiry reports and API tokens.
//
// Usage:
//
//	dossierctl migrate
//	dossierctl catalog templates|uploads
//	dossierctl counters
//	dossierctl expiring [--days=30]
//	dossierctl requirements <scope> [entity-id]
//	dossierctl token --user=<id> [--admin]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "dossierctl",
	Short: "Administer the association document service",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(countersCmd)
	rootCmd.AddCommand(expiringCmd)
	rootCmd.AddCommand(requirementsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
