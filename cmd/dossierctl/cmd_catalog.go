package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/dossier/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the built-in document catalog",
}

var catalogTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List document templates",
	Args:  cobra.NoArgs,
	RunE:  runCatalogTemplates,
}

var catalogUploadsCmd = &cobra.Command{
	Use:   "uploads",
	Short: "List upload configurations",
	Args:  cobra.NoArgs,
	RunE:  runCatalogUploads,
}

var catalogFlags struct {
	scope string
}

func init() {
	catalogUploadsCmd.Flags().StringVar(&catalogFlags.scope, "scope", "", "Only show configurations of this scope")

	catalogCmd.AddCommand(catalogTemplatesCmd)
	catalogCmd.AddCommand(catalogUploadsCmd)
}

func runCatalogTemplates(cmd *cobra.Command, _ []string) error {
	reg, err := catalog.Default()
	if err != nil {
		return err
	}

	var rows [][]string

	for _, t := range reg.Templates() {
		validity := "permanent"
		if t.ValidityDays != nil {
			validity = strconv.Itoa(*t.ValidityDays) + "d"
		}

		rows = append(rows, []string{
			t.Type,
			t.Prefix,
			string(t.Category),
			yesNo(t.RequiresApproval),
			validity,
			formats(t.Formats),
		})
	}

	printTable(cmd.OutOrStdout(), []string{"TYPE", "PREFIX", "CATEGORY", "APPROVAL", "VALIDITY", "FORMATS"}, rows)

	return nil
}

func runCatalogUploads(cmd *cobra.Command, _ []string) error {
	reg, err := catalog.Default()
	if err != nil {
		return err
	}

	var rows [][]string

	for _, u := range reg.UploadConfigs() {
		if catalogFlags.scope != "" && string(u.Scope) != catalogFlags.scope {
			continue
		}

		rows = append(rows, []string{
			u.Type,
			string(u.Scope),
			yesNo(u.Required),
			yesNo(u.RequiresVerification),
			u.MaxFileSizeMB.String() + " MB",
			formats(u.AllowedFormats),
		})
	}

	printTable(cmd.OutOrStdout(), []string{"TYPE", "SCOPE", "REQUIRED", "VERIFY", "MAX SIZE", "FORMATS"}, rows)

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

func formats(fs []catalog.Format) string {
	s := make([]string, len(fs))
	for i, f := range fs {
		s[i] = string(f)
	}

	return strings.Join(s, ",")
}
