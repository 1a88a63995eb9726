package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/dossier/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the PostgreSQL schema",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Store.Driver != "postgres" {
		return errors.New("migrate needs STORE_DRIVER=postgres")
	}

	db, err := database.New(cmd.Context(), cfg.ConnectionString(), cfg.DBPool())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(cmd.Context(), db); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "schema applied to %s@%s/%s\n", cfg.DB.User, cfg.DB.Host, cfg.DB.Name)

	return nil
}
