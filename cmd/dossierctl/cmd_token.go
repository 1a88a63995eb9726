package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/dossier/internal/auth"
)

var tokenFlags struct {
	user  string
	admin bool
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&tokenFlags.user, "user", "", "User id recorded on document actions (required)")
	f.BoolVar(&tokenFlags.admin, "admin", false, "Allow approval, issuance and verification")

	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	token, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL).Issue(tokenFlags.user, tokenFlags.admin)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)

	return nil
}
