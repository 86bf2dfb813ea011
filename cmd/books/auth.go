package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/Veraticus/the-books-must-balance/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
		Long:  `Authenticate with external services. Plaid access tokens are read from plaid.access_token.`,
	}

	cmd.AddCommand(authSheetsCmd())
	return cmd
}

func authSheetsCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets exports",
		Long: `Run the OAuth2 consent flow for Google Sheets in your browser and cache the
token. Requires sheets.client_id and sheets.client_secret (or the
GOOGLE_SHEETS_CLIENT_ID and GOOGLE_SHEETS_CLIENT_SECRET variables). Put the
printed refresh token in sheets.refresh_token to enable exports.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oauth := sheets.OAuth2Config{
				ClientID:     firstNonEmpty(viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID")),
				ClientSecret: firstNonEmpty(viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")),
				TokenFile:    config.SheetsTokenFile(),
				Port:         port,
			}
			if oauth.ClientID == "" || oauth.ClientSecret == "" {
				return common.NewUserError("sheets.client_id et sheets.client_secret sont requis", common.ErrMissingConfig)
			}

			token, err := sheets.GetOrCreateToken(cmd.Context(), oauth)
			if err != nil {
				return fmt.Errorf("google sheets authorization failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("Google Sheets autorisé, jeton enregistré dans "+oauth.TokenFile))
			if token.RefreshToken != "" {
				fmt.Fprintln(out, cli.RenderBox("sheets.refresh_token", token.RefreshToken))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", sheets.DefaultCallbackPort, "local port of the OAuth2 callback")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
