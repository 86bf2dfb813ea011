package config

import (
	"os"

	"github.com/Veraticus/the-books-must-balance/internal/plaid"
	"github.com/spf13/viper"
)

// LoadPlaidConfig loads Plaid credentials from viper, falling back to
// PLAID_* environment variables.
func LoadPlaidConfig() (plaid.Config, error) {
	cfg := plaid.Config{
		ClientID:    firstSet(viper.GetString("plaid.client_id"), os.Getenv("PLAID_CLIENT_ID")),
		Secret:      firstSet(viper.GetString("plaid.secret"), os.Getenv("PLAID_SECRET")),
		Environment: firstSet(viper.GetString("plaid.environment"), os.Getenv("PLAID_ENV"), "sandbox"),
		AccessToken: firstSet(viper.GetString("plaid.access_token"), os.Getenv("PLAID_ACCESS_TOKEN")),
	}
	if err := cfg.Validate(); err != nil {
		return plaid.Config{}, err
	}
	return cfg, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
