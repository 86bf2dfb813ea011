package config

import (
	"github.com/Veraticus/the-books-must-balance/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration. Values set through
// viper (config file or BOOKS_ variables) win over GOOGLE_SHEETS_*
// variables, which win over defaults.
func LoadSheetsConfig() (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()
	cfg.SpreadsheetName = ""

	cfg.ServiceAccountPath = ExpandPath(viper.GetString("sheets.service_account_path"))
	cfg.ClientID = viper.GetString("sheets.client_id")
	cfg.ClientSecret = viper.GetString("sheets.client_secret")
	cfg.RefreshToken = viper.GetString("sheets.refresh_token")
	cfg.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	cfg.SpreadsheetName = viper.GetString("sheets.spreadsheet_name")
	if tz := viper.GetString("sheets.time_zone"); tz != "" {
		cfg.TimeZone = tz
	}

	cfg.LoadFromEnv()
	cfg.ServiceAccountPath = ExpandPath(cfg.ServiceAccountPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SheetsTokenFile is where the interactive OAuth2 flow caches its token.
func SheetsTokenFile() string {
	if path := viper.GetString("sheets.token_file"); path != "" {
		return ExpandPath(path)
	}
	return ExpandPath("~/.config/books/sheets-token.json")
}
