package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/sheets"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("BOOKS_TEST_DIR", "/data")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~", home},
		{"~/books.db", filepath.Join(home, "books.db")},
		{"$BOOKS_TEST_DIR/books.db", "/data/books.db"},
		{"/abs/path", "/abs/path"},
		{"relative~/path", "relative~/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}

func TestSetDefaults(t *testing.T) {
	resetViper(t)
	SetDefaults(viper.GetViper())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local/share/books/books.db"), DatabasePath())
	assert.Equal(t, ".", ExportDir())
	assert.Equal(t, "info", viper.GetString("logging.level"))
	assert.False(t, viper.GetBool("export.legacy_csv"))
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Run("viper wins over environment", func(t *testing.T) {
		resetViper(t)
		t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/env/key.json")
		t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "env-id")
		viper.Set("sheets.service_account_path", "/viper/key.json")

		cfg, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.Equal(t, "/viper/key.json", cfg.ServiceAccountPath)
		assert.Equal(t, "env-id", cfg.SpreadsheetID)
		assert.Equal(t, sheets.DefaultSpreadsheetName, cfg.SpreadsheetName)
	})

	t.Run("missing credentials", func(t *testing.T) {
		resetViper(t)
		for _, name := range []string{
			"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_SHEETS_CLIENT_ID",
			"GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
		} {
			t.Setenv(name, "")
		}

		_, err := LoadSheetsConfig()
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})
}

func TestLoadPlaidConfig(t *testing.T) {
	resetViper(t)
	t.Setenv("PLAID_CLIENT_ID", "env-client")
	t.Setenv("PLAID_SECRET", "env-secret")
	t.Setenv("PLAID_ENV", "")
	t.Setenv("PLAID_ACCESS_TOKEN", "")
	viper.Set("plaid.access_token", "viper-token")

	cfg, err := LoadPlaidConfig()
	require.NoError(t, err)
	assert.Equal(t, "env-client", cfg.ClientID)
	assert.Equal(t, "viper-token", cfg.AccessToken)
	assert.Equal(t, "sandbox", cfg.Environment)

	viper.Set("plaid.environment", "staging")
	_, err = LoadPlaidConfig()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestSheetsTokenFile(t *testing.T) {
	resetViper(t)
	assert.Contains(t, SheetsTokenFile(), filepath.Join(".config", "books", "sheets-token.json"))

	viper.Set("sheets.token_file", "/tmp/token.json")
	assert.Equal(t, "/tmp/token.json", SheetsTokenFile())
}

func TestSimpleFIN(t *testing.T) {
	resetViper(t)
	t.Setenv("SIMPLEFIN_TOKEN", "env-token")
	assert.Equal(t, "env-token", SimpleFINToken())
	assert.Contains(t, SimpleFINStateFile(), filepath.Join(".local", "share", "books", "simplefin.json"))

	viper.Set("simplefin.token", "viper-token")
	viper.Set("simplefin.state_file", "/tmp/sfin.json")
	assert.Equal(t, "viper-token", SimpleFINToken())
	assert.Equal(t, "/tmp/sfin.json", SimpleFINStateFile())
}
