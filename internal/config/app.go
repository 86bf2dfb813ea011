package config

import (
	"github.com/spf13/viper"
)

// Defaults of the keys the books command reads.
const (
	DefaultDatabasePath = "~/.local/share/books/books.db"
	DefaultExportDir    = "."
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
)

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("export.dir", DefaultExportDir)
	v.SetDefault("export.legacy_csv", false)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("plaid.environment", "sandbox")
}

// DatabasePath returns the expanded SQLite path.
func DatabasePath() string {
	return ExpandPath(viper.GetString("database.path"))
}

// ExportDir returns the expanded export directory.
func ExportDir() string {
	return ExpandPath(viper.GetString("export.dir"))
}
