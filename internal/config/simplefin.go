package config

import (
	"os"

	"github.com/spf13/viper"
)

// SimpleFINToken returns the SimpleFIN setup token from viper, falling back
// to SIMPLEFIN_TOKEN. It is only needed until the access URL is claimed.
func SimpleFINToken() string {
	return firstSet(viper.GetString("simplefin.token"), os.Getenv("SIMPLEFIN_TOKEN"))
}

// SimpleFINStateFile is where the claimed SimpleFIN access URL is kept.
func SimpleFINStateFile() string {
	if path := viper.GetString("simplefin.state_file"); path != "" {
		return ExpandPath(path)
	}
	return ExpandPath("~/.local/share/books/simplefin.json")
}
