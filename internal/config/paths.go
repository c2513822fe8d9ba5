package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".ircrelay"

// Paths holds resolved filesystem paths for relay configuration.
type Paths struct {
	Base    string // ~/.ircrelay
	Config  string // ~/.ircrelay/config.yaml
	EnvFile string // ./.env
}

// ResolvePaths computes the standard paths from the home directory.
// If IRCRELAY_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("IRCRELAY_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:    base,
		Config:  filepath.Join(base, "config.yaml"),
		EnvFile: ".env",
	}, nil
}
