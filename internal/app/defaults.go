package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that relocate shelf's files.
const (
	EnvConfigPath = "SHELF_CONFIG_PATH" // config file, default ~/.config/shelf.toml
	EnvHome       = "SHELF_HOME"        // data, logs and keys, default ~/.local/share/shelf
)

// Defaults are the locations used before a config file exists.
type Defaults struct {
	ConfigPath string
	BaseDir    string
}

// LogDir is where the log file goes under BaseDir.
func (d Defaults) LogDir() string {
	return filepath.Join(d.BaseDir, "log")
}

// GetDefaults resolves the default locations. The environment variables win;
// otherwise paths are placed under the user's home directory following XDG
// conventions.
func GetDefaults() (Defaults, error) {
	d := Defaults{
		ConfigPath: os.Getenv(EnvConfigPath),
		BaseDir:    os.Getenv(EnvHome),
	}
	if d.ConfigPath != "" && d.BaseDir != "" {
		return d, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Defaults{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	if d.ConfigPath == "" {
		d.ConfigPath = filepath.Join(home, ".config", "shelf.toml")
	}
	if d.BaseDir == "" {
		d.BaseDir = filepath.Join(home, ".local", "share", "shelf")
	}
	return d, nil
}
