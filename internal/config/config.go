package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional doopie configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DefaultsConfig holds persistent flag defaults. A nil field means the
// key was absent and the built-in default applies.
type DefaultsConfig struct {
	Workers     *int     `toml:"workers"`
	Hash        *string  `toml:"hash"`
	MinSize     *string  `toml:"min_size"`
	MaxSize     *string  `toml:"max_size"`
	BWLimit     *string  `toml:"bwlimit"`
	Progress    *bool    `toml:"progress"`
	OutputInCwd *bool    `toml:"output_in_cwd"`
	Ignore      []string `toml:"ignore"`
}

// ThemeConfig holds optional color overrides for the summary table.
type ThemeConfig struct {
	Title     *string `toml:"title"`
	Label     *string `toml:"label"`
	Value     *string `toml:"value"`
	Unique    *string `toml:"unique"`
	Duplicate *string `toml:"duplicate"`
	Border    *string `toml:"border"`
}

// ConfigPath returns the resolved path to the config file.
func ConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "doopie", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path. A missing file yields a zero
// Config and no error.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
