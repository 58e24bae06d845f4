// Package config loads the daemon configuration from config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const fileName = "config.toml"

// Config holds daemon configuration. Zero values fall back to defaults.
type Config struct {
	HTTPAddr     string   `toml:"http_addr"`
	LibrespotURL string   `toml:"librespot_url"`
	APIBaseURL   string   `toml:"api_base_url"`
	APIToken     string   `toml:"api_token"`
	Zeroconf     Zeroconf `toml:"zeroconf"`
}

// Zeroconf controls mDNS advertisement of the status API.
type Zeroconf struct {
	Enabled bool   `toml:"enabled"`
	Name    string `toml:"name"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr:     "127.0.0.1:2358",
		LibrespotURL: "http://127.0.0.1:3678",
		APIBaseURL:   "https://api.spotify.com/v1",
		Zeroconf: Zeroconf{
			Enabled: true,
			Name:    "mprisd",
		},
	}
}

// Dir returns the daemon's configuration directory, honoring
// XDG_CONFIG_HOME.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mprisd"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "mprisd"), nil
}

// Load reads config.toml from dir, layered over the defaults. A missing
// file yields the defaults; a malformed file is an error.
func Load(dir string) (Config, error) {
	cfg := Default()
	path := filepath.Join(dir, fileName)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, err
	}
	if info.IsDir() {
		return Config{}, fmt.Errorf("config path %s is a directory", path)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
