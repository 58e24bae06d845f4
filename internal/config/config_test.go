package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ncspot/mprisd/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	def := config.Default()
	if cfg != def {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, def)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
http_addr = "0.0.0.0:9000"
api_token = "secret"

[zeroconf]
enabled = false
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != "0.0.0.0:9000" {
		t.Errorf("HTTPAddr = %s", cfg.HTTPAddr)
	}
	if cfg.APIToken != "secret" {
		t.Errorf("APIToken = %s", cfg.APIToken)
	}
	if cfg.Zeroconf.Enabled {
		t.Error("zeroconf not disabled")
	}
	// Untouched keys keep their defaults.
	if cfg.LibrespotURL != config.Default().LibrespotURL {
		t.Errorf("LibrespotURL = %s", cfg.LibrespotURL)
	}
	if cfg.Zeroconf.Name != "mprisd" {
		t.Errorf("Zeroconf.Name = %s", cfg.Zeroconf.Name)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(dir); err == nil {
		t.Error("malformed config did not error")
	}
}

func TestDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := config.Dir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "mprisd") {
		t.Errorf("dir = %s", dir)
	}
}
