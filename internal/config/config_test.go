package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.alis.build/alog"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr() != ":8088" {
		t.Errorf("addr: got %q", cfg.Addr())
	}
	if cfg.BaseStatement != "SELECT c.data, c.id, c.type FROM c" {
		t.Errorf("base statement: got %q", cfg.BaseStatement)
	}
	if cfg.PlaceholderStyle != "colon" || cfg.MaxDepth != 32 || cfg.MaxBodyBytes != 1<<20 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RedisURL != "" || cfg.CacheTTL != 10*time.Minute {
		t.Errorf("cache defaults: url=%q ttl=%v", cfg.RedisURL, cfg.CacheTTL)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PLACEHOLDER_STYLE", "at")
	t.Setenv("MAX_DEPTH", "4")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr() != ":9000" || cfg.PlaceholderStyle != "at" || cfg.MaxDepth != 4 || cfg.CacheTTL != 30*time.Second {
		t.Errorf("env not applied: %+v", cfg)
	}
	if lvl, _ := cfg.Level(); lvl != alog.LevelDebug {
		t.Errorf("level: got %v", lvl)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "base_statement: SELECT * FROM wallets\nmax_body_bytes: 2048\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseStatement != "SELECT * FROM wallets" || cfg.MaxBodyBytes != 2048 {
		t.Errorf("file not applied: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"PLACEHOLDER_STYLE": "dollar",
		"MAX_DEPTH":         "0",
		"LOG_LEVEL":         "verbose",
		"CACHE_TTL":         "-1m",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s: expected error", key, val)
			}
		})
	}
}
