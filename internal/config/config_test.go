//go:build !integration

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"marketplace-monetization/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("omitted fields get working defaults", func(t *testing.T) {
		path := writeConfig(t, `
database:
  url: postgres://localhost/monetization
redis:
  url: localhost:6379
`)
		cfg, err := config.LoadConfig(path, false)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if cfg.Server.Port != 8080 {
			t.Errorf("port = %d, want 8080", cfg.Server.Port)
		}
		if cfg.Renewal.FreeRenewalCount != 1 {
			t.Errorf("free renewal count = %d, want 1", cfg.Renewal.FreeRenewalCount)
		}
		// A zero renewal price would silently make every paid renewal free.
		if cfg.Renewal.PriceIRR != 300_000 {
			t.Errorf("renewal price = %d, want 300000", cfg.Renewal.PriceIRR)
		}
		if cfg.Sweep.BatchLimit != 200 {
			t.Errorf("batch limit = %d, want 200", cfg.Sweep.BatchLimit)
		}
	})

	t.Run("explicit values survive the defaulting pass", func(t *testing.T) {
		path := writeConfig(t, `
database:
  url: postgres://localhost/monetization
redis:
  url: localhost:6379
renewal:
  price_irr: 450000
`)
		cfg, err := config.LoadConfig(path, false)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if cfg.Renewal.PriceIRR != 450_000 {
			t.Errorf("renewal price = %d, want 450000", cfg.Renewal.PriceIRR)
		}
	})

	t.Run("missing database url is rejected", func(t *testing.T) {
		path := writeConfig(t, `
redis:
  url: localhost:6379
`)
		if _, err := config.LoadConfig(path, false); err == nil {
			t.Fatal("expected an error for a config without database.url")
		}
	})

	t.Run("gateway enabled without a merchant id is rejected", func(t *testing.T) {
		path := writeConfig(t, `
database:
  url: postgres://localhost/monetization
redis:
  url: localhost:6379
payment:
  gateway_enabled: true
`)
		if _, err := config.LoadConfig(path, false); err == nil {
			t.Fatal("expected an error for gateway without merchant id")
		}
	})
}
