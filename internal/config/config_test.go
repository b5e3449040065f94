package config

import (
	"os"
	"path/filepath"
	"testing"

	"stockbar/pkg/fx"
	"stockbar/pkg/quote"
)

// Test_moduleConfig_envExpansion verifies that module configs expand environment
// variables correctly when loaded directly via their LoadConfig functions.
func Test_moduleConfig_envExpansion(t *testing.T) {
	dir := t.TempDir()

	// Prepare quote.yaml using env placeholders
	quoteYAML := []byte(`
default: yahoo
providers:
  yahoo:
    type: yahoo
    base_url: ${QUOTE_BASE_URL}
    timeout: ${QUOTE_TIMEOUT}
    batch_timeout: ${QUOTE_BATCH_TIMEOUT}
`)
	quotePath := filepath.Join(dir, "quote.yaml")
	if err := os.WriteFile(quotePath, quoteYAML, 0o600); err != nil {
		t.Fatalf("write quote.yaml: %v", err)
	}

	// Prepare fx.yaml using env placeholders
	fxYAML := []byte(`
base: ${FX_BASE}
base_url: ${FX_BASE_URL}
refresh_interval: 30m
timeout: 7s
`)
	fxPath := filepath.Join(dir, "fx.yaml")
	if err := os.WriteFile(fxPath, fxYAML, 0o600); err != nil {
		t.Fatalf("write fx.yaml: %v", err)
	}

	// Set envs consumed by the files above
	t.Setenv("QUOTE_BASE_URL", "https://quote.example/api")
	t.Setenv("QUOTE_TIMEOUT", "7s")
	t.Setenv("QUOTE_BATCH_TIMEOUT", "90s")
	t.Setenv("FX_BASE", "eur")
	t.Setenv("FX_BASE_URL", "https://rates.example/v6/latest")

	// Load quote config and verify env expansion
	quoteCfg, err := quote.LoadConfig(quotePath)
	if err != nil {
		t.Fatalf("quote.LoadConfig: %v", err)
	}
	p := quoteCfg.Providers["yahoo"]
	if p == nil {
		t.Fatalf("quote provider 'yahoo' missing")
	}
	if got := p.BaseURL; got != "https://quote.example/api" {
		t.Fatalf("quote BaseURL not expanded, got %q", got)
	}
	if p.Timeout.String() != "7s" || p.BatchTimeout.String() != "1m30s" {
		t.Fatalf("quote timeouts not parsed, got timeout=%s batch_timeout=%s", p.Timeout, p.BatchTimeout)
	}

	// Load FX config and verify env expansion plus code normalization
	fxCfg, err := fx.LoadConfig(fxPath)
	if err != nil {
		t.Fatalf("fx.LoadConfig: %v", err)
	}
	if got := fxCfg.Base; got != "EUR" {
		t.Fatalf("fx base not expanded and uppercased, got %q", got)
	}
	if got := fxCfg.BaseURL; got != "https://rates.example/v6/latest" {
		t.Fatalf("fx BaseURL not expanded, got %q", got)
	}
	if fxCfg.RefreshInterval.String() != "30m0s" || fxCfg.Timeout.String() != "7s" {
		t.Fatalf("fx durations not parsed, got refresh=%s timeout=%s", fxCfg.RefreshInterval, fxCfg.Timeout)
	}
}

func TestValidate_TTLBounds(t *testing.T) {
	cfg := &Config{}
	cfg.StatePath = "data/state.bin"
	cfg.TTL.Short = 0
	cfg.TTL.Medium = 60
	cfg.TTL.Long = 300
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected ttl.short validation error")
	}
}

func TestValidate_Env(t *testing.T) {
	cfg := &Config{}
	cfg.StatePath = "data/state.bin"
	cfg.TTL = CacheTTL{Short: 10, Medium: 60, Long: 300}
	cfg.Env = "staging"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected env validation error")
	}
	cfg.Env = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Env != "test" {
		t.Fatalf("empty env should default to test, got %q", cfg.Env)
	}
}
