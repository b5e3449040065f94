package config_test

import (
	"os"
	"path/filepath"
	"testing"

	appconfig "stockbar/internal/config"
	"stockbar/internal/svc"
	_ "stockbar/pkg/quote/sim"
)

func TestMustLoadAndProviders(t *testing.T) {
	// Compose a full main config in a temp dir together with its section
	// files, then load it end to end through conf.Load.
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	write("quote.yaml", `
default: sim
providers:
  sim:
    type: sim
`)
	write("refresh.yaml", `
strategy: batch
batch_interval: 5m
`)
	write("portfolio.yaml", `
preferred_currency: USD
holdings:
  - symbol: AAPL
    quantity: 2
    avg_cost: 100
    cost_currency: USD
`)

	mainYAML := "" +
		"Name: test\n" +
		"Host: 127.0.0.1\n" +
		"Port: 0\n" +
		"StatePath: " + filepath.Join(dir, "state.bin") + "\n" +
		"TTL:\n  Short: 10\n  Medium: 60\n  Long: 300\n\n" +
		"Quote:\n  File: quote.yaml\n\n" +
		"Refresh:\n  File: refresh.yaml\n\n" +
		"Portfolio:\n  File: portfolio.yaml\n"
	mainPath := write("stockbar.yaml", mainYAML)

	cfg, err := appconfig.Load(mainPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if cfg.Quote.Value == nil || cfg.Refresh.Value == nil || cfg.Portfolio.Value == nil {
		t.Fatalf("sections not hydrated: %+v", cfg)
	}

	// ServiceContext should build providers and wire the orchestrator.
	sc := svc.NewServiceContext(cfg)

	if len(sc.QuoteProviders) == 0 {
		t.Fatalf("no quote providers built")
	}
	if sc.DefaultQuote == nil {
		t.Fatalf("default quote provider not wired")
	}
	if sc.Orchestrator == nil || sc.Coordinator == nil {
		t.Fatalf("refresh pipeline not wired")
	}
	if got := sc.Book.Symbols(); len(got) != 1 || got[0] != "AAPL" {
		t.Fatalf("book symbols = %v, want [AAPL]", got)
	}
}
