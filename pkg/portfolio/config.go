package portfolio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"stockbar/pkg/confkit"
	"stockbar/pkg/fx"
)

// Config is the user's holdings file: the positions to track plus the
// display currency for aggregates.
type Config struct {
	PreferredCurrency string          `yaml:"preferred_currency"`
	Holdings          []HoldingConfig `yaml:"holdings"`
}

// HoldingConfig is one configured position.
type HoldingConfig struct {
	Symbol       string  `yaml:"symbol"`
	Quantity     float64 `yaml:"quantity"`
	AvgCost      float64 `yaml:"avg_cost"`
	CostCurrency string  `yaml:"cost_currency"`
	WatchOnly    bool    `yaml:"watch_only"`
}

// LoadConfig reads a holdings file from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open portfolio config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// MustLoad reads the holdings file from the default project location and
// panics on error.
func MustLoad() *Config {
	path := confkit.MustProjectPath("etc/portfolio.yaml")
	cfg, err := LoadConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read portfolio config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal portfolio config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	c.PreferredCurrency = strings.ToUpper(strings.TrimSpace(os.ExpandEnv(c.PreferredCurrency)))
	if c.PreferredCurrency == "" {
		c.PreferredCurrency = "USD"
	}
	for i, h := range c.Holdings {
		symbol := strings.TrimSpace(os.ExpandEnv(h.Symbol))
		if symbol == "" {
			return fmt.Errorf("portfolio config: holding %d has no symbol", i)
		}
		if h.Quantity < 0 {
			return fmt.Errorf("portfolio config: holding %s has negative quantity", symbol)
		}
		c.Holdings[i].Symbol = symbol
		c.Holdings[i].CostCurrency = strings.TrimSpace(os.ExpandEnv(h.CostCurrency))
	}
	return nil
}

// ToHoldings maps the configured entries onto book holdings. Costs for
// London-listed symbols entered without an explicit pence currency are
// assumed to be in pence, matching how their prices are quoted. That
// assumption is made only here, on values typed by the user; holdings
// restored from storage already carry pounds and pass through untouched.
func (c *Config) ToHoldings() []Holding {
	out := make([]Holding, 0, len(c.Holdings))
	for _, h := range c.Holdings {
		avgCost, costCurrency := h.AvgCost, h.CostCurrency
		if fx.IsLondonListed(h.Symbol) && (costCurrency == "" || strings.EqualFold(costCurrency, "GBP")) {
			avgCost /= 100
			costCurrency = "GBP"
		}
		out = append(out, Holding{
			Symbol:       h.Symbol,
			Quantity:     h.Quantity,
			AvgCost:      avgCost,
			CostCurrency: costCurrency,
			WatchOnly:    h.WatchOnly,
		})
	}
	return out
}
