package fx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stockbar/pkg/confkit"
)

// Config describes the exchange-rate source and refresh cadence.
type Config struct {
	Base    string `yaml:"base"`
	BaseURL string `yaml:"base_url"`

	RefreshIntervalRaw string        `yaml:"refresh_interval"`
	RefreshInterval    time.Duration `yaml:"-"`
	TimeoutRaw         string        `yaml:"timeout"`
	Timeout            time.Duration `yaml:"-"`
}

// LoadConfig reads FX configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fx config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// MustLoad reads FX configuration from the default project location and
// panics on error.
func MustLoad() *Config {
	path := confkit.MustProjectPath("etc/fx.yaml")
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
		return nil, fmt.Errorf("read fx config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal fx config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	c.Base = strings.ToUpper(strings.TrimSpace(os.ExpandEnv(c.Base)))
	if c.Base == "" {
		c.Base = DefaultBase
	}
	c.BaseURL = strings.TrimSpace(os.ExpandEnv(c.BaseURL))

	c.RefreshIntervalRaw = strings.TrimSpace(os.ExpandEnv(c.RefreshIntervalRaw))
	if c.RefreshIntervalRaw != "" {
		d, err := time.ParseDuration(c.RefreshIntervalRaw)
		if err != nil {
			return fmt.Errorf("fx config: invalid refresh_interval %q: %w", c.RefreshIntervalRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("fx config: refresh_interval must be positive, got %s", d)
		}
		c.RefreshInterval = d
	} else {
		c.RefreshInterval = time.Hour
	}

	c.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(c.TimeoutRaw))
	if c.TimeoutRaw != "" {
		d, err := time.ParseDuration(c.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("fx config: invalid timeout %q: %w", c.TimeoutRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("fx config: timeout must be positive, got %s", d)
		}
		c.Timeout = d
	} else {
		c.Timeout = 15 * time.Second
	}
	return nil
}
