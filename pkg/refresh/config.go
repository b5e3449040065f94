package refresh

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"stockbar/pkg/confkit"
)

// Config tunes the refresh loops and the coordinator policy.
type Config struct {
	Strategy string `yaml:"strategy"` // "batch", "staggered" or "both"

	BatchIntervalRaw   string        `yaml:"batch_interval"`
	BatchInterval      time.Duration `yaml:"-"`
	StaggerIntervalRaw string        `yaml:"stagger_interval"`
	StaggerInterval    time.Duration `yaml:"-"`

	FreshnessRaw string        `yaml:"freshness"`
	Freshness    time.Duration `yaml:"-"`
	MaxAgeRaw    string        `yaml:"max_age"`
	MaxAge       time.Duration `yaml:"-"`

	SuspendThreshold   int           `yaml:"suspend_threshold"`
	SuspendDurationRaw string        `yaml:"suspend_duration"`
	SuspendDuration    time.Duration `yaml:"-"`

	BackoffRaw []string        `yaml:"backoff"`
	Backoff    []time.Duration `yaml:"-"`

	JournalDir string `yaml:"journal_dir"`
}

// CoordinatorConfig maps the parsed values onto the coordinator policy.
// Unset fields keep the coordinator defaults.
func (c *Config) CoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Freshness:        c.Freshness,
		MaxAge:           c.MaxAge,
		SuspendThreshold: c.SuspendThreshold,
		SuspendDuration:  c.SuspendDuration,
		Backoff:          c.Backoff,
	}
}

// LoadConfig reads refresh configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open refresh config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// MustLoad reads refresh configuration from the default project location and
// panics on error.
func MustLoad() *Config {
	path := confkit.MustProjectPath("etc/refresh.yaml")
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
		return nil, fmt.Errorf("read refresh config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal refresh config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	c.Strategy = strings.ToLower(strings.TrimSpace(os.ExpandEnv(c.Strategy)))
	switch c.Strategy {
	case "":
		c.Strategy = "both"
	case "batch", "staggered", "both":
	default:
		return fmt.Errorf("refresh config: strategy must be batch|staggered|both, got %q", c.Strategy)
	}

	var err error
	if c.BatchInterval, err = parseDuration("batch_interval", c.BatchIntervalRaw, 5*time.Minute); err != nil {
		return err
	}
	if c.StaggerInterval, err = parseDuration("stagger_interval", c.StaggerIntervalRaw, 30*time.Second); err != nil {
		return err
	}
	if c.Freshness, err = parseDuration("freshness", c.FreshnessRaw, DefaultFreshness); err != nil {
		return err
	}
	if c.MaxAge, err = parseDuration("max_age", c.MaxAgeRaw, DefaultMaxAge); err != nil {
		return err
	}
	if c.MaxAge <= c.Freshness {
		return fmt.Errorf("refresh config: max_age (%s) must exceed freshness (%s)", c.MaxAge, c.Freshness)
	}
	if c.SuspendThreshold < 0 {
		return fmt.Errorf("refresh config: suspend_threshold cannot be negative")
	}
	if c.SuspendDuration, err = parseDuration("suspend_duration", c.SuspendDurationRaw, DefaultSuspendDuration); err != nil {
		return err
	}

	if len(c.BackoffRaw) > 0 {
		c.Backoff = make([]time.Duration, 0, len(c.BackoffRaw))
		for _, raw := range c.BackoffRaw {
			d, err := time.ParseDuration(strings.TrimSpace(os.ExpandEnv(raw)))
			if err != nil {
				return fmt.Errorf("refresh config: invalid backoff entry %q: %w", raw, err)
			}
			if d <= 0 {
				return fmt.Errorf("refresh config: backoff entries must be positive, got %s", d)
			}
			c.Backoff = append(c.Backoff, d)
		}
	} else {
		c.Backoff = DefaultBackoff()
	}

	c.JournalDir = strings.TrimSpace(os.ExpandEnv(c.JournalDir))
	return nil
}

func parseDuration(field, raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(os.ExpandEnv(raw))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("refresh config: invalid %s %q: %w", field, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("refresh config: %s must be positive, got %s", field, d)
	}
	return d, nil
}
