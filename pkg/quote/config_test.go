package quote_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stockbar/pkg/quote"
	_ "stockbar/pkg/quote/sim"
)

const simOnlyConfig = `
default: sim
providers:
  sim:
    type: sim
`

func TestLoadConfigFromReader(t *testing.T) {
	t.Setenv("QUOTE_TEST_TIMEOUT", "90s")
	cfg, err := quote.LoadConfigFromReader(strings.NewReader(`
default: sim
providers:
  sim:
    type: sim
    timeout: ${QUOTE_TEST_TIMEOUT}
    batch_timeout: 2m
`))
	require.NoError(t, err)
	require.Equal(t, "sim", cfg.Default)

	p := cfg.Providers["sim"]
	require.NotNil(t, p)
	require.Equal(t, 90*time.Second, p.Timeout)
	require.Equal(t, 2*time.Minute, p.BatchTimeout)
}

func TestLoadConfigRejectsUnsupportedType(t *testing.T) {
	_, err := quote.LoadConfigFromReader(strings.NewReader(`
providers:
  broken:
    type: telegraph
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported type")
}

func TestLoadConfigRejectsUnknownDefault(t *testing.T) {
	_, err := quote.LoadConfigFromReader(strings.NewReader(`
default: missing
providers:
  sim:
    type: sim
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "default provider")
}

func TestLoadConfigRejectsEmptyProviders(t *testing.T) {
	_, err := quote.LoadConfigFromReader(strings.NewReader(`providers: {}`))
	require.Error(t, err)
}

func TestLoadConfigRejectsNonPositiveTimeout(t *testing.T) {
	_, err := quote.LoadConfigFromReader(strings.NewReader(`
providers:
  sim:
    type: sim
    timeout: -5s
`))
	require.Error(t, err)
}

func TestBuildProviders(t *testing.T) {
	cfg, err := quote.LoadConfigFromReader(strings.NewReader(simOnlyConfig))
	require.NoError(t, err)

	providers, err := cfg.BuildProviders()
	require.NoError(t, err)
	require.Len(t, providers, 1)
	require.NotNil(t, providers["sim"])
}
