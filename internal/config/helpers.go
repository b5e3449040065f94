package config

import (
	"stockbar/pkg/fx"
	"stockbar/pkg/portfolio"
	"stockbar/pkg/quote"
	"stockbar/pkg/refresh"
)

// MustLoadQuote loads etc/quote.yaml from the project root and panics on
// error. It isolates quote config so tests that only need a provider do not
// have to load the full application config.
func MustLoadQuote() *quote.Config {
	return quote.MustLoad()
}

// MustBuildQuoteProviders loads quote config from the default path and
// builds provider instances; returns the map and default provider name.
func MustBuildQuoteProviders() (map[string]quote.Provider, string) {
	cfg := MustLoadQuote()
	providers, err := cfg.BuildProviders()
	if err != nil {
		panic(err)
	}
	return providers, cfg.Default
}

// MustLoadFX loads etc/fx.yaml from the project root and panics on error.
func MustLoadFX() *fx.Config {
	return fx.MustLoad()
}

// MustLoadRefresh loads etc/refresh.yaml from the project root and panics on error.
func MustLoadRefresh() *refresh.Config {
	return refresh.MustLoad()
}

// MustLoadPortfolio loads etc/portfolio.yaml from the project root and panics on error.
func MustLoadPortfolio() *portfolio.Config {
	return portfolio.MustLoad()
}
