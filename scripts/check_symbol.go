package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"stockbar/pkg/fx"
	"stockbar/pkg/quote/yahoo"
)

// Smoke check: fetch one symbol straight from the quote API and print what
// the tracker would record. Usage: go run ./scripts SYMBOL [SYMBOL...]
func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"AAPL"}
	}

	provider := yahoo.NewProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, raw := range args {
		symbol := strings.ToUpper(strings.TrimSpace(raw))
		q, err := provider.Single(ctx, symbol)
		if err != nil {
			fmt.Printf("%-10s ERROR %v\n", symbol, err)
			continue
		}
		price, currency := q.Price, q.Currency
		if fx.IsPence(currency) {
			price, currency = fx.NormalizePence(price, currency)
		}
		fmt.Printf("%-10s %.4f %s (prev close %.4f, fetched %s)\n",
			symbol, price, currency, q.PrevClose, q.FetchedAt.Format(time.RFC3339))
	}
}
