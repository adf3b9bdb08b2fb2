package connectors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the latest traded price observed for a symbol.
type Quote struct {
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"timestamp"`
}

// QuoteSource fetches the latest traded price for a symbol.
// Implementations must return ErrNoData (wrapped) when the provider has no
// usable price for the symbol, so callers can log it apart from transport
// failures.
type QuoteSource interface {
	LatestTrade(ctx context.Context, symbol string) (Quote, error)
}

// NewQuoteSource builds the provider selected by QUOTE_PROVIDER.
func NewQuoteSource(cfg Config) (QuoteSource, error) {
	switch strings.ToLower(cfg.Provider) {
	case "alpaca":
		return NewAlpacaClient(cfg.AlpacaAPIKey, cfg.AlpacaAPISecret, cfg.AlpacaBaseURL)
	case "binance":
		return NewBinanceClient(cfg.QuoteCurrency, cfg.QuoteTimeout), nil
	default:
		return nil, fmt.Errorf("quote provider %q not supported", cfg.Provider)
	}
}
