package connectors

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nntaoli-project/goex"
	"github.com/nntaoli-project/goex/binance"
	"github.com/shopspring/decimal"
)

// BinanceClient serves crypto tickers through goex. No credentials needed for
// public ticker data.
type BinanceClient struct {
	exchange      goex.API
	quoteCurrency string
}

func NewBinanceClient(quoteCurrency string, timeout time.Duration) *BinanceClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	apiConfig := &goex.APIConfig{
		HttpClient: &http.Client{Timeout: timeout},
		Endpoint:   binance.GLOBAL_API_BASE_URL,
	}
	if strings.TrimSpace(quoteCurrency) == "" {
		quoteCurrency = "USDT"
	}
	return &BinanceClient{
		exchange:      binance.NewWithConfig(apiConfig),
		quoteCurrency: strings.ToUpper(quoteCurrency),
	}
}

// LatestTrade maps the symbol to a goex currency pair and reads the ticker.
// "BTC_USDT" is taken as-is; "BTC" is paired with the configured quote
// currency.
func (c *BinanceClient) LatestTrade(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, fmt.Errorf("%w: empty symbol", ErrNoData)
	}
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}

	pairName := symbol
	if !strings.Contains(pairName, "_") {
		pairName = symbol + "_" + c.quoteCurrency
	}
	pair := goex.NewCurrencyPair2(pairName)

	ticker, err := c.exchange.GetTicker(pair)
	if err != nil {
		return Quote{}, fmt.Errorf("binance ticker for %s failed: %w", symbol, err)
	}
	if ticker == nil || ticker.Last <= 0 {
		return Quote{}, fmt.Errorf("symbol %s: %w", symbol, ErrNoData)
	}

	observedAt := time.Now().UTC()
	if ticker.Date > 0 {
		observedAt = time.UnixMilli(int64(ticker.Date)).UTC()
	}

	return Quote{
		Symbol:     symbol,
		Price:      decimal.NewFromFloat(ticker.Last),
		ObservedAt: observedAt,
	}, nil
}
