package connectors

// REST client for the Alpaca market data API. Resty only, internal retry.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultAlpacaBaseURL = "https://paper-api.alpaca.markets"

	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 4 * time.Second
)

type alpacaTradeResponse struct {
	Symbol string `json:"symbol"`
	Trade  struct {
		Price     float64 `json:"price"`
		Timestamp string  `json:"timestamp"`
	} `json:"trade"`
}

type AlpacaClient struct {
	apiKey    string
	apiSecret string
	baseURL   string
	http      *resty.Client
}

// NewAlpacaClient builds the client or fails with ErrMissingCredentials when
// the key pair is absent. A missing key pair means no symbol can ever be
// fetched, so the caller should treat this as fatal.
func NewAlpacaClient(apiKey, apiSecret, baseURL string) (*AlpacaClient, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(apiSecret) == "" {
		return nil, ErrMissingCredentials
	}

	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultAlpacaBaseURL
		logger.Warnf("No Alpaca base URL provided, using default: %s", baseURL)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &AlpacaClient{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		http:      httpClient,
	}, nil
}

// isRetryableResp retries transport errors and 5xx. 429 is retried too since
// Alpaca rate limits burst traffic.
func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code == 429 || code >= 500
}

// LatestTrade fetches GET /v2/stocks/{symbol}/trades/latest.
func (c *AlpacaClient) LatestTrade(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, fmt.Errorf("%w: empty symbol", ErrNoData)
	}

	var out alpacaTradeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("APCA-API-KEY-ID", c.apiKey).
		SetHeader("APCA-API-SECRET-KEY", c.apiSecret).
		SetResult(&out).
		Get("/v2/stocks/" + symbol + "/trades/latest")
	if err != nil {
		return Quote{}, fmt.Errorf("alpaca request for %s failed: %w", symbol, err)
	}

	if resp.StatusCode() == 404 {
		return Quote{}, fmt.Errorf("symbol %s: %w", symbol, ErrNoData)
	}
	if !resp.IsSuccess() {
		return Quote{}, fmt.Errorf("alpaca HTTP %d for %s: %s", resp.StatusCode(), symbol, resp.String())
	}

	if out.Trade.Price <= 0 {
		return Quote{}, fmt.Errorf("symbol %s: %w", symbol, ErrNoData)
	}

	observedAt := time.Now().UTC()
	if ts, perr := time.Parse(time.RFC3339Nano, out.Trade.Timestamp); perr == nil {
		observedAt = ts
	}

	return Quote{
		Symbol:     symbol,
		Price:      decimal.NewFromFloat(out.Trade.Price),
		ObservedAt: observedAt,
	}, nil
}
