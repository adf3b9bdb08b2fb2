package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Provider        string        `envconfig:"QUOTE_PROVIDER" default:"alpaca"`
	AlpacaAPIKey    string        `envconfig:"ALPACA_API_KEY"`
	AlpacaAPISecret string        `envconfig:"ALPACA_SECRET_KEY"`
	AlpacaBaseURL   string        `envconfig:"ALPACA_BASE_URL" default:"https://paper-api.alpaca.markets"`
	QuoteCurrency   string        `envconfig:"QUOTE_CURRENCY" default:"USDT"`
	QuoteTimeout    time.Duration `envconfig:"QUOTE_TIMEOUT" default:"10s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
