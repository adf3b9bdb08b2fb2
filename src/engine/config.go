package engine

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	MaxConcurrentFetches int           `envconfig:"MAX_CONCURRENT_FETCHES" default:"4"`
	QuoteFetchTimeout    time.Duration `envconfig:"QUOTE_FETCH_TIMEOUT" default:"10s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
