package connectors

import "errors"

var (
	// ErrNoData means the provider answered but has no usable price for the
	// symbol (unknown ticker, empty trade). Logged apart from transport
	// failures; the engine skips the symbol either way.
	ErrNoData = errors.New("no price data available")

	// ErrMissingCredentials means the provider cannot be constructed at all.
	// This is fatal for any batch, not a per-symbol failure.
	ErrMissingCredentials = errors.New("quote provider credentials not configured")
)
