package connectors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestAlpaca(t *testing.T, handler http.HandlerFunc) *AlpacaClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewAlpacaClient("key", "secret", srv.URL)
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	return client
}

func TestNewAlpacaClientRequiresCredentials(t *testing.T) {
	if _, err := NewAlpacaClient("", "", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if _, err := NewAlpacaClient("key", "", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials for missing secret, got %v", err)
	}
}

func TestAlpacaLatestTrade(t *testing.T) {
	client := newTestAlpaca(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/stocks/AAPL/trades/latest" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("APCA-API-KEY-ID") != "key" || r.Header.Get("APCA-API-SECRET-KEY") != "secret" {
			t.Fatal("expected credential headers on the request")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"AAPL","trade":{"price":205.13,"timestamp":"2025-06-02T15:04:05.123Z"}}`))
	})

	quote, err := client.LatestTrade(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Symbol != "AAPL" {
		t.Fatalf("expected uppercased symbol, got %q", quote.Symbol)
	}
	if !quote.Price.Equal(decimal.RequireFromString("205.13")) {
		t.Fatalf("unexpected price: %s", quote.Price)
	}
	if quote.ObservedAt.IsZero() {
		t.Fatal("expected observed_at from the trade timestamp")
	}
}

func TestAlpacaLatestTradeUnknownSymbol(t *testing.T) {
	client := newTestAlpaca(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"symbol not found"}`, http.StatusNotFound)
	})

	_, err := client.LatestTrade(context.Background(), "ZZZZ")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for 404, got %v", err)
	}
}

func TestAlpacaLatestTradeEmptyPrice(t *testing.T) {
	client := newTestAlpaca(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"HALT","trade":{}}`))
	})

	_, err := client.LatestTrade(context.Background(), "HALT")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for empty trade, got %v", err)
	}
}

func TestAlpacaLatestTradeEmptySymbol(t *testing.T) {
	client := newTestAlpaca(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty symbol")
	})

	if _, err := client.LatestTrade(context.Background(), "  "); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestNewQuoteSourceProviderSelection(t *testing.T) {
	if _, err := NewQuoteSource(Config{Provider: "carrierpigeon"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}

	src, err := NewQuoteSource(Config{Provider: "binance", QuoteCurrency: "USDT"})
	if err != nil {
		t.Fatalf("binance provider needs no credentials: %v", err)
	}
	if _, ok := src.(*BinanceClient); !ok {
		t.Fatalf("expected a BinanceClient, got %T", src)
	}

	if _, err := NewQuoteSource(Config{Provider: "alpaca"}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials for alpaca without keys, got %v", err)
	}
}
