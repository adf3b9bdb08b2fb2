package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"

	"signaltracker/src/connectors"
	"signaltracker/src/engine"
	"signaltracker/src/model"
)

type signalChecker interface {
	EvaluateAll(ctx context.Context) (engine.CheckResult, error)
}

type quoteFetcher interface {
	LatestTrade(ctx context.Context, symbol string) (connectors.Quote, error)
}

// CheckSignalsHandler runs one on-demand evaluation batch and returns the
// aggregate counts. Per-symbol and per-row failures are absorbed by the
// engine; only a failure to start the batch surfaces here.
func CheckSignalsHandler(checker signalChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := checker.EvaluateAll(r.Context())
		if err != nil {
			logger.WithError(err).Error("signal check failed to start")
			http.Error(w, "Failed to fetch tracked stocks", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		response := map[string]interface{}{
			"message": "Signals checked successfully",
			"total":   result.Total,
			"updated": result.Updated,
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.WithError(err).Error("failed to encode check signals response")
		}
	}
}

// StockPriceHandler fetches the latest traded price for one symbol.
func StockPriceHandler(quotes quoteFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.StockPricePayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil || strings.TrimSpace(payload.Symbol) == "" {
			http.Error(w, "Symbol is required", http.StatusBadRequest)
			return
		}

		quote, err := quotes.LatestTrade(r.Context(), strings.ToUpper(strings.TrimSpace(payload.Symbol)))
		if err != nil {
			if errors.Is(err, connectors.ErrNoData) {
				http.Error(w, "No price data available for this symbol", http.StatusNotFound)
				return
			}
			logger.WithError(err).Error("failed to fetch stock price")
			http.Error(w, "Failed to fetch stock price", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(quote); err != nil {
			logger.WithError(err).Error("failed to encode stock price response")
		}
	}
}
