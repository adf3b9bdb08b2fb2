package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"signaltracker/src/auth"
	"signaltracker/src/engine"
	"signaltracker/src/model"
	"signaltracker/src/repository"
)

type stockStore interface {
	Create(ctx context.Context, stock *model.TrackedStock) error
	DeleteByIDAndUser(ctx context.Context, id, userID uint) error
	ListByUser(ctx context.Context, userID uint) ([]model.TrackedStock, error)
}

type initialPriceFetcher interface {
	FetchInitialPrice(ctx context.Context, symbol string) *decimal.Decimal
}

// TrackStockHandler creates a tracked stock for the authenticated user.
// The first price is fetched best-effort; a failed fetch still tracks the
// stock with a null last price.
func TrackStockHandler(repo stockStore, prices initialPriceFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload model.TrackStockPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid track stock payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		symbol := strings.ToUpper(strings.TrimSpace(payload.Symbol))
		if symbol == "" || payload.BuyAbove.IsZero() || payload.SellBelow.IsZero() {
			http.Error(w, "Missing required fields: symbol, buyAbove, sellBelow", http.StatusBadRequest)
			return
		}
		if payload.BuyAbove.IsNegative() || payload.SellBelow.IsNegative() {
			http.Error(w, "Thresholds must be positive", http.StatusBadRequest)
			return
		}

		stock := &model.TrackedStock{
			UserID:    user.ID,
			Symbol:    symbol,
			BuyAbove:  payload.BuyAbove,
			SellBelow: payload.SellBelow,
			LastPrice: prices.FetchInitialPrice(r.Context(), symbol),
			Status:    model.StockStatusWatching,
		}

		if err := repo.Create(r.Context(), stock); err != nil {
			logger.WithError(err).Error("failed to track stock")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{"stock": stock}); err != nil {
			logger.WithError(err).Error("failed to encode track stock response")
		}
	}
}

// UntrackStockHandler hard-deletes a tracked stock owned by the caller.
// Works at any point of the lifecycle, including while a signal is pending.
func UntrackStockHandler(repo stockStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload model.UntrackStockPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil || payload.StockID == 0 {
			http.Error(w, "Missing required field: stockId", http.StatusBadRequest)
			return
		}

		if err := repo.DeleteByIDAndUser(r.Context(), payload.StockID, user.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				http.Error(w, "Stock not found", http.StatusNotFound)
				return
			}
			logger.WithError(err).Error("failed to untrack stock")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]bool{"success": true}); err != nil {
			logger.WithError(err).Error("failed to encode untrack response")
		}
	}
}

// ListStocksHandler returns the caller's tracked stocks, newest first.
func ListStocksHandler(repo stockStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		stocks, err := repo.ListByUser(r.Context(), user.ID)
		if err != nil {
			logger.WithError(err).Error("failed to list tracked stocks")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{"stocks": stocks}); err != nil {
			logger.WithError(err).Error("failed to encode stocks response")
		}
	}
}

// DefaultTrackStockHandler wires the handler to the production repository
// and the running engine.
func DefaultTrackStockHandler(eng *engine.Engine) http.HandlerFunc {
	return TrackStockHandler(repository.NewTrackedStockRepository(), eng)
}

func DefaultUntrackStockHandler() http.HandlerFunc {
	return UntrackStockHandler(repository.NewTrackedStockRepository())
}

func DefaultListStocksHandler() http.HandlerFunc {
	return ListStocksHandler(repository.NewTrackedStockRepository())
}
