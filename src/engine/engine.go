package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"signaltracker/src/connectors"
	"signaltracker/src/model"
)

// StockStore is the slice of the repository the engine needs: list the
// watching set and apply independent row-level updates.
type StockStore interface {
	ListWatching(ctx context.Context) ([]model.TrackedStock, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
}

// Notifier receives every stock the engine successfully persisted. Delivery
// is a side channel; the engine never depends on its outcome.
type Notifier interface {
	StockChanged(stock model.TrackedStock)
}

type noopNotifier struct{}

func (noopNotifier) StockChanged(model.TrackedStock) {}

// CheckResult is the aggregate outcome of one evaluation batch.
type CheckResult struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
}

// Engine evaluates every watching stock against freshly fetched prices.
// Symbols are fetched once per batch; per-symbol and per-row failures are
// absorbed so one bad symbol never aborts the batch.
type Engine struct {
	quotes       connectors.QuoteSource
	store        StockStore
	notifier     Notifier
	log          *logrus.Entry
	now          func() time.Time
	concurrency  int
	quoteTimeout time.Duration
}

func NewEngine(quotes connectors.QuoteSource, store StockStore, notifier Notifier, log *logrus.Entry) *Engine {
	config := GetConfig()

	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}

	concurrency := config.MaxConcurrentFetches
	if concurrency < 1 {
		concurrency = 1
	}

	return &Engine{
		quotes:       quotes,
		store:        store,
		notifier:     notifier,
		log:          log.WithField("component", "SignalEngine"),
		now:          time.Now,
		concurrency:  concurrency,
		quoteTimeout: config.QuoteFetchTimeout,
	}
}

// EvaluateAll runs one signal check over every watching stock.
// Only a failure to list the watching set is returned as an error; everything
// downstream is reflected in the counts and the logs.
func (e *Engine) EvaluateAll(ctx context.Context) (CheckResult, error) {
	log := e.log.WithField("run_id", uuid.NewString())

	stocks, err := e.store.ListWatching(ctx)
	if err != nil {
		log.WithError(err).Error("failed to list watching stocks")
		return CheckResult{}, fmt.Errorf("list watching stocks: %w", err)
	}

	result := CheckResult{Total: len(stocks)}
	if len(stocks) == 0 {
		log.Debug("no stocks being watched")
		return result, nil
	}

	log.Infof("checking signals for %d stocks", len(stocks))

	groups := groupBySymbol(stocks)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	sem := make(chan struct{}, e.concurrency)

	for symbol, group := range groups {
		wg.Add(1)
		go func(symbol string, group []model.TrackedStock) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			updated := e.evaluateGroup(ctx, log, symbol, group)

			mu.Lock()
			result.Updated += updated
			mu.Unlock()
		}(symbol, group)
	}
	wg.Wait()

	log.WithFields(logrus.Fields{
		"total":   result.Total,
		"updated": result.Updated,
	}).Info("signal check finished")

	return result, nil
}

// FetchInitialPrice is a best-effort quote for a freshly tracked symbol.
// Returns nil on any failure; the next evaluation batch fills the gap.
func (e *Engine) FetchInitialPrice(ctx context.Context, symbol string) *decimal.Decimal {
	fetchCtx, cancel := context.WithTimeout(ctx, e.quoteTimeout)
	defer cancel()

	quote, err := e.quotes.LatestTrade(fetchCtx, symbol)
	if err != nil {
		e.log.WithField("symbol", symbol).WithError(err).Warn("initial price fetch failed")
		return nil
	}
	return &quote.Price
}

// groupBySymbol partitions stocks so every position sharing a symbol is
// evaluated against the same fetched price.
func groupBySymbol(stocks []model.TrackedStock) map[string][]model.TrackedStock {
	groups := make(map[string][]model.TrackedStock, len(stocks))
	for _, stock := range stocks {
		symbol := strings.ToUpper(strings.TrimSpace(stock.Symbol))
		groups[symbol] = append(groups[symbol], stock)
	}
	return groups
}

// evaluateGroup fetches the symbol once and applies the threshold rule to
// every stock in the group. Returns how many rows were persisted.
func (e *Engine) evaluateGroup(ctx context.Context, log *logrus.Entry, symbol string, group []model.TrackedStock) int {
	fetchCtx, cancel := context.WithTimeout(ctx, e.quoteTimeout)
	defer cancel()

	quote, err := e.quotes.LatestTrade(fetchCtx, symbol)
	if err != nil {
		if errors.Is(err, connectors.ErrNoData) {
			log.WithField("symbol", symbol).Warn("no price data, skipping group")
		} else {
			log.WithField("symbol", symbol).WithError(err).Error("quote fetch failed, skipping group")
		}
		return 0
	}

	// An aborted batch must not produce partial updates from a late fetch.
	if ctx.Err() != nil {
		log.WithField("symbol", symbol).Warn("batch canceled, discarding fetched quote")
		return 0
	}

	updated := 0
	for i := range group {
		d := decide(group[i], quote.Price, e.now().UTC())

		if err := e.store.UpdateFields(ctx, d.stock.ID, d.fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.WithFields(logrus.Fields{
					"symbol":   symbol,
					"stock_id": d.stock.ID,
				}).Warn("stock vanished during evaluation, skipping")
			} else {
				log.WithFields(logrus.Fields{
					"symbol":   symbol,
					"stock_id": d.stock.ID,
				}).WithError(err).Error("failed to persist stock update")
			}
			continue
		}
		updated++

		if d.transitioned {
			log.WithFields(logrus.Fields{
				"symbol":   symbol,
				"stock_id": d.stock.ID,
				"price":    quote.Price.String(),
			}).Infof("%s triggered for %s", d.stock.Status, symbol)
		}

		e.notifier.StockChanged(d.stock)
	}
	return updated
}

type decision struct {
	stock        model.TrackedStock
	fields       map[string]interface{}
	transitioned bool
}

// decide applies the threshold rule to one stock for a fetched price.
// The buy condition is evaluated first, so it wins when misconfigured
// thresholds (sell_below >= buy_above) make both conditions true.
func decide(stock model.TrackedStock, price decimal.Decimal, now time.Time) decision {
	status := model.StockStatusWatching
	var triggeredAt *time.Time

	switch {
	case price.GreaterThanOrEqual(stock.BuyAbove):
		status = model.StockStatusBuySignal
		triggeredAt = &now
	case price.LessThanOrEqual(stock.SellBelow):
		status = model.StockStatusSellSignal
		triggeredAt = &now
	}

	stock.LastPrice = &price
	stock.Status = status
	stock.SignalTriggeredAt = triggeredAt
	stock.UpdatedAt = now

	return decision{
		stock: stock,
		fields: map[string]interface{}{
			"last_price":          price,
			"status":              status,
			"signal_triggered_at": triggeredAt,
			"updated_at":          now,
		},
		transitioned: status != model.StockStatusWatching,
	}
}
