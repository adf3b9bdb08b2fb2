package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StockStatusWatching   = "watching"
	StockStatusBuySignal  = "buy_signal"
	StockStatusSellSignal = "sell_signal"
)

// TrackedStock is one symbol a user watches against buy/sell thresholds.
// The signal engine is the only writer while status is "watching"; once a
// signal fires the row is terminal for the engine.
type TrackedStock struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	UserID            uint             `gorm:"index" json:"user_id"`
	Symbol            string           `gorm:"size:20;not null;index" json:"symbol"`
	BuyAbove          decimal.Decimal  `gorm:"type:numeric(18,6);not null" json:"buy_above"`
	SellBelow         decimal.Decimal  `gorm:"type:numeric(18,6);not null" json:"sell_below"`
	LastPrice         *decimal.Decimal `gorm:"type:numeric(18,6)" json:"last_price,omitempty"`
	Status            string           `gorm:"size:50;not null;default:watching" json:"status"`
	SignalTriggeredAt *time.Time       `json:"signal_triggered_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// TableName keeps the table name aligned with the original schema.
func (TrackedStock) TableName() string {
	return "tracked_stocks"
}

// IsWatching reports whether the stock is still eligible for evaluation.
func (s *TrackedStock) IsWatching() bool {
	return s.Status == StockStatusWatching
}
