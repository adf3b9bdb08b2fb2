package model

import "github.com/shopspring/decimal"

// TrackStockPayload is the request body for POST /api/stocks/track.
// Field names mirror the frontend form.
type TrackStockPayload struct {
	Symbol    string          `json:"symbol"`
	BuyAbove  decimal.Decimal `json:"buyAbove"`
	SellBelow decimal.Decimal `json:"sellBelow"`
}

// UntrackStockPayload is the request body for POST /api/stocks/untrack.
type UntrackStockPayload struct {
	StockID uint `json:"stockId"`
}

// StockPricePayload is the request body for POST /api/stocks/price.
type StockPricePayload struct {
	Symbol string `json:"symbol"`
}

type RegisterPayload struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginPayload struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}
