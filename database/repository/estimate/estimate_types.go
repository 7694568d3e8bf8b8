package estimate

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const defaultHistoryLimit = 50

var (
	// ErrItemIDRequired is returned when an estimate has no item id
	ErrItemIDRequired = errors.New("item id is required")

	errCurrencyCode = errors.New("currency code must be three letters")
)

// Data is a single stored fee estimate
type Data struct {
	ID                string          `json:"id"`
	ItemID            string          `json:"itemID"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	TotalFee          decimal.Decimal `json:"totalFee"`
	SellingPrice      string          `json:"sellingPrice"`
	Shipping          string          `json:"shipping"`
	Status            string          `json:"status"`
	RequestIdentifier string          `json:"requestIdentifier"`
	CreatedAt         time.Time       `json:"createdAt"`
}
