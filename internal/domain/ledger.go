package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// balances and amounts travel as plain JSON numbers on the wire
	decimal.MarshalJSONWithoutQuotes = true
}

// Ledger is a per-account book tracking a metal balance in grams and a
// cash balance in currency units. Balances change only when the store
// applies a transaction; readers always receive snapshots.
type Ledger struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MetalBalance decimal.Decimal `json:"metalBalance"`
	CashBalance  decimal.Decimal `json:"cashBalance"`
	LastUpdated  time.Time       `json:"lastUpdated"`
}
