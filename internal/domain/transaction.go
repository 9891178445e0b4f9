package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TxType classifies a transaction request. The six variants are terminal:
// a transaction never changes its type after creation.
type TxType string

const (
	TxPurchase      TxType = "purchase"
	TxSale          TxType = "sale"
	TxMetalReceived TxType = "metal_received"
	TxMetalGiven    TxType = "metal_given"
	TxCashReceived  TxType = "cash_received"
	TxCashGiven     TxType = "cash_given"
)

// ParseTxType converts a wire tag into a TxType, rejecting anything
// outside the six known variants.
func ParseTxType(s string) (TxType, error) {
	switch t := TxType(s); t {
	case TxPurchase, TxSale, TxMetalReceived, TxMetalGiven, TxCashReceived, TxCashGiven:
		return t, nil
	default:
		return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown transaction type %q", s)}
	}
}

// WeightBearing reports whether gross weight and purity are meaningful
// for this transaction type.
func (t TxType) WeightBearing() bool {
	switch t {
	case TxPurchase, TxSale, TxMetalReceived, TxMetalGiven:
		return true
	}
	return false
}

// AmountBearing reports whether amount, rate and paid amount are
// meaningful for this transaction type.
func (t TxType) AmountBearing() bool {
	switch t {
	case TxPurchase, TxSale, TxCashReceived, TxCashGiven:
		return true
	}
	return false
}

// Transaction is a single bullion trade against a ledger. Optional
// inputs are pointers so that "absent" and "zero" stay distinguishable;
// PureWeight, RoundedAmount and Balance are derived by the pipeline,
// never supplied by callers.
type Transaction struct {
	ID       string `json:"id"`
	LedgerID string `json:"ledgerId"`
	Type     TxType `json:"type"`

	GrossWeight *decimal.Decimal `json:"grossWeight,omitempty"`
	Purity      *decimal.Decimal `json:"purity,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	PaidAmount  *decimal.Decimal `json:"paidAmount,omitempty"`

	PureWeight    *decimal.Decimal `json:"pureWeight,omitempty"`
	RoundedAmount *decimal.Decimal `json:"roundedAmount,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
