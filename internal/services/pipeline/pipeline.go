// Package pipeline implements transaction submission: validate the
// request, derive settled figures, write to the store, invalidate the
// read cache for the affected ledger.
package pipeline

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/karatops/bullionbook/internal/domain"
	"github.com/karatops/bullionbook/internal/valuation"
)

type txCreator interface {
	CreateTransaction(ctx context.Context, ledgerID string, tx domain.Transaction) (domain.Transaction, error)
}

type cacheInvalidator interface {
	Invalidate(id string)
}

// SubmitRequest carries the caller-supplied transaction fields.
// Optional numbers are pointers so an explicitly supplied zero is not
// mistaken for an absent field.
type SubmitRequest struct {
	LedgerID    string
	Type        string
	GrossWeight *decimal.Decimal
	Purity      *decimal.Decimal
	Rate        *decimal.Decimal
	Amount      *decimal.Decimal
	PaidAmount  *decimal.Decimal
}

// Submitter validates requests, computes derived fields via the
// valuation engine and submits to the store. On store success it
// invalidates the read-cache entry for the ledger; on failure the
// store's error is surfaced unchanged and the cache is left alone.
type Submitter struct {
	store txCreator
	cache cacheInvalidator
}

func NewSubmitter(store txCreator, cache cacheInvalidator) *Submitter {
	return &Submitter{store: store, cache: cache}
}

// Submit runs the full pipeline and returns the created transaction,
// including the server-assigned id and timestamp. Errors are either
// *domain.ValidationError (raised before any I/O) or whatever the
// store returned; nothing is retried.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest) (domain.Transaction, error) {
	if req.LedgerID == "" {
		return domain.Transaction{}, &domain.ValidationError{Field: "ledgerId", Reason: "must not be empty"}
	}

	txType, err := domain.ParseTxType(req.Type)
	if err != nil {
		return domain.Transaction{}, err
	}

	tx := domain.Transaction{
		LedgerID: req.LedgerID,
		Type:     txType,
	}

	// fields irrelevant for the type are dropped, not rejected
	if txType.WeightBearing() {
		if req.GrossWeight == nil {
			return domain.Transaction{}, &domain.ValidationError{Field: "grossWeight", Reason: "required for " + string(txType)}
		}
		if req.Purity != nil {
			if req.Purity.IsNegative() || req.Purity.GreaterThan(decimal.NewFromInt(100)) {
				return domain.Transaction{}, &domain.ValidationError{Field: "purity", Reason: "must lie in [0,100]"}
			}
		}

		tx.GrossWeight = req.GrossWeight
		tx.Purity = req.Purity
		if req.Purity != nil {
			pure := valuation.PureWeight(*req.GrossWeight, *req.Purity)
			tx.PureWeight = &pure
		}
	}

	if txType.AmountBearing() {
		tx.Rate = req.Rate
		tx.Amount = req.Amount
		tx.PaidAmount = req.PaidAmount

		// amount auto-derivation is a convenience only; an explicitly
		// supplied amount is authoritative and never overwritten
		if tx.Amount == nil && req.Rate != nil && tx.PureWeight != nil {
			derived := valuation.RoundToNearest5(tx.PureWeight.Mul(*req.Rate))
			tx.Amount = &derived
		}

		if tx.Amount != nil {
			rounded := valuation.RoundToNearest5(*tx.Amount)
			tx.RoundedAmount = &rounded
		}
		if tx.Amount != nil && tx.PaidAmount != nil {
			balance := valuation.Balance(*tx.Amount, *tx.PaidAmount)
			tx.Balance = &balance
		}
	}

	created, err := s.store.CreateTransaction(ctx, req.LedgerID, tx)
	if err != nil {
		return domain.Transaction{}, err
	}

	// invalidate strictly after the store acknowledged the write, so
	// the next read of this ledger observes post-write state
	s.cache.Invalidate(req.LedgerID)

	return created, nil
}
