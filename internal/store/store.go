// Package store defines the authoritative ledger store contract and its
// REST implementation. The store is the sole source of truth for
// balances; everything above it works on snapshots.
package store

import (
	"context"

	"github.com/karatops/bullionbook/internal/domain"
)

// LedgerStore is the full store surface the core composes against.
// Implemented by RESTStore for remote deployments and by the WAL-backed
// store for the bundled server.
type LedgerStore interface {
	SearchLedgers(ctx context.Context, q string) ([]domain.Ledger, error)
	GetLedger(ctx context.Context, id string) (domain.Ledger, error)
	CreateLedger(ctx context.Context, name string) (domain.Ledger, error)
	ListTransactions(ctx context.Context, ledgerID string) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, ledgerID string, tx domain.Transaction) (domain.Transaction, error)
}
