// Package cache provides the read-through snapshot cache that sits
// between ledger reads and the authoritative store.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/karatops/bullionbook/internal/domain"
)

// LedgerFetcher is the store collaborator the cache reads through on a
// miss or an expired entry.
type LedgerFetcher interface {
	GetLedger(ctx context.Context, id string) (domain.Ledger, error)
}

type entry struct {
	snapshot  domain.Ledger
	fetchedAt time.Time
}

// LedgerCache caches ledger snapshots keyed by ledger id with TTL
// expiry and explicit invalidation. It never mutates balances itself.
// Concurrent gets for the same uncached id each trigger their own
// fetch; the store is the sole source of truth and snapshot writes are
// idempotent, so no coalescing is needed.
type LedgerCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	fetch   LedgerFetcher
	entries map[string]entry

	now func() time.Time
}

// New creates a cache over the given store collaborator. A TTL of zero
// degenerates the cache into a pass-through that always re-fetches,
// which is a valid configuration.
func New(fetch LedgerFetcher, ttl time.Duration) *LedgerCache {
	return &LedgerCache{
		ttl:     ttl,
		fetch:   fetch,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached snapshot for id if it has not expired,
// otherwise fetches from the store, caches the result and returns it.
// A failed fetch leaves the cache untouched and propagates the store's
// error unchanged.
func (c *LedgerCache) Get(ctx context.Context, id string) (domain.Ledger, error) {
	c.mu.Lock()
	if e, ok := c.entries[id]; ok && c.ttl > 0 && c.now().Sub(e.fetchedAt) < c.ttl {
		c.mu.Unlock()
		return e.snapshot, nil
	}
	c.mu.Unlock()

	ledger, err := c.fetch.GetLedger(ctx, id)
	if err != nil {
		return domain.Ledger{}, err
	}

	c.mu.Lock()
	c.entries[id] = entry{snapshot: ledger, fetchedAt: c.now()}
	c.mu.Unlock()

	return ledger, nil
}

// Invalidate removes the entry for id, no-op if absent. Callers must
// invalidate only after the triggering write is acknowledged by the
// store; invalidating earlier risks a concurrent Get repopulating the
// entry with pre-write data.
func (c *LedgerCache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// SetTTL reconfigures the expiry window for subsequent reads.
func (c *LedgerCache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	c.ttl = ttl
	c.mu.Unlock()
}
