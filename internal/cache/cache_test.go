package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/karatops/bullionbook/internal/domain"
)

type fetcherStub struct {
	calls   int
	ledgers map[string]domain.Ledger
	err     error
}

func (f *fetcherStub) GetLedger(_ context.Context, id string) (domain.Ledger, error) {
	f.calls++
	if f.err != nil {
		return domain.Ledger{}, f.err
	}
	l, ok := f.ledgers[id]
	if !ok {
		return domain.Ledger{}, domain.ErrLedgerNotFound
	}
	return l, nil
}

func newTestCache(t *testing.T, ttl time.Duration) (*LedgerCache, *fetcherStub, *time.Time) {
	t.Helper()

	fetcher := &fetcherStub{ledgers: map[string]domain.Ledger{
		"led-1": {ID: "led-1", Name: "Ramesh & Sons", MetalBalance: decimal.NewFromInt(120)},
		"led-2": {ID: "led-2", Name: "City Jewellers"},
	}}

	c := New(fetcher, ttl)
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	return c, fetcher, &clock
}

func TestGetFetchesOncePerTTLWindow(t *testing.T) {
	c, fetcher, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	first, err := c.Get(ctx, "led-1")
	require.NoError(t, err)
	require.Equal(t, "Ramesh & Sons", first.Name)
	require.Equal(t, 1, fetcher.calls)

	second, err := c.Get(ctx, "led-1")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, fetcher.calls, "second read within TTL must not hit the store")
}

func TestGetRefetchesAfterExpiry(t *testing.T) {
	c, fetcher, clock := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx, "led-1")
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls)

	*clock = clock.Add(time.Minute + time.Second)

	_, err = c.Get(ctx, "led-1")
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.calls, "expired entry must trigger a fresh fetch")
}

func TestZeroTTLIsPassThrough(t *testing.T) {
	c, fetcher, _ := newTestCache(t, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.Get(ctx, "led-1")
		require.NoError(t, err)
	}
	require.Equal(t, 3, fetcher.calls)
}

func TestInvalidateForcesFreshFetch(t *testing.T) {
	c, fetcher, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	before, err := c.Get(ctx, "led-1")
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls)

	// store state changes behind the cache's back, then the writer invalidates
	fetcher.ledgers["led-1"] = domain.Ledger{ID: "led-1", Name: "Ramesh & Sons", MetalBalance: decimal.NewFromInt(130)}
	c.Invalidate("led-1")

	after, err := c.Get(ctx, "led-1")
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.calls)
	require.False(t, before.MetalBalance.Equal(after.MetalBalance), "post-invalidation read must observe the mutated store")
	require.True(t, decimal.NewFromInt(130).Equal(after.MetalBalance))
}

func TestInvalidateUnknownIDIsNoop(t *testing.T) {
	c, _, _ := newTestCache(t, time.Minute)
	c.Invalidate("never-seen")
}

func TestFailedFetchLeavesCacheUntouched(t *testing.T) {
	c, fetcher, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	fetcher.err = errors.New("store unreachable")
	_, err := c.Get(ctx, "led-1")
	require.Error(t, err)
	require.Equal(t, 1, fetcher.calls)

	// store recovers; the failure must not have cached anything
	fetcher.err = nil
	got, err := c.Get(ctx, "led-1")
	require.NoError(t, err)
	require.Equal(t, "Ramesh & Sons", got.Name)
	require.Equal(t, 2, fetcher.calls)
}

func TestEntriesAreIndependentPerLedger(t *testing.T) {
	c, fetcher, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	_, err := c.Get(ctx, "led-1")
	require.NoError(t, err)
	_, err = c.Get(ctx, "led-2")
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.calls)

	c.Invalidate("led-1")

	_, err = c.Get(ctx, "led-2")
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.calls, "invalidating led-1 must not evict led-2")
}

func TestSetTTLReconfigures(t *testing.T) {
	c, fetcher, clock := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx, "led-1")
	require.NoError(t, err)

	c.SetTTL(time.Hour)
	*clock = clock.Add(10 * time.Minute)

	_, err = c.Get(ctx, "led-1")
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls, "widened TTL keeps the entry fresh")
}
