// Package ledgers is the authoritative ledger store behind the bundled
// API server. Every ledger upsert and transaction append is a JSON
// record in a WAL; in-memory state is rebuilt by replay at startup.
package ledgers

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/gowal"

	"github.com/karatops/bullionbook/internal/domain"
	"github.com/karatops/bullionbook/internal/store"
)

const (
	defaultWALDir    = "./wal/ledgers"
	segmentThreshold = 1000
	maxSegments      = 100
	ledgerKeyPrefix  = "ledger_"
	txKeyPrefix      = "tx_"
)

// WALStore keeps ledgers and their transactions in memory, persisted
// through a write-ahead log. Balance mutation happens only here:
// applying a transaction is the single code path that advances a
// ledger's balances and LastUpdated.
type WALStore struct {
	mu      sync.RWMutex
	wal     *gowal.Wal
	ledgers map[string]domain.Ledger
	txs     map[string][]domain.Transaction

	now func() time.Time
}

// NewWALStore opens (or creates) the WAL under dir and replays it.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultWALDir
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "seg_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init ledger WAL")
	}

	s := &WALStore{
		wal:     wal,
		ledgers: make(map[string]domain.Ledger),
		txs:     make(map[string][]domain.Transaction),
		now:     time.Now,
	}

	if err := s.replay(); err != nil {
		wal.Close()
		return nil, errors.Wrap(err, "replay ledger WAL")
	}
	return s, nil
}

// replay rebuilds in-memory state. Ledger records are written after
// every balance change, so the last one per id wins.
func (s *WALStore) replay() error {
	for m := range s.wal.Iterator() {
		switch {
		case strings.HasPrefix(m.Key, ledgerKeyPrefix):
			var ledger domain.Ledger
			if err := json.Unmarshal(m.Value, &ledger); err != nil {
				return errors.Wrapf(err, "unmarshal ledger record %s", m.Key)
			}
			s.ledgers[ledger.ID] = ledger
		case strings.HasPrefix(m.Key, txKeyPrefix):
			var tx domain.Transaction
			if err := json.Unmarshal(m.Value, &tx); err != nil {
				return errors.Wrapf(err, "unmarshal transaction record %s", m.Key)
			}
			s.txs[tx.LedgerID] = append(s.txs[tx.LedgerID], tx)
		}
	}
	return nil
}

func (s *WALStore) SearchLedgers(_ context.Context, q string) ([]domain.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(q))
	result := make([]domain.Ledger, 0, len(s.ledgers))
	for _, l := range s.ledgers {
		if needle == "" || strings.Contains(strings.ToLower(l.Name), needle) {
			result = append(result, l)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *WALStore) GetLedger(_ context.Context, id string) (domain.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ledger, ok := s.ledgers[id]
	if !ok {
		return domain.Ledger{}, domain.ErrLedgerNotFound
	}
	return ledger, nil
}

func (s *WALStore) CreateLedger(_ context.Context, name string) (domain.Ledger, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Ledger{}, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := domain.Ledger{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		MetalBalance: decimal.Zero,
		CashBalance:  decimal.Zero,
		LastUpdated:  s.now(),
	}

	if err := s.writeLedger(ledger); err != nil {
		return domain.Ledger{}, err
	}
	s.ledgers[ledger.ID] = ledger
	return ledger, nil
}

func (s *WALStore) ListTransactions(_ context.Context, ledgerID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.ledgers[ledgerID]; !ok {
		return nil, domain.ErrLedgerNotFound
	}

	txs := s.txs[ledgerID]
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	return out, nil
}

// CreateTransaction durably records the transaction and applies its
// effect to the ledger's balances. LastUpdated advances here and only
// here.
func (s *WALStore) CreateTransaction(_ context.Context, ledgerID string, tx domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.ledgers[ledgerID]
	if !ok {
		return domain.Transaction{}, domain.ErrLedgerNotFound
	}

	tx.ID = uuid.NewString()
	tx.LedgerID = ledgerID
	tx.Timestamp = s.now()

	updated := applyTransaction(ledger, tx)
	updated.LastUpdated = tx.Timestamp

	if err := s.writeTransaction(tx); err != nil {
		return domain.Transaction{}, err
	}
	if err := s.writeLedger(updated); err != nil {
		return domain.Transaction{}, err
	}

	s.ledgers[ledgerID] = updated
	s.txs[ledgerID] = append(s.txs[ledgerID], tx)
	return tx, nil
}

func (s *WALStore) Close() error {
	return s.wal.Close()
}

func (s *WALStore) writeLedger(ledger domain.Ledger) error {
	payload, err := json.Marshal(ledger)
	if err != nil {
		return errors.Wrap(err, "marshal ledger")
	}
	return errors.Wrap(s.wal.Write(s.wal.CurrentIndex()+1, ledgerKeyPrefix+ledger.ID, payload), "write ledger record")
}

func (s *WALStore) writeTransaction(tx domain.Transaction) error {
	payload, err := json.Marshal(tx)
	if err != nil {
		return errors.Wrap(err, "marshal transaction")
	}
	return errors.Wrap(s.wal.Write(s.wal.CurrentIndex()+1, txKeyPrefix+tx.ID, payload), "write transaction record")
}

// applyTransaction folds one transaction into the ledger balances.
// Convention: positive cash balance means the account owes us.
// Metal in: purchase, metal_received. Metal out: sale, metal_given.
// Purchases create a payable (cash down), sales a receivable (cash up);
// cash movements settle against the open balance.
func applyTransaction(ledger domain.Ledger, tx domain.Transaction) domain.Ledger {
	weight := decimal.Zero
	if tx.PureWeight != nil {
		weight = *tx.PureWeight
	} else if tx.GrossWeight != nil {
		weight = *tx.GrossWeight
	}

	due := decimal.Zero
	if tx.Balance != nil {
		due = *tx.Balance
	} else if tx.Amount != nil {
		due = *tx.Amount
	}

	switch tx.Type {
	case domain.TxPurchase:
		ledger.MetalBalance = ledger.MetalBalance.Add(weight)
		ledger.CashBalance = ledger.CashBalance.Sub(due)
	case domain.TxSale:
		ledger.MetalBalance = ledger.MetalBalance.Sub(weight)
		ledger.CashBalance = ledger.CashBalance.Add(due)
	case domain.TxMetalReceived:
		ledger.MetalBalance = ledger.MetalBalance.Add(weight)
	case domain.TxMetalGiven:
		ledger.MetalBalance = ledger.MetalBalance.Sub(weight)
	case domain.TxCashReceived:
		if tx.Amount != nil {
			ledger.CashBalance = ledger.CashBalance.Sub(*tx.Amount)
		}
	case domain.TxCashGiven:
		if tx.Amount != nil {
			ledger.CashBalance = ledger.CashBalance.Add(*tx.Amount)
		}
	}
	return ledger
}

var _ store.LedgerStore = (*WALStore)(nil)
