package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/karatops/bullionbook/internal/domain"
)

const (
	defaultTimeout   = 15 * time.Second
	maxErrorBodySize = 512
)

// RESTStore talks JSON over HTTP to the ledger API described by the
// store contract. Any transport failure or non-2xx answer surfaces as a
// *domain.NetworkError; nothing is retried.
type RESTStore struct {
	baseURL    string
	httpClient *http.Client
}

// NewRESTStore creates a store client for the given API base address,
// e.g. "http://localhost:8080".
func NewRESTStore(baseURL string) *RESTStore {
	return &RESTStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (s *RESTStore) SearchLedgers(ctx context.Context, q string) ([]domain.Ledger, error) {
	path := "/api/ledgers"
	if q != "" {
		path += "?q=" + url.QueryEscape(q)
	}

	var ledgers []domain.Ledger
	if err := s.do(ctx, http.MethodGet, path, nil, &ledgers); err != nil {
		return nil, err
	}
	return ledgers, nil
}

func (s *RESTStore) GetLedger(ctx context.Context, id string) (domain.Ledger, error) {
	var ledger domain.Ledger
	if err := s.do(ctx, http.MethodGet, "/api/ledgers/"+url.PathEscape(id), nil, &ledger); err != nil {
		return domain.Ledger{}, err
	}
	return ledger, nil
}

func (s *RESTStore) CreateLedger(ctx context.Context, name string) (domain.Ledger, error) {
	body := map[string]string{"name": name}

	var ledger domain.Ledger
	if err := s.do(ctx, http.MethodPost, "/api/ledgers", body, &ledger); err != nil {
		return domain.Ledger{}, err
	}
	return ledger, nil
}

func (s *RESTStore) ListTransactions(ctx context.Context, ledgerID string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	path := "/api/ledgers/" + url.PathEscape(ledgerID) + "/transactions"
	if err := s.do(ctx, http.MethodGet, path, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *RESTStore) CreateTransaction(ctx context.Context, ledgerID string, tx domain.Transaction) (domain.Transaction, error) {
	var created domain.Transaction
	path := "/api/ledgers/" + url.PathEscape(ledgerID) + "/transactions"
	if err := s.do(ctx, http.MethodPost, path, tx, &created); err != nil {
		return domain.Transaction{}, err
	}
	return created, nil
}

// do performs one HTTP exchange and decodes a 2xx JSON answer into out.
func (s *RESTStore) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &domain.NetworkError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.NetworkError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

var _ LedgerStore = (*RESTStore)(nil)
