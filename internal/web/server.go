// Package web exposes the ledger API over HTTP. Reads go through the
// snapshot cache; transaction writes go through the submission
// pipeline, which invalidates the cache after the store acknowledges.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/karatops/bullionbook/internal/cache"
	"github.com/karatops/bullionbook/internal/domain"
	"github.com/karatops/bullionbook/internal/services/pipeline"
	"github.com/karatops/bullionbook/internal/services/rates"
	"github.com/karatops/bullionbook/internal/store"
	"github.com/karatops/bullionbook/internal/valuation"
)

const (
	maxRateSamples  = 96
	rateTrendPeriod = 12
)

// Server serves the ledger API over the given store.
type Server struct {
	addr      string
	store     store.LedgerStore
	cache     *cache.LedgerCache
	submitter *pipeline.Submitter
	rates     rates.Provider
	logger    *zap.Logger

	mu          sync.Mutex
	rateSamples []decimal.Decimal
}

// NewServer wires the read cache and submission pipeline over the store.
func NewServer(addr string, st store.LedgerStore, ttl time.Duration, rateProvider rates.Provider, logger *zap.Logger) *Server {
	ledgerCache := cache.New(st, ttl)
	return &Server{
		addr:      addr,
		store:     st,
		cache:     ledgerCache,
		submitter: pipeline.NewSubmitter(st, ledgerCache),
		rates:     rateProvider,
		logger:    logger,
	}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ledgers", s.handleLedgers)
	mux.HandleFunc("/api/ledgers/", s.handleLedgerSubtree)
	mux.HandleFunc("/api/rates", s.handleRates)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic certificates via
// ACME, plus an HTTP server on port 80 for the HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if len(domains) == 0 {
		return errors.New("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("acme server shutdown", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("https server shutdown", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("acme server failed", zap.Error(err))
		}
	}()

	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleLedgers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ledgers, err := s.store.SearchLedgers(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, ledgers)
	case http.MethodPost:
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
			return
		}
		ledger, err := s.store.CreateLedger(r.Context(), body.Name)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, ledger)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleLedgerSubtree routes /api/ledgers/{id} and
// /api/ledgers/{id}/transactions.
func (s *Server) handleLedgerSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/ledgers/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleGetLedger(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "transactions":
		switch r.Method {
		case http.MethodGet:
			s.handleListTransactions(w, r, parts[0])
		case http.MethodPost:
			s.handleSubmitTransaction(w, r, parts[0])
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request, id string) {
	ledger, err := s.cache.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ledger)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, id string) {
	txs, err := s.store.ListTransactions(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, txs)
}

// txRequest is the wire shape of a transaction submission. Numbers come
// in as floats and pass the non-finite check on conversion.
type txRequest struct {
	Type        string   `json:"type"`
	GrossWeight *float64 `json:"grossWeight,omitempty"`
	Purity      *float64 `json:"purity,omitempty"`
	Rate        *float64 `json:"rate,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	PaidAmount  *float64 `json:"paidAmount,omitempty"`
}

func (s *Server) handleSubmitTransaction(w http.ResponseWriter, r *http.Request, ledgerID string) {
	var body txRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	req := pipeline.SubmitRequest{LedgerID: ledgerID, Type: body.Type}

	fields := []struct {
		name string
		in   *float64
		out  **decimal.Decimal
	}{
		{"grossWeight", body.GrossWeight, &req.GrossWeight},
		{"purity", body.Purity, &req.Purity},
		{"rate", body.Rate, &req.Rate},
		{"amount", body.Amount, &req.Amount},
		{"paidAmount", body.PaidAmount, &req.PaidAmount},
	}
	for _, f := range fields {
		if f.in == nil {
			continue
		}
		d, err := valuation.FromFloat(f.name, *f.in)
		if err != nil {
			s.writeError(w, err)
			return
		}
		*f.out = &d
	}

	created, err := s.submitter.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.rates == nil {
		http.Error(w, "no rate provider configured", http.StatusNotFound)
		return
	}

	rate, err := s.rates.PerGramRate(r.Context())
	if err != nil {
		s.logger.Warn("rate provider failed", zap.Error(err))
		http.Error(w, "rate provider unavailable", http.StatusBadGateway)
		return
	}

	s.mu.Lock()
	s.rateSamples = append(s.rateSamples, rate)
	if len(s.rateSamples) > maxRateSamples {
		s.rateSamples = s.rateSamples[len(s.rateSamples)-maxRateSamples:]
	}
	samples := make([]decimal.Decimal, len(s.rateSamples))
	copy(samples, s.rateSamples)
	s.mu.Unlock()

	resp := struct {
		PerGram decimal.Decimal   `json:"perGram"`
		Trend   []decimal.Decimal `json:"trend,omitempty"`
	}{PerGram: rate}

	if len(samples) >= rateTrendPeriod {
		if sma, err := rates.Trend(samples, rateTrendPeriod); err == nil {
			resp.Trend = sma
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, domain.ErrLedgerNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var nerr *domain.NetworkError
	if errors.As(err, &nerr) {
		http.Error(w, nerr.Error(), http.StatusBadGateway)
		return
	}

	s.logger.Error("request failed", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}
