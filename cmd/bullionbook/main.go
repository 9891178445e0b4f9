// Command bullionbook runs the bullion ledger API server: a WAL-backed
// authoritative store fronted by a TTL read cache and the transaction
// submission pipeline, with an optional advisory gold rate source.
//
// Usage:
//
//	bullionbook --config config.yaml
//	bullionbook setup            (interactive config wizard)
//	bullionbook (uses CLI flags)
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/karatops/bullionbook/config"
	"github.com/karatops/bullionbook/internal/services/rates"
	"github.com/karatops/bullionbook/internal/setup"
	"github.com/karatops/bullionbook/internal/storage/ledgers"
	"github.com/karatops/bullionbook/internal/store"
	"github.com/karatops/bullionbook/internal/web"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// with api_base set the server fronts a remote store instead of
	// owning a local WAL
	var ledgerStore store.LedgerStore
	if conf.APIBase != "" {
		ledgerStore = store.NewRESTStore(conf.APIBase)
	} else {
		walStore, err := ledgers.NewWALStore(conf.WALDir)
		if err != nil {
			logger.Fatal("failed to open ledger store", zap.Error(err))
		}
		defer walStore.Close()
		ledgerStore = walStore
	}

	var provider rates.Provider
	switch conf.RatePlatform {
	case "binance":
		// public price endpoint, keys optional
		provider = rates.NewBinanceProvider(binance.NewClient(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET")), conf.RateSymbol)
	case "bybit":
		provider = rates.NewBybitProvider(bybit.NewClient(), conf.RateSymbol)
	}

	server := web.NewServer(conf.ListenAddr, ledgerStore, conf.CacheTTL, provider, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(conf.TLSDomains) > 0 {
			return server.StartWithAutoTLS(ctx, conf.TLSDomains, conf.CertCacheDir)
		}
		return server.Start(ctx)
	})

	logger.Info("started",
		zap.String("listen", conf.ListenAddr),
		zap.Duration("cache_ttl", conf.CacheTTL),
		zap.String("rate_platform", conf.RatePlatform))

	if err := g.Wait(); err != nil {
		logger.Error(err.Error())
	}
}
