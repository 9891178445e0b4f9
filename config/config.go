// Package config loads bullionbook configuration from a YAML file or,
// failing that, from command-line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the composition layer needs to wire the
// store, cache, pipeline and API server together.
type Config struct {
	ListenAddr   string
	APIBase      string
	CacheTTL     time.Duration
	WALDir       string
	RatePlatform string // binance, bybit or empty for none
	RateSymbol   string
	TLSDomains   []string
	CertCacheDir string
}

type configTmp struct {
	ListenAddr   string   `yaml:"listen_addr"`
	APIBase      string   `yaml:"api_base,omitempty"`
	CacheTTL     string   `yaml:"cache_ttl,omitempty"`
	WALDir       string   `yaml:"wal_dir,omitempty"`
	RatePlatform string   `yaml:"rate_platform,omitempty"`
	RateSymbol   string   `yaml:"rate_symbol,omitempty"`
	TLSDomains   []string `yaml:"tls_domains,omitempty"`
	CertCacheDir string   `yaml:"cert_cache_dir,omitempty"`
}

// Get parses flags and returns the effective configuration. When
// --config points at a YAML file, the file wins.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	listen := flag.String("listen", ":8080", "API server listen address")
	apiBase := flag.String("apibase", "", "remote store base URL (client mode)")
	ttl := flag.Duration("cachettl", 0, "ledger read-cache TTL, 0 disables caching")
	walDir := flag.String("waldir", "./wal/ledgers", "WAL directory for the authoritative store")
	platform := flag.String("rateplatform", "", "advisory rate source: binance or bybit")
	symbol := flag.String("ratesymbol", "", "gold token symbol for the rate source")

	flag.Parse()

	if *configPath != "" {
		return fromYaml(*configPath)
	}

	cfg := Config{
		ListenAddr:   *listen,
		APIBase:      *apiBase,
		CacheTTL:     *ttl,
		WALDir:       *walDir,
		RatePlatform: *platform,
		RateSymbol:   *symbol,
	}
	return cfg, cfg.validate()
}

func fromYaml(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return Config{}, fmt.Errorf("parse yaml config: %w", err)
	}

	cfg := Config{
		ListenAddr:   tmp.ListenAddr,
		APIBase:      tmp.APIBase,
		WALDir:       tmp.WALDir,
		RatePlatform: tmp.RatePlatform,
		RateSymbol:   tmp.RateSymbol,
		TLSDomains:   tmp.TLSDomains,
		CertCacheDir: tmp.CertCacheDir,
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.WALDir == "" {
		cfg.WALDir = "./wal/ledgers"
	}

	if tmp.CacheTTL != "" {
		ttl, err := time.ParseDuration(tmp.CacheTTL)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'cache_ttl' param in yaml config (e.g. 30s, 5m): %w", err)
		}
		cfg.CacheTTL = ttl
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %s", c.CacheTTL)
	}
	switch c.RatePlatform {
	case "", "binance", "bybit":
	default:
		return fmt.Errorf("unsupported rate platform %q", c.RatePlatform)
	}
	return nil
}
