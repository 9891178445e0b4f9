package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromYaml(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9090"
cache_ttl: 45s
wal_dir: /var/lib/bullionbook
rate_platform: binance
`)

	cfg, err := fromYaml(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr)
	require.Equal(t, 45*time.Second, cfg.CacheTTL)
	require.Equal(t, "/var/lib/bullionbook", cfg.WALDir)
	require.Equal(t, "binance", cfg.RatePlatform)
}

func TestFromYamlDefaults(t *testing.T) {
	cfg, err := fromYaml(writeConfig(t, "{}"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, time.Duration(0), cfg.CacheTTL, "deployment default is pass-through")
	require.Equal(t, "./wal/ledgers", cfg.WALDir)
}

func TestFromYamlRejectsBadValues(t *testing.T) {
	_, err := fromYaml(writeConfig(t, "cache_ttl: soon"))
	require.Error(t, err)

	_, err = fromYaml(writeConfig(t, "rate_platform: kraken"))
	require.Error(t, err)
}
