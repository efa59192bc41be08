package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("ADS_HTTP_PORT", "9090")
	t.Setenv("ADS_MEILI_HOST", "http://meili:7700")
	t.Setenv("ADS_BUILD_TARGET", "local")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "http://meili:7700", cfg.MeiliHost)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, ":9090", cfg.GetHTTPAddr())
}

func TestResolveDefaultsLocalDerivesSQLite(t *testing.T) {
	cfg := &Config{BuildTarget: "local", DBDriver: "auto"}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestResolveDefaultsCloudDerivesPostgres(t *testing.T) {
	for _, target := range []string{"cloud-dev", "cloud"} {
		cfg := &Config{BuildTarget: target, DBDriver: "auto", PostgresDSN: "postgres://localhost/ads"}
		require.NoError(t, cfg.ResolveDefaults())
		assert.Equal(t, "postgres", cfg.DBDriver)
	}
}

func TestResolveDefaultsPostgresRequiresDSN(t *testing.T) {
	cfg := &Config{BuildTarget: "cloud", DBDriver: "auto"}
	err := cfg.ResolveDefaults()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADS_POSTGRES_DSN")
}

func TestResolveDefaultsExplicitDriverWins(t *testing.T) {
	cfg := &Config{BuildTarget: "cloud", DBDriver: "sqlite"}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestResolveDefaultsRejectsUnknownTarget(t *testing.T) {
	cfg := &Config{BuildTarget: "staging"}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestResolveDefaultsRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{BuildTarget: "local", DBDriver: "oracle"}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestMeiliTimeout(t *testing.T) {
	cfg := NewForTesting()
	assert.Equal(t, 10*time.Second, cfg.MeiliTimeout())
	assert.True(t, cfg.IsTesting())
}
