package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("radiodial-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://radio.garden/api", cfg.Directory.BaseURL)
	assert.Equal(t, "radiodial/1.0", cfg.Directory.UserAgent)
	assert.Equal(t, 30, cfg.Directory.Timeout)
	assert.Equal(t, 1, cfg.Ranker.FetchConcurrency)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, "radiodial-test", cfg.Telemetry.ServiceName)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RADIODIAL_DIRECTORY_BASE_URL", "http://localhost:9999/api")
	t.Setenv("RADIODIAL_RANKER_FETCH_CONCURRENCY", "4")

	cfg, err := Load("radiodial-test")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/api", cfg.Directory.BaseURL)
	assert.Equal(t, 4, cfg.Ranker.FetchConcurrency)
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1, NearbyTimeout: 1},
		Directory: DirectoryConfig{BaseURL: "not a url", Timeout: 0},
		Ranker:    RankerConfig{FetchConcurrency: 0},
		Cache:     CacheConfig{Enabled: true},
	}

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{"server.port", "directory.base_url", "directory.timeout", "ranker.fetch_concurrency", "valkey.addr"} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %q", want, msg)
	}
}
