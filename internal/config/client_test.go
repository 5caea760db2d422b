package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsclient/internal/domain/entity"
)

func TestLoadClientConfig_Defaults(t *testing.T) {
	cfg, err := LoadClientConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, entity.LanguageEnglish, cfg.Feed.Language)
	assert.Equal(t, 30, cfg.Feed.PerPage)
	assert.Equal(t, 5*time.Minute, cfg.Feed.StaleTime)
	assert.Equal(t, 1, cfg.Feed.Retries)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.True(t, cfg.Reader.DenyPrivateIPs)
	assert.Empty(t, cfg.Observability.MetricsAddr)
}

func TestLoadClientConfig_EnvOverrides(t *testing.T) {
	t.Setenv("NEWSCLIENT_API_BASE_URL", "https://news.example.com/api")
	t.Setenv("NEWSCLIENT_LANGUAGE", "np")
	t.Setenv("NEWSCLIENT_STALE_TIME", "90s")
	t.Setenv("NEWSCLIENT_CACHE_BACKEND", "redis")
	t.Setenv("NEWSCLIENT_REDIS_ADDR", "cache:6379")

	cfg, err := LoadClientConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://news.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, entity.LanguageNepali, cfg.Feed.Language)
	assert.Equal(t, 90*time.Second, cfg.Feed.StaleTime)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
}

func TestLoadClientConfig_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("NEWSCLIENT_PER_PAGE", "thirty")
	t.Setenv("NEWSCLIENT_STALE_TIME", "five minutes")

	cfg, err := LoadClientConfig()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Feed.PerPage)
	assert.Equal(t, 5*time.Minute, cfg.Feed.StaleTime)
}

func TestLoadClientConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newsclient.yaml")
	content := `api:
  base_url: "https://file.example.com/api"
  timeout: 20s
feed:
  language: np
  per_page: 10
  stale_time: 2m
cache:
  backend: memory
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("NEWSCLIENT_CONFIG_FILE", path)
	t.Setenv("NEWSCLIENT_PER_PAGE", "20")

	cfg, err := LoadClientConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.API.Timeout)
	assert.Equal(t, entity.LanguageNepali, cfg.Feed.Language)
	assert.Equal(t, 2*time.Minute, cfg.Feed.StaleTime)
	// environment wins over the file
	assert.Equal(t, 20, cfg.Feed.PerPage)
}

func TestLoadClientConfig_MissingFile(t *testing.T) {
	t.Setenv("NEWSCLIENT_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadClientConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ClientConfig)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*ClientConfig) {},
		},
		{
			name:    "relative base url",
			mutate:  func(c *ClientConfig) { c.API.BaseURL = "/api" },
			wantErr: "NEWSCLIENT_API_BASE_URL",
		},
		{
			name:    "unsupported language",
			mutate:  func(c *ClientConfig) { c.Feed.Language = "fr" },
			wantErr: "NEWSCLIENT_LANGUAGE",
		},
		{
			name:    "per page too large",
			mutate:  func(c *ClientConfig) { c.Feed.PerPage = 500 },
			wantErr: "NEWSCLIENT_PER_PAGE",
		},
		{
			name:    "negative retries",
			mutate:  func(c *ClientConfig) { c.Feed.Retries = -1 },
			wantErr: "NEWSCLIENT_FETCH_RETRIES",
		},
		{
			name:    "unknown cache backend",
			mutate:  func(c *ClientConfig) { c.Cache.Backend = "memcached" },
			wantErr: "NEWSCLIENT_CACHE_BACKEND",
		},
		{
			name: "redis without address",
			mutate: func(c *ClientConfig) {
				c.Cache.Backend = CacheBackendRedis
				c.Cache.RedisAddr = ""
			},
			wantErr: "NEWSCLIENT_REDIS_ADDR",
		},
		{
			name: "reader disabled skips reader checks",
			mutate: func(c *ClientConfig) {
				c.Reader.Enabled = false
				c.Reader.Timeout = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultClientConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
