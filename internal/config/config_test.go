package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "")
	t.Setenv("MAX_BODY_BYTES", "")
	t.Setenv("USER_AGENT", DefaultUserAgent)
	t.Setenv("PORT", "8080")
	t.Setenv("RENDERER", "none")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.GetPort())
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 10*1024*1024, cfg.MaxBodyBytes)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RENDERER", "ROD")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("YOUTUBE_API_KEY", "key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.GetPort())
	assert.Equal(t, "rod", cfg.Renderer)
	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.HasYouTubeConfig())
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port", "PORT", "http"},
		{"renderer", "RENDERER", "selenium"},
		{"cache", "CACHE_BACKEND", "memcached"},
		{"driver", "DB_DRIVER", "mysql"},
		{"timeout", "FETCH_TIMEOUT", "soon"},
		{"body size", "MAX_BODY_BYTES", "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", "8080")
			t.Setenv("RENDERER", "none")
			t.Setenv("CACHE_BACKEND", "memory")
			t.Setenv("DB_DRIVER", "sqlite")
			t.Setenv(tt.key, tt.val)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
