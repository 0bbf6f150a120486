package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	cfg, err := Load(filepath.Join(dataDir, "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, BackendJSONFile, cfg.Store.Backend)
	assert.Equal(t, 300*time.Millisecond, cfg.Chat.ReconcileDelay)
	assert.Equal(t, 5*time.Second, cfg.Chat.RequestTimeout)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "documents"), cfg.StorePath())
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: badger
  database_id: main
  collection_id: messages
chat:
  reconcile_delay: 1s
  render_markdown: true
auth:
  token_ttl: 2h
`)
	dataDir := t.TempDir()

	cfg, err := Load(path, dataDir)
	require.NoError(t, err)

	assert.Equal(t, BackendBadger, cfg.Store.Backend)
	assert.Equal(t, "main", cfg.Store.DatabaseID)
	assert.Equal(t, "messages", cfg.Store.CollectionID)
	assert.Equal(t, time.Second, cfg.Chat.ReconcileDelay)
	assert.True(t, cfg.Chat.RenderMarkdown)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.Chat.RequestTimeout, "unset values get defaults")
	assert.Equal(t, dataDir, cfg.DataDir, "data dir is never read from the file")
	assert.Equal(t, filepath.Join(dataDir, "badger"), cfg.StorePath())
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: mongo\n")

	_, err := Load(path, t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "store.backend", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "unknown backend")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:   "redis needs an address",
			mutate: func(c *Config) { c.Store.Backend = BackendRedis },
			fields: []string{"store.redis_addr"},
		},
		{
			name: "negative durations",
			mutate: func(c *Config) {
				c.Chat.ReconcileDelay = -time.Second
				c.Auth.TokenTTL = -time.Second
			},
			fields: []string{"chat.reconcile_delay", "auth.token_ttl"},
		},
		{
			name:   "empty data dir",
			mutate: func(c *Config) { c.DataDir = "" },
			fields: []string{"data_dir"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			var got []string
			for _, fe := range fieldErrs {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestWarnings_MissingStoreAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "database_id", warnings[0].Item)
	assert.Equal(t, "collection_id", warnings[1].Item)

	cfg.Store.DatabaseID = "main"
	cfg.Store.CollectionID = "messages"
	assert.Empty(t, cfg.Warnings())
}

func TestStorePath_Override(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data"
	cfg.Store.Backend = BackendSQLite
	assert.Equal(t, "/data/roomchat.db", cfg.StorePath())

	cfg.Store.Path = "/elsewhere/chat.db"
	assert.Equal(t, "/elsewhere/chat.db", cfg.StorePath())
}
