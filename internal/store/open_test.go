package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/roomchat/internal/core/config"
	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/internal/store/badgerdb"
	"github.com/hay-kot/roomchat/internal/store/jsonfile"
	"github.com/hay-kot/roomchat/internal/store/sqldb"
)

func TestOpen_Backends(t *testing.T) {
	tests := []struct {
		backend string
		want    docstore.Store
	}{
		{config.BackendJSONFile, &jsonfile.DocStore{}},
		{config.BackendBadger, &badgerdb.DocStore{}},
		{config.BackendSQLite, &sqldb.DocStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.DataDir = t.TempDir()
			cfg.Store.Backend = tt.backend

			s, closer, err := Open(context.Background(), &cfg, zerolog.Nop())
			require.NoError(t, err)
			t.Cleanup(func() { _ = closer.Close() })

			assert.IsType(t, tt.want, s)

			ctx := context.Background()
			_, err = s.CreateDocument(ctx, "main", "messages", "", map[string]any{"text": "hi"}, nil)
			require.NoError(t, err)

			docs, err := s.ListDocuments(ctx, "main", "messages", docstore.Query{})
			require.NoError(t, err)
			assert.Len(t, docs, 1)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Store.Backend = "mongo"

	_, _, err := Open(context.Background(), &cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}
