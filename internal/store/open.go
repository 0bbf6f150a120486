// Package store selects and opens the configured document store backend.
package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hay-kot/roomchat/internal/core/config"
	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/internal/store/badgerdb"
	"github.com/hay-kot/roomchat/internal/store/jsonfile"
	"github.com/hay-kot/roomchat/internal/store/redisdb"
	"github.com/hay-kot/roomchat/internal/store/sqldb"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the backend named by cfg.Store.Backend. The returned closer
// releases backend resources and is never nil on success.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (docstore.Store, io.Closer, error) {
	path := cfg.StorePath()
	log = log.With().Str("backend", cfg.Store.Backend).Logger()

	switch cfg.Store.Backend {
	case config.BackendJSONFile, "":
		log.Debug().Str("path", path).Msg("opening document store")
		return jsonfile.NewDocStore(path), nopCloser{}, nil

	case config.BackendBadger:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create badger dir: %w", err)
		}
		log.Debug().Str("path", path).Msg("opening document store")
		s, err := badgerdb.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		log.Debug().Str("path", path).Msg("opening document store")
		s, err := sqldb.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	case config.BackendRedis:
		log.Debug().Str("addr", cfg.Store.RedisAddr).Msg("opening document store")
		s, err := redisdb.Open(ctx, cfg.Store.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
