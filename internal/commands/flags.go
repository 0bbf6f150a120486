package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hay-kot/roomchat/internal/auth"
	"github.com/hay-kot/roomchat/internal/core/chat"
	"github.com/hay-kot/roomchat/internal/core/config"
	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/internal/core/identity"
)

// errNotSignedIn is returned by commands that need a principal.
var errNotSignedIn = errors.New("not signed in: run 'roomchat signin' or 'roomchat signup' first")

type Flags struct {
	LogLevel     string
	LogFile      string
	ConfigPath   string
	DataDir      string
	DatabaseID   string
	CollectionID string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// OpenStore opens the document store holding the room's messages. It is
	// called on first use so commands that never touch messages do not need
	// the backend to be reachable.
	OpenStore StoreOpener

	// Auth manages accounts and the session token
	Auth *auth.Service

	// Session mirrors the signed-in principal for the lifetime of the process
	Session *identity.Session

	store       docstore.Store
	storeCloser io.Closer
}

// StoreOpener opens the configured document store.
type StoreOpener func(ctx context.Context) (docstore.Store, io.Closer, error)

// Store returns the document store, opening it on first call. A failed open
// is not cached.
func (f *Flags) Store(ctx context.Context) (docstore.Store, error) {
	if f.store != nil {
		return f.store, nil
	}
	if f.OpenStore == nil {
		return nil, errors.New("open store: no store configured")
	}

	docs, closer, err := f.OpenStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	f.store, f.storeCloser = docs, closer
	return docs, nil
}

// Room returns a message adapter for the configured collection.
func (f *Flags) Room(ctx context.Context, log zerolog.Logger) (*chat.Adapter, error) {
	docs, err := f.Store(ctx)
	if err != nil {
		return nil, err
	}
	addr := chat.Address{
		DatabaseID:   f.Config.Store.DatabaseID,
		CollectionID: f.Config.Store.CollectionID,
	}
	return chat.NewAdapter(docs, addr, log), nil
}

// Close releases the store if it was opened.
func (f *Flags) Close() error {
	if f.storeCloser == nil {
		return nil
	}
	err := f.storeCloser.Close()
	f.store, f.storeCloser = nil, nil
	return err
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "roomchat", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "roomchat")
}
