package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hay-kot/roomchat/internal/core/identity"
)

// AccountsFile is the root JSON structure stored on disk.
type AccountsFile struct {
	Accounts []identity.Account `json:"accounts"`
}

// AccountStore implements identity.AccountStore using a JSON file for
// persistence.
type AccountStore struct {
	path string
	mu   sync.RWMutex
}

var _ identity.AccountStore = (*AccountStore)(nil)

// NewAccountStore creates a new JSON file account store at the given path.
func NewAccountStore(path string) *AccountStore {
	return &AccountStore{path: path}
}

// Get returns an account by ID. Returns ErrAccountNotFound if not found.
func (s *AccountStore) Get(ctx context.Context, id string) (identity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return identity.Account{}, err
	}

	for _, a := range file.Accounts {
		if a.ID == id {
			return a, nil
		}
	}

	return identity.Account{}, identity.ErrAccountNotFound
}

// FindByEmail returns the account registered with email.
func (s *AccountStore) FindByEmail(ctx context.Context, email string) (identity.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.load()
	if err != nil {
		return identity.Account{}, err
	}

	for _, a := range file.Accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}

	return identity.Account{}, identity.ErrAccountNotFound
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, account identity.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}

	for _, existing := range file.Accounts {
		if existing.ID == account.ID || strings.EqualFold(existing.Email, account.Email) {
			return identity.ErrAccountExists
		}
	}

	file.Accounts = append(file.Accounts, account)
	return s.save(file)
}

// load reads the accounts file from disk.
// Returns empty AccountsFile if file doesn't exist.
func (s *AccountStore) load() (AccountsFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return AccountsFile{}, nil
		}
		return AccountsFile{}, fmt.Errorf("read accounts file: %w", err)
	}

	if len(data) == 0 {
		return AccountsFile{}, nil
	}

	var file AccountsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return AccountsFile{}, fmt.Errorf("parse accounts file: %w", err)
	}

	return file, nil
}

// save writes the accounts file to disk atomically.
func (s *AccountStore) save(file AccountsFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create accounts directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
