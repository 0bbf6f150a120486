package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// storedSession is the on-disk session record.
type storedSession struct {
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionFile persists the current session token. An absent file, an empty
// file, and the literal "[]" all mean nobody is signed in.
type SessionFile struct {
	path string
}

// NewSessionFile creates a SessionFile at path.
func NewSessionFile(path string) *SessionFile {
	return &SessionFile{path: path}
}

func (f *SessionFile) load() (storedSession, bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storedSession{}, false, nil
		}
		return storedSession{}, false, fmt.Errorf("read session file: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "[]" {
		return storedSession{}, false, nil
	}

	var s storedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return storedSession{}, false, fmt.Errorf("parse session file: %w", err)
	}
	if s.Token == "" {
		return storedSession{}, false, nil
	}
	return s, true, nil
}

func (f *SessionFile) save(s storedSession) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (f *SessionFile) clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
