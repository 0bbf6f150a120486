package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/pkg/randid"
)

// CollectionFile is the root JSON structure stored on disk for a collection.
type CollectionFile struct {
	DatabaseID   string              `json:"database_id"`
	CollectionID string              `json:"collection_id"`
	Documents    []docstore.Document `json:"documents"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// DocStore implements docstore.Store using one JSON file per collection,
// laid out as <root>/<database>/<collection>.json.
type DocStore struct {
	root string
	now  func() time.Time
	mu   sync.RWMutex
}

// NewDocStore creates a document store rooted at dir.
func NewDocStore(dir string) *DocStore {
	return &DocStore{root: dir, now: time.Now}
}

// collectionPath returns the file path for a collection.
func (s *DocStore) collectionPath(databaseID, collectionID string) string {
	return filepath.Join(s.root, databaseID, collectionID+".json")
}

// withSharedLock executes fn while holding a shared (read) file lock.
func (s *DocStore) withSharedLock(path string, fn func() error) error {
	return s.withFileLock(path, syscall.LOCK_SH, fn)
}

// withExclusiveLock executes fn while holding an exclusive (write) file lock.
func (s *DocStore) withExclusiveLock(path string, fn func() error) error {
	return s.withFileLock(path, syscall.LOCK_EX, fn)
}

// withFileLock acquires a lock next to path, executes fn, then releases it.
// Other roomchat processes sharing the data directory see consistent files.
func (s *DocStore) withFileLock(path string, lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// ListDocuments returns the documents of a collection ordered and capped by q.
func (s *DocStore) ListDocuments(ctx context.Context, databaseID, collectionID string, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.ValidateAddress(databaseID, collectionID); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.collectionPath(databaseID, collectionID)

	var docs []docstore.Document
	err := s.withSharedLock(path, func() error {
		file, err := s.load(path)
		if err != nil {
			return err
		}
		docs = file.Documents
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docstore.Apply(docs, q), nil
}

// CreateDocument appends a new document to its collection file.
func (s *DocStore) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any, perms []docstore.Permission) (docstore.Document, error) {
	if err := docstore.ValidateAddress(databaseID, collectionID); err != nil {
		return docstore.Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if documentID == "" {
		documentID = randid.Document()
	}

	doc := docstore.Document{
		ID:           documentID,
		DatabaseID:   databaseID,
		CollectionID: collectionID,
		CreatedAt:    s.now().UTC(),
		Permissions:  perms,
		Data:         data,
	}

	path := s.collectionPath(databaseID, collectionID)
	err := s.withExclusiveLock(path, func() error {
		file, err := s.load(path)
		if err != nil {
			return err
		}

		for _, existing := range file.Documents {
			if existing.ID == documentID {
				return fmt.Errorf("%w: %s", docstore.ErrDocumentExists, documentID)
			}
		}

		file.DatabaseID = databaseID
		file.CollectionID = collectionID
		file.Documents = append(file.Documents, doc)
		file.UpdatedAt = s.now().UTC()

		return s.save(path, file)
	})
	if err != nil {
		return docstore.Document{}, err
	}

	return doc, nil
}

// load reads a collection file from disk.
// Returns an empty collection if the file doesn't exist.
func (s *DocStore) load(path string) (CollectionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CollectionFile{}, nil
		}
		return CollectionFile{}, fmt.Errorf("read collection file: %w", err)
	}

	if len(data) == 0 {
		return CollectionFile{}, nil
	}

	var file CollectionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return CollectionFile{}, fmt.Errorf("parse collection file: %w", err)
	}

	return file, nil
}

// save writes a collection file to disk atomically.
func (s *DocStore) save(path string, file CollectionFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
