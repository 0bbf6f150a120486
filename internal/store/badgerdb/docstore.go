// Package badgerdb provides a BadgerDB-backed document store.
package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/pkg/randid"
)

// DocStore implements docstore.Store on top of an embedded Badger database.
//
// Keys are formatted as "doc:{database}:{collection}:{id}" so a collection can
// be read with a single prefix scan. Badger has no secondary indexes, so
// ordering is applied after the scan.
type DocStore struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens (or creates) a Badger database in dir.
func Open(dir string) (*DocStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return New(db), nil
}

// New wraps an already opened Badger database.
func New(db *badger.DB) *DocStore {
	return &DocStore{db: db, now: time.Now}
}

// Close closes the underlying database.
func (s *DocStore) Close() error {
	return s.db.Close()
}

func collectionPrefix(databaseID, collectionID string) []byte {
	return []byte(fmt.Sprintf("doc:%s:%s:", databaseID, collectionID))
}

func documentKey(databaseID, collectionID, documentID string) []byte {
	return append(collectionPrefix(databaseID, collectionID), documentID...)
}

// ListDocuments scans a collection and applies q.
func (s *DocStore) ListDocuments(ctx context.Context, databaseID, collectionID string, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.ValidateAddress(databaseID, collectionID); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var docs []docstore.Document
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := collectionPrefix(databaseID, collectionID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var doc docstore.Document
				if err := json.Unmarshal(val, &doc); err != nil {
					return fmt.Errorf("decode document %s: %w", it.Item().Key(), err)
				}
				docs = append(docs, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Key order is by ID; unordered queries come back in insertion order like
	// the other backends.
	slices.SortStableFunc(docs, func(a, b docstore.Document) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return docstore.Apply(docs, q), nil
}

// CreateDocument stores a document unless its key already exists.
func (s *DocStore) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any, perms []docstore.Permission) (docstore.Document, error) {
	if err := docstore.ValidateAddress(databaseID, collectionID); err != nil {
		return docstore.Document{}, err
	}

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

	value, err := json.Marshal(doc)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("encode document: %w", err)
	}

	key := documentKey(databaseID, collectionID, documentID)
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", docstore.ErrDocumentExists, documentID)
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, value)
	})
	if err != nil {
		return docstore.Document{}, err
	}

	return doc, nil
}
