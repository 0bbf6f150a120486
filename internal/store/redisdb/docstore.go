// Package redisdb provides a Redis-backed document store.
package redisdb

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/pkg/randid"
)

const keyPrefix = "roomchat"

// DocStore implements docstore.Store with one Redis hash per collection,
// mapping document ID to the JSON encoded document.
type DocStore struct {
	client *redis.Client
	now    func() time.Time
}

// Open connects to the Redis server at addr and verifies the connection.
func Open(ctx context.Context, addr string) (*DocStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return New(client), nil
}

// New wraps an existing client.
func New(client *redis.Client) *DocStore {
	return &DocStore{client: client, now: time.Now}
}

// Close closes the client.
func (s *DocStore) Close() error {
	return s.client.Close()
}

func collectionKey(databaseID, collectionID string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, databaseID, collectionID)
}

// ListDocuments loads every document in the collection hash and applies q.
func (s *DocStore) ListDocuments(ctx context.Context, databaseID, collectionID string, q docstore.Query) ([]docstore.Document, error) {
	if err := docstore.ValidateAddress(databaseID, collectionID); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	values, err := s.client.HVals(ctx, collectionKey(databaseID, collectionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	docs := make([]docstore.Document, 0, len(values))
	for _, v := range values {
		var doc docstore.Document
		if err := json.Unmarshal([]byte(v), &doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, doc)
	}

	// Hash order is unspecified; restore insertion order first.
	slices.SortStableFunc(docs, func(a, b docstore.Document) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return docstore.Apply(docs, q), nil
}

// CreateDocument stores a document with HSETNX so concurrent writers cannot
// overwrite an existing ID.
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

	created, err := s.client.HSetNX(ctx, collectionKey(databaseID, collectionID), documentID, value).Result()
	if err != nil {
		return docstore.Document{}, fmt.Errorf("store document: %w", err)
	}
	if !created {
		return docstore.Document{}, fmt.Errorf("%w: %s", docstore.ErrDocumentExists, documentID)
	}

	return doc, nil
}
