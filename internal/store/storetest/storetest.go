// Package storetest holds a conformance suite shared by every docstore.Store
// backend.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/roomchat/internal/core/docstore"
)

const (
	testDatabase   = "main"
	testCollection = "messages"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) docstore.Store

// Run exercises the behavior every backend must share.
func Run(t *testing.T, newStore Factory) {
	t.Run("empty collection", func(t *testing.T) {
		store := newStore(t)
		docs, err := store.ListDocuments(context.Background(), testDatabase, testCollection, docstore.Query{})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("create and list", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		created, err := store.CreateDocument(ctx, testDatabase, testCollection, "", map[string]any{
			"text":      "hello",
			"createdAt": "2024-05-01T12:00:00.000Z",
		}, []docstore.Permission{docstore.Read(docstore.RoleAny)})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID, "ID should be assigned")
		assert.False(t, created.CreatedAt.IsZero(), "CreatedAt should be set")

		docs, err := store.ListDocuments(ctx, testDatabase, testCollection, docstore.Query{})
		require.NoError(t, err)
		require.Len(t, docs, 1)

		got := docs[0]
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, testDatabase, got.DatabaseID)
		assert.Equal(t, testCollection, got.CollectionID)
		text, _ := got.String("text")
		assert.Equal(t, "hello", text)
		assert.True(t, got.HasPermission(docstore.Read(docstore.RoleAny)))
	})

	t.Run("explicit id conflict", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.CreateDocument(ctx, testDatabase, testCollection, "doc-1", map[string]any{"n": 1}, nil)
		require.NoError(t, err)

		_, err = store.CreateDocument(ctx, testDatabase, testCollection, "doc-1", map[string]any{"n": 2}, nil)
		assert.ErrorIs(t, err, docstore.ErrDocumentExists)
	})

	t.Run("orders by field not insertion", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		insert := []struct {
			id     string
			offset time.Duration
		}{
			{"A", 1 * time.Second},
			{"B", 3 * time.Second},
			{"C", 2 * time.Second},
		}
		for _, in := range insert {
			_, err := store.CreateDocument(ctx, testDatabase, testCollection, in.id, map[string]any{
				"createdAt": base.Add(in.offset).Format("2006-01-02T15:04:05.000Z"),
			}, nil)
			require.NoError(t, err)
		}

		docs, err := store.ListDocuments(ctx, testDatabase, testCollection, docstore.NewQuery(docstore.OrderAsc("createdAt")))
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, []string{"A", "C", "B"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})
	})

	t.Run("limit keeps first in order", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		for i := range 12 {
			_, err := store.CreateDocument(ctx, testDatabase, testCollection, fmt.Sprintf("m%02d", i), map[string]any{
				"createdAt": base.Add(time.Duration(i) * time.Minute).Format("2006-01-02T15:04:05.000Z"),
			}, nil)
			require.NoError(t, err)
		}

		docs, err := store.ListDocuments(ctx, testDatabase, testCollection, docstore.NewQuery(docstore.OrderAsc("createdAt"), docstore.Limit(5)))
		require.NoError(t, err)
		require.Len(t, docs, 5)
		assert.Equal(t, "m00", docs[0].ID)
		assert.Equal(t, "m04", docs[4].ID)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.CreateDocument(ctx, testDatabase, "a", "", map[string]any{"n": 1}, nil)
		require.NoError(t, err)
		_, err = store.CreateDocument(ctx, "other", testCollection, "", map[string]any{"n": 1}, nil)
		require.NoError(t, err)

		docs, err := store.ListDocuments(ctx, testDatabase, testCollection, docstore.Query{})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.ListDocuments(ctx, "", testCollection, docstore.Query{})
		assert.ErrorIs(t, err, docstore.ErrInvalidAddress)

		_, err = store.ListDocuments(ctx, testDatabase, testCollection, docstore.NewQuery(docstore.OrderAsc("bad field")))
		assert.ErrorIs(t, err, docstore.ErrInvalidQuery)

		_, err = store.CreateDocument(ctx, testDatabase, "", "", map[string]any{}, nil)
		assert.ErrorIs(t, err, docstore.ErrInvalidAddress)
	})
}
