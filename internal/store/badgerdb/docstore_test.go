package badgerdb

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/internal/store/storetest"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDocStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) docstore.Store {
		return New(openTestDB(t))
	})
}

func TestDocStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)
	_, err = store.CreateDocument(ctx, "main", "messages", "keep", map[string]any{"text": "persisted"}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	docs, err := store.ListDocuments(ctx, "main", "messages", docstore.Query{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	text, _ := docs[0].String("text")
	assert.Equal(t, "persisted", text)
}

func TestDocumentKey(t *testing.T) {
	assert.Equal(t, "doc:main:messages:abc", string(documentKey("main", "messages", "abc")))
	assert.Equal(t, "doc:main:messages:", string(collectionPrefix("main", "messages")))
}
