package redisdb

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/internal/store/storetest"
	"github.com/hay-kot/roomchat/pkg/randid"
)

func TestDocStore_Conformance(t *testing.T) {
	addr := os.Getenv("ROOMCHAT_TEST_REDIS")
	if addr == "" {
		t.Skip("Skipping: ROOMCHAT_TEST_REDIS not set")
	}

	storetest.Run(t, func(t *testing.T) docstore.Store {
		store, err := Open(context.Background(), addr)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		// Each subtest gets its own key space.
		return &prefixed{DocStore: store, db: "test" + randid.Generate(8)}
	})
}

// prefixed rewrites database IDs so subtests sharing a server stay isolated.
type prefixed struct {
	*DocStore
	db string
}

func (p *prefixed) ListDocuments(ctx context.Context, databaseID, collectionID string, q docstore.Query) ([]docstore.Document, error) {
	if databaseID == "" {
		return p.DocStore.ListDocuments(ctx, databaseID, collectionID, q)
	}
	docs, err := p.DocStore.ListDocuments(ctx, p.db+databaseID, collectionID, q)
	for i := range docs {
		docs[i].DatabaseID = databaseID
	}
	return docs, err
}

func (p *prefixed) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any, perms []docstore.Permission) (docstore.Document, error) {
	if databaseID == "" {
		return p.DocStore.CreateDocument(ctx, databaseID, collectionID, documentID, data, perms)
	}
	doc, err := p.DocStore.CreateDocument(ctx, p.db+databaseID, collectionID, documentID, data, perms)
	doc.DatabaseID = databaseID
	return doc, err
}

func TestCollectionKey(t *testing.T) {
	assert.Equal(t, "roomchat:main:messages", collectionKey("main", "messages"))
}
