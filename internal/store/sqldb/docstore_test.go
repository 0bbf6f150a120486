package sqldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/internal/store/storetest"
)

func openTestStore(t *testing.T) *DocStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "roomchat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDocStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) docstore.Store {
		return openTestStore(t)
	})
}

func TestDocStore_OrdersNumbersNumerically(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, n := range []struct {
		id string
		v  int
	}{{"ten", 10}, {"two", 2}, {"one", 1}} {
		_, err := store.CreateDocument(ctx, "main", "scores", n.id, map[string]any{"v": n.v}, nil)
		require.NoError(t, err)
	}

	docs, err := store.ListDocuments(ctx, "main", "scores", docstore.NewQuery(docstore.OrderDesc("v")))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"ten", "two", "one"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})
}

func TestRowRoundTrip(t *testing.T) {
	doc := docstore.Document{
		ID:           "x",
		DatabaseID:   "main",
		CollectionID: "messages",
		Permissions:  []docstore.Permission{docstore.Read(docstore.RoleAny)},
		Data:         map[string]any{"text": "hi"},
	}

	row, err := fromDocument(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hi"}`, row.Data)
	assert.JSONEq(t, `["read(\"any\")"]`, row.Permissions)

	back, err := row.toDocument()
	require.NoError(t, err)
	assert.Equal(t, doc.Data, back.Data)
	assert.Equal(t, doc.Permissions, back.Permissions)
}
