package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/internal/store/storetest"
)

func TestDocStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) docstore.Store {
		return NewDocStore(filepath.Join(t.TempDir(), "documents"))
	})
}

func TestDocStore_PersistsAcrossInstances(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "documents")
	ctx := context.Background()

	_, err := NewDocStore(dir).CreateDocument(ctx, "main", "messages", "abc", map[string]any{"text": "hi"}, nil)
	require.NoError(t, err)

	docs, err := NewDocStore(dir).ListDocuments(ctx, "main", "messages", docstore.Query{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "abc", docs[0].ID)

	_, err = os.Stat(filepath.Join(dir, "main", "messages.json"))
	assert.NoError(t, err)
}

func TestDocStore_CorruptFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "documents")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "main"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main", "messages.json"), []byte("{not json"), 0o644))

	_, err := NewDocStore(dir).ListDocuments(context.Background(), "main", "messages", docstore.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse collection file")
}
