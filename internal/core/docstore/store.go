package docstore

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for document store operations.
var (
	ErrDocumentExists = errors.New("document already exists")
	ErrInvalidQuery   = errors.New("invalid query")
	ErrInvalidAddress = errors.New("invalid database or collection id")
)

// Store defines persistence operations for documents.
type Store interface {
	// ListDocuments returns documents of a collection ordered and capped by q.
	// A collection that has never been written to is empty, not an error.
	ListDocuments(ctx context.Context, databaseID, collectionID string, q Query) ([]Document, error)

	// CreateDocument stores a new document. An empty documentID asks the store
	// to assign one. Returns ErrDocumentExists if the ID is already taken.
	CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any, perms []Permission) (Document, error)
}

// ValidateAddress checks a database/collection pair before it is used to
// build keys or file paths.
func ValidateAddress(databaseID, collectionID string) error {
	for _, id := range []string{databaseID, collectionID} {
		if strings.TrimSpace(id) == "" || strings.ContainsAny(id, `/\:`) || id == "." || id == ".." {
			return ErrInvalidAddress
		}
	}
	return nil
}
