// Package docstore defines the document store domain types and interfaces.
//
// A document store keeps schemaless records grouped into collections, and
// collections into databases. Stores answer ordered, capped queries and accept
// new documents together with their access permissions.
package docstore

import (
	"fmt"
	"time"
)

// Role identifies a class of principals that a permission applies to.
type Role string

// RoleAny matches every principal, signed in or not.
const RoleAny Role = "any"

// Permission is an access rule attached to a document, e.g. `read("any")`.
type Permission string

// Read grants read access to role.
func Read(role Role) Permission {
	return Permission(fmt.Sprintf("read(%q)", string(role)))
}

// Document is a single record stored in a collection.
type Document struct {
	ID           string         `json:"$id"`
	DatabaseID   string         `json:"$databaseId"`
	CollectionID string         `json:"$collectionId"`
	CreatedAt    time.Time      `json:"$createdAt"`
	Permissions  []Permission   `json:"$permissions"`
	Data         map[string]any `json:"data"`
}

// Field returns the raw value of a data field.
func (d Document) Field(name string) (any, bool) {
	if d.Data == nil {
		return nil, false
	}
	v, ok := d.Data[name]
	return v, ok
}

// String returns a data field as a string. Missing fields, nil values and
// non-string values report ok=false.
func (d Document) String(name string) (string, bool) {
	v, ok := d.Field(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// HasPermission reports whether the document carries perm.
func (d Document) HasPermission(perm Permission) bool {
	for _, p := range d.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
