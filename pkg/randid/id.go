// Package randid provides random ID generation utilities.
package randid

import "math/rand/v2"

// DocumentIDLength matches the length of IDs handed out by hosted document
// stores for "unique()" document IDs.
const DocumentIDLength = 20

const chars = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate creates a random alphanumeric ID of the specified length.
func Generate(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = chars[rand.IntN(len(chars))]
	}
	return string(b)
}

// Document returns a new document ID.
func Document() string {
	return Generate(DocumentIDLength)
}
