// Package chat implements the chat room: an adapter that reads and writes
// messages in a document store, and a view-model that drives the room's UI
// state.
package chat

import (
	"time"
)

// Document fields that make up a stored message.
const (
	FieldSenderID   = "senderId"
	FieldSenderName = "senderName"
	FieldText       = "text"
	FieldCreatedAt  = "createdAt"
)

const (
	// FetchLimit caps how many messages a fetch returns.
	FetchLimit = 100

	// UnknownSender replaces a missing sender name on stored messages.
	UnknownSender = "Unknown User"

	// TimestampLayout is the ISO-8601 form used for CreatedAt. It is fixed
	// width and always UTC so values sort lexicographically.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// Message is a single chat message. Messages are immutable once created.
type Message struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	CreatedAt  string `json:"createdAt"`

	// Pending marks a local entry whose write has not been confirmed yet.
	Pending bool `json:"-"`
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Time parses CreatedAt. Values written by other clients may use any RFC 3339
// precision.
func (m Message) Time() (time.Time, bool) {
	t, err := time.Parse(TimestampLayout, m.CreatedAt)
	if err == nil {
		return t, true
	}
	t, err = time.Parse(time.RFC3339Nano, m.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
