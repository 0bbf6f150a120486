package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/roomchat/internal/core/docstore"
)

// ErrInvalidMessage is returned by DecodeMessage for documents that do not
// hold a usable message.
var ErrInvalidMessage = errors.New("invalid message document")

// DecodeMessage converts a stored document into a Message.
//
// The document must have an ID, a string senderId and a text that is non-empty
// after trimming. A missing or blank senderName becomes UnknownSender. A
// missing createdAt falls back to the store's creation time.
func DecodeMessage(doc docstore.Document) (Message, error) {
	if doc.ID == "" {
		return Message{}, fmt.Errorf("%w: missing id", ErrInvalidMessage)
	}

	senderID, ok := doc.String(FieldSenderID)
	if !ok {
		return Message{}, fmt.Errorf("%w: %s: %s is not a string", ErrInvalidMessage, doc.ID, FieldSenderID)
	}

	text, ok := doc.String(FieldText)
	if !ok || strings.TrimSpace(text) == "" {
		return Message{}, fmt.Errorf("%w: %s: empty %s", ErrInvalidMessage, doc.ID, FieldText)
	}

	senderName, _ := doc.String(FieldSenderName)
	if strings.TrimSpace(senderName) == "" {
		senderName = UnknownSender
	}

	createdAt, _ := doc.String(FieldCreatedAt)
	if createdAt == "" && !doc.CreatedAt.IsZero() {
		createdAt = FormatTimestamp(doc.CreatedAt)
	}

	return Message{
		ID:         doc.ID,
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
		CreatedAt:  createdAt,
	}, nil
}

// encodeMessage builds the document body for a new message.
func encodeMessage(m Message) map[string]any {
	return map[string]any{
		FieldSenderID:   m.SenderID,
		FieldSenderName: m.SenderName,
		FieldText:       m.Text,
		FieldCreatedAt:  m.CreatedAt,
	}
}
