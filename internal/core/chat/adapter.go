package chat

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/roomchat/internal/core/docstore"
	"github.com/hay-kot/roomchat/internal/core/identity"
	"github.com/hay-kot/roomchat/internal/core/validate"
	"github.com/hay-kot/roomchat/pkg/randid"
)

// Store is the message source the view-model talks to.
type Store interface {
	FetchRecent(ctx context.Context) ([]Message, error)
	Send(ctx context.Context, senderID, senderName, text string) (Message, error)
}

// Address locates the message collection in the document store.
type Address struct {
	DatabaseID   string
	CollectionID string
}

// Missing returns the names of unset address parts.
func (a Address) Missing() []string {
	var missing []string
	if strings.TrimSpace(a.DatabaseID) == "" {
		missing = append(missing, "database_id")
	}
	if strings.TrimSpace(a.CollectionID) == "" {
		missing = append(missing, "collection_id")
	}
	return missing
}

// Adapter reads and writes chat messages in a document store.
type Adapter struct {
	store docstore.Store
	addr  Address
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

var _ Store = (*Adapter)(nil)

// NewAdapter creates an Adapter for the collection at addr.
func NewAdapter(store docstore.Store, addr Address, log zerolog.Logger) *Adapter {
	return &Adapter{
		store: store,
		addr:  addr,
		log:   log,
		now:   time.Now,
		newID: randid.Document,
	}
}

func (a *Adapter) checkAddress() error {
	if missing := a.addr.Missing(); len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// FetchRecent returns up to FetchLimit messages, oldest first. Documents that
// do not decode are skipped.
func (a *Adapter) FetchRecent(ctx context.Context) ([]Message, error) {
	if err := a.checkAddress(); err != nil {
		return nil, err
	}

	q := docstore.NewQuery(docstore.OrderAsc(FieldCreatedAt), docstore.Limit(FetchLimit))

	docs, err := a.store.ListDocuments(ctx, a.addr.DatabaseID, a.addr.CollectionID, q)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	msgs := make([]Message, 0, len(docs))
	for _, doc := range docs {
		msg, err := DecodeMessage(doc)
		if err != nil {
			a.log.Warn().Err(err).Str("document_id", doc.ID).Msg("skipping message document")
			continue
		}
		msgs = append(msgs, msg)
	}

	a.log.Debug().Int("count", len(msgs)).Msg("fetched messages")
	return msgs, nil
}

// Send writes a new message readable by anyone and returns the stored record.
// A blank senderName is stored as identity.AnonymousName.
func (a *Adapter) Send(ctx context.Context, senderID, senderName, text string) (Message, error) {
	if err := a.checkAddress(); err != nil {
		return Message{}, err
	}
	if err := validate.MessageText(text); err != nil {
		return Message{}, &SendError{Err: err}
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = identity.AnonymousName
	}

	msg := Message{
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
		CreatedAt:  FormatTimestamp(a.now()),
	}

	doc, err := a.store.CreateDocument(
		ctx,
		a.addr.DatabaseID,
		a.addr.CollectionID,
		a.newID(),
		encodeMessage(msg),
		[]docstore.Permission{docstore.Read(docstore.RoleAny)},
	)
	if err != nil {
		return Message{}, &SendError{Err: err}
	}

	created, err := DecodeMessage(doc)
	if err != nil {
		return Message{}, &SendError{Err: err}
	}

	a.log.Debug().Str("message_id", created.ID).Msg("sent message")
	return created, nil
}
