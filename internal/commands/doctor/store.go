package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/roomchat/internal/core/chat"
)

// RoomOpener connects to the message store and returns the room on it.
type RoomOpener func(ctx context.Context) (chat.Store, error)

// StoreCheck verifies the store opens and the message collection can be
// queried.
type StoreCheck struct {
	open    RoomOpener
	backend string
}

// NewStoreCheck creates a check that opens the room and fetches from it.
func NewStoreCheck(open RoomOpener, backend string) *StoreCheck {
	return &StoreCheck{open: open, backend: backend}
}

func (c *StoreCheck) Name() string {
	return "Message Store"
}

func (c *StoreCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	room, err := c.open(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Store reachable",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	result.Items = append(result.Items, CheckItem{
		Label:  "Store reachable",
		Status: StatusPass,
		Detail: c.backend + " backend",
	})

	msgs, err := room.FetchRecent(ctx)
	if err != nil {
		var cfgErr *chat.ConfigurationError
		status := StatusFail
		if errors.As(err, &cfgErr) {
			status = StatusWarn
		}
		result.Items = append(result.Items, CheckItem{
			Label:  "Messages readable",
			Status: status,
			Detail: chat.UserMessage(err),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "Messages readable",
		Status: StatusPass,
		Detail: fmt.Sprintf("%d message(s)", len(msgs)),
	})
	return result
}
