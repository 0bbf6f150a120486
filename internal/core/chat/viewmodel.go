package chat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/hay-kot/roomchat/internal/core/identity"
)

// DefaultReconcileDelay is how long the view-model waits after a confirmed
// send before re-fetching the room.
const DefaultReconcileDelay = 300 * time.Millisecond

// FetchState is the fetch lifecycle.
type FetchState int

const (
	FetchIdle FetchState = iota
	FetchLoading
	FetchLoaded
	FetchFailed
)

func (s FetchState) String() string {
	switch s {
	case FetchIdle:
		return "idle"
	case FetchLoading:
		return "loading"
	case FetchLoaded:
		return "loaded"
	case FetchFailed:
		return "error"
	default:
		return fmt.Sprintf("FetchState(%d)", int(s))
	}
}

// ErrorKind says where the current banner came from.
type ErrorKind int

const (
	NoError ErrorKind = iota
	ConfigError
	FetchFailure
	SendFailure
)

// UserSource reports the signed-in principal. *identity.Session satisfies it.
type UserSource interface {
	User() (identity.Principal, bool)
}

// FetchRequest is a fetch started by the view-model. Run performs the store
// call and may be executed off the event loop.
type FetchRequest struct {
	Gen   int
	store Store
}

// Run queries the store.
func (r *FetchRequest) Run(ctx context.Context) FetchResult {
	msgs, err := r.store.FetchRecent(ctx)
	return FetchResult{Gen: r.Gen, Messages: msgs, Err: err}
}

// FetchResult is handed back to ApplyFetch.
type FetchResult struct {
	Gen      int
	Messages []Message
	Err      error
}

// SendRequest is a send started by the view-model.
type SendRequest struct {
	LocalID    string
	SenderID   string
	SenderName string
	Text       string
	store      Store
}

// Run writes the message.
func (r *SendRequest) Run(ctx context.Context) SendResult {
	msg, err := r.store.Send(ctx, r.SenderID, r.SenderName, r.Text)
	return SendResult{LocalID: r.LocalID, Text: r.Text, Message: msg, Err: err}
}

// SendResult is handed back to ApplySend.
type SendResult struct {
	LocalID string
	Text    string
	Message Message
	Err     error
}

type entry struct {
	msg Message
	// confirmedGen is the newest fetch generation issued when the write was
	// confirmed. Fetches at or below it may predate the write.
	confirmedGen int
	local        bool
}

// ViewModel holds the chat room state. It is not safe for concurrent use:
// every method is called from a single event loop, and only the Run methods
// of the requests it returns may execute elsewhere.
type ViewModel struct {
	store          Store
	users          UserSource
	log            zerolog.Logger
	now            func() time.Time
	reconcileDelay time.Duration

	entries    []entry
	input      string
	fetchState FetchState
	sending    bool
	mounted    bool

	errText string
	errKind ErrorKind

	issuedGen  int
	appliedGen int
	localSeq   int
}

// ViewModelOption configures a ViewModel.
type ViewModelOption func(*ViewModel)

// WithReconcileDelay overrides DefaultReconcileDelay.
func WithReconcileDelay(d time.Duration) ViewModelOption {
	return func(vm *ViewModel) {
		vm.reconcileDelay = d
	}
}

// WithClock overrides the clock used to stamp pending messages.
func WithClock(now func() time.Time) ViewModelOption {
	return func(vm *ViewModel) {
		vm.now = now
	}
}

// NewViewModel creates an idle ViewModel.
func NewViewModel(store Store, users UserSource, log zerolog.Logger, opts ...ViewModelOption) *ViewModel {
	vm := &ViewModel{
		store:          store,
		users:          users,
		log:            log,
		now:            time.Now,
		reconcileDelay: DefaultReconcileDelay,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Mount starts the first fetch once a principal is available. It returns nil
// when there is no principal or the room is already mounted.
func (vm *ViewModel) Mount() *FetchRequest {
	if vm.mounted {
		return nil
	}
	if _, ok := vm.users.User(); !ok {
		return nil
	}
	vm.mounted = true
	return vm.beginFetch()
}

// Retry starts a fetch on demand.
func (vm *ViewModel) Retry() *FetchRequest {
	return vm.beginFetch()
}

// Reconcile starts the re-fetch scheduled after a confirmed send.
func (vm *ViewModel) Reconcile() *FetchRequest {
	return vm.beginFetch()
}

func (vm *ViewModel) beginFetch() *FetchRequest {
	vm.issuedGen++
	vm.fetchState = FetchLoading
	vm.clearError()
	return &FetchRequest{Gen: vm.issuedGen, store: vm.store}
}

// ApplyFetch folds a fetch result into the state. Results older than one
// already applied are ignored.
func (vm *ViewModel) ApplyFetch(res FetchResult) {
	if res.Gen < vm.appliedGen {
		vm.log.Debug().Int("gen", res.Gen).Int("applied", vm.appliedGen).Msg("dropping stale fetch result")
		return
	}
	vm.appliedGen = res.Gen

	if res.Err != nil {
		vm.setError(res.Err)
		vm.fetchState = FetchFailed
		return
	}

	fetched := lo.Map(res.Messages, func(m Message, _ int) entry {
		return entry{msg: m}
	})
	seen := lo.SliceToMap(res.Messages, func(m Message) (string, struct{}) {
		return m.ID, struct{}{}
	})

	// Keep local entries the fetch cannot have seen: pending writes and writes
	// confirmed after this fetch was issued.
	kept := lo.Filter(vm.entries, func(e entry, _ int) bool {
		if !e.local {
			return false
		}
		if e.msg.Pending {
			return true
		}
		if _, ok := seen[e.msg.ID]; ok {
			return false
		}
		return e.confirmedGen >= res.Gen
	})

	vm.entries = append(fetched, kept...)
	vm.sortEntries()
	vm.fetchState = FetchLoaded
}

// SetInput replaces the composer text.
func (vm *ViewModel) SetInput(text string) {
	vm.input = text
}

// Submit starts sending the composer text. It returns nil, leaving the state
// untouched, when the trimmed text is empty, nobody is signed in, or a send is
// already in flight.
func (vm *ViewModel) Submit() *SendRequest {
	text := strings.TrimSpace(vm.input)
	if text == "" || vm.sending {
		return nil
	}
	user, ok := vm.users.User()
	if !ok || user.ID == "" {
		return nil
	}

	vm.localSeq++
	pending := Message{
		ID:         fmt.Sprintf("local-%d", vm.localSeq),
		SenderID:   user.ID,
		SenderName: user.DisplayName(),
		Text:       text,
		CreatedAt:  FormatTimestamp(vm.now()),
		Pending:    true,
	}

	vm.input = ""
	vm.sending = true
	vm.clearError()
	vm.entries = append(vm.entries, entry{msg: pending, local: true})

	return &SendRequest{
		LocalID:    pending.ID,
		SenderID:   pending.SenderID,
		SenderName: pending.SenderName,
		Text:       text,
		store:      vm.store,
	}
}

// ApplySend folds a send result into the state. It reports whether a
// reconcile fetch should be scheduled after ReconcileDelay.
func (vm *ViewModel) ApplySend(res SendResult) bool {
	vm.sending = false

	_, idx, _ := lo.FindIndexOf(vm.entries, func(e entry) bool {
		return e.msg.Pending && e.msg.ID == res.LocalID
	})

	if res.Err != nil {
		if idx >= 0 {
			vm.entries = append(vm.entries[:idx], vm.entries[idx+1:]...)
		}
		vm.input = res.Text
		vm.setError(res.Err)
		return false
	}

	confirmed := entry{msg: res.Message, local: true, confirmedGen: vm.issuedGen}
	duplicate := lo.ContainsBy(vm.entries, func(e entry) bool {
		return !e.msg.Pending && e.msg.ID == res.Message.ID
	})

	switch {
	case idx >= 0 && duplicate:
		vm.entries = append(vm.entries[:idx], vm.entries[idx+1:]...)
	case idx >= 0:
		vm.entries[idx] = confirmed
	case !duplicate:
		vm.entries = append(vm.entries, confirmed)
	}
	vm.sortEntries()

	return true
}

// sortEntries orders stored messages by createdAt and keeps pending entries
// last. Entries whose times cannot be compared keep their relative order.
func (vm *ViewModel) sortEntries() {
	slices.SortStableFunc(vm.entries, func(a, b entry) int {
		if a.msg.Pending != b.msg.Pending {
			if a.msg.Pending {
				return 1
			}
			return -1
		}
		if a.msg.Pending {
			return 0
		}
		at, aok := a.msg.Time()
		bt, bok := b.msg.Time()
		if !aok || !bok {
			return 0
		}
		return at.Compare(bt)
	})
}

func (vm *ViewModel) setError(err error) {
	var cfgErr *ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		vm.errKind = ConfigError
	case errors.As(err, new(*SendError)):
		vm.errKind = SendFailure
	default:
		vm.errKind = FetchFailure
	}
	vm.errText = UserMessage(err)
	vm.log.Warn().Err(err).Msg(vm.errText)
}

// clearError drops the banner unless it reports missing configuration, which
// stays until restart.
func (vm *ViewModel) clearError() {
	if vm.errKind == ConfigError {
		return
	}
	vm.errKind = NoError
	vm.errText = ""
}

// Messages returns the displayed list, oldest first, pending entries last.
func (vm *ViewModel) Messages() []Message {
	return lo.Map(vm.entries, func(e entry, _ int) Message { return e.msg })
}

// Input returns the composer text.
func (vm *ViewModel) Input() string { return vm.input }

// Sending reports whether a send is in flight.
func (vm *ViewModel) Sending() bool { return vm.sending }

// FetchState returns the fetch lifecycle state.
func (vm *ViewModel) FetchState() FetchState { return vm.fetchState }

// ShowSpinner reports whether the loading indicator replaces the list.
func (vm *ViewModel) ShowSpinner() bool {
	return vm.fetchState == FetchLoading && len(vm.entries) == 0
}

// Error returns the banner text, empty when there is none.
func (vm *ViewModel) Error() string { return vm.errText }

// ErrorKind returns where the banner came from.
func (vm *ViewModel) ErrorKind() ErrorKind { return vm.errKind }

// ReconcileDelay is the wait between a confirmed send and its re-fetch.
func (vm *ViewModel) ReconcileDelay() time.Duration { return vm.reconcileDelay }

// User returns the signed-in principal, if any.
func (vm *ViewModel) User() (identity.Principal, bool) { return vm.users.User() }

// IsOwn reports whether m was sent by the signed-in principal.
func (vm *ViewModel) IsOwn(m Message) bool {
	user, ok := vm.users.User()
	return ok && user.ID != "" && m.SenderID == user.ID
}
