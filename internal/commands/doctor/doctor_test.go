package doctor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/roomchat/internal/core/chat"
	"github.com/hay-kot/roomchat/internal/core/config"
	"github.com/hay-kot/roomchat/internal/core/identity"
)

type fakeRoom struct {
	msgs []chat.Message
	err  error
}

func (f *fakeRoom) FetchRecent(context.Context) ([]chat.Message, error) { return f.msgs, f.err }

func (f *fakeRoom) Send(context.Context, string, string, string) (chat.Message, error) {
	return chat.Message{}, errors.New("not used")
}

type fakeSession struct {
	user *identity.Principal
}

func (f *fakeSession) Check(context.Context) bool { return f.user != nil }

func (f *fakeSession) User() (identity.Principal, bool) {
	if f.user == nil {
		return identity.Principal{}, false
	}
	return *f.user, true
}

func openRoom(room chat.Store) RoomOpener {
	return func(context.Context) (chat.Store, error) { return room, nil }
}

func TestRunAll_SetsStatusStrings(t *testing.T) {
	results := RunAll(context.Background(), []Check{
		NewStoreCheck(openRoom(&fakeRoom{msgs: make([]chat.Message, 3)}), "jsonfile"),
		NewSessionCheck(&fakeSession{}),
	})

	require.Len(t, results, 2)
	require.Len(t, results[0].Items, 2)
	assert.Equal(t, "pass", results[0].Items[0].StatusStr)
	assert.Equal(t, "jsonfile backend", results[0].Items[0].Detail)
	assert.Equal(t, "3 message(s)", results[0].Items[1].Detail)
	assert.Equal(t, "warn", results[1].Items[0].StatusStr)

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 0, failed)
}

func TestStoreCheck(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status Status
		detail string
	}{
		{"missing configuration", &chat.ConfigurationError{Missing: []string{"database_id"}}, StatusWarn, "Database configuration is missing"},
		{"query failure", &chat.FetchError{Err: errors.New("refused")}, StatusFail, "Failed to load messages: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewStoreCheck(openRoom(&fakeRoom{err: tt.err}), "redis").Run(context.Background())
			require.Len(t, result.Items, 2)
			assert.Equal(t, StatusPass, result.Items[0].Status)
			assert.Equal(t, tt.status, result.Items[1].Status)
			assert.Equal(t, tt.detail, result.Items[1].Detail)
		})
	}
}

func TestStoreCheck_OpenFailure(t *testing.T) {
	open := func(context.Context) (chat.Store, error) {
		return nil, errors.New("open store: dial tcp 127.0.0.1:6379: connection refused")
	}

	result := NewStoreCheck(open, "redis").Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, "Store reachable", result.Items[0].Label)
	assert.Equal(t, StatusFail, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "connection refused")

	_, _, failed := Summary([]Result{result})
	assert.Equal(t, 1, failed)
	assert.False(t, Healthy([]Result{result}))
}

func TestSessionCheck_SignedIn(t *testing.T) {
	result := NewSessionCheck(&fakeSession{user: &identity.Principal{ID: "u1", Username: "alice"}}).Run(context.Background())
	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "alice", result.Items[0].Detail)
}

func TestConfigCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	result := NewConfigCheck(&cfg, filepath.Join(cfg.DataDir, "missing.yaml")).Run(context.Background())

	var warned []string
	for _, item := range result.Items {
		if item.Status == StatusWarn {
			warned = append(warned, item.Label)
		}
	}
	assert.Equal(t, []string{"Store (database_id)", "Store (collection_id)"}, warned)

	cfg.Store.DatabaseID = "main"
	cfg.Store.CollectionID = "messages"
	result = NewConfigCheck(&cfg, "").Run(context.Background())
	_, _, failed := Summary([]Result{result})
	assert.Zero(t, failed)
	assert.Equal(t, "Config valid", result.Items[len(result.Items)-1].Label)
}

func TestConfigCheck_NotLoaded(t *testing.T) {
	result := NewConfigCheck(nil, "").Run(context.Background())
	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
}
