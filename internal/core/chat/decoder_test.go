package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/roomchat/internal/core/docstore"
)

func TestDecodeMessage(t *testing.T) {
	storeTime := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		doc     docstore.Document
		want    Message
		wantErr bool
	}{
		{
			name: "complete document",
			doc: docstore.Document{ID: "m1", Data: map[string]any{
				FieldSenderID: "u1", FieldSenderName: "Alice", FieldText: "hi", FieldCreatedAt: "2024-05-01T10:00:00.000Z",
			}},
			want: Message{ID: "m1", SenderID: "u1", SenderName: "Alice", Text: "hi", CreatedAt: "2024-05-01T10:00:00.000Z"},
		},
		{
			name: "missing sender name",
			doc: docstore.Document{ID: "m2", Data: map[string]any{
				FieldSenderID: "u1", FieldText: "hi", FieldCreatedAt: "2024-05-01T10:00:00.000Z",
			}},
			want: Message{ID: "m2", SenderID: "u1", SenderName: UnknownSender, Text: "hi", CreatedAt: "2024-05-01T10:00:00.000Z"},
		},
		{
			name: "non-string sender name",
			doc: docstore.Document{ID: "m3", Data: map[string]any{
				FieldSenderID: "u1", FieldSenderName: 42, FieldText: "hi",
			}, CreatedAt: storeTime},
			want: Message{ID: "m3", SenderID: "u1", SenderName: UnknownSender, Text: "hi", CreatedAt: "2024-05-01T09:30:00.000Z"},
		},
		{
			name:    "missing id",
			doc:     docstore.Document{Data: map[string]any{FieldSenderID: "u1", FieldText: "hi"}},
			wantErr: true,
		},
		{
			name:    "missing sender id",
			doc:     docstore.Document{ID: "m4", Data: map[string]any{FieldText: "hi"}},
			wantErr: true,
		},
		{
			name:    "blank text",
			doc:     docstore.Document{ID: "m5", Data: map[string]any{FieldSenderID: "u1", FieldText: " \n"}},
			wantErr: true,
		},
		{
			name:    "nil data",
			doc:     docstore.Document{ID: "m6"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMessage(tt.doc)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMessage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessage_Time(t *testing.T) {
	m := Message{CreatedAt: "2024-05-01T10:15:30.123Z"}
	got, ok := m.Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 15, 30, 123_000_000, time.UTC), got)

	m.CreatedAt = "2024-05-01T12:15:30+02:00"
	got, ok = m.Time()
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 5, 1, 10, 15, 30, 0, time.UTC)))

	m.CreatedAt = "yesterday"
	_, ok = m.Time()
	assert.False(t, ok)
}
