package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/roomchat/internal/core/chat"
)

// sessionCheckedMsg is sent when the identity session has been checked.
type sessionCheckedMsg struct {
	ok bool
}

// messagesLoadedMsg is sent when a fetch completes.
type messagesLoadedMsg struct {
	result chat.FetchResult
}

// messageSentMsg is sent when a send completes.
type messageSentMsg struct {
	result chat.SendResult
}

// reconcileTickMsg triggers the re-fetch that follows a confirmed send.
type reconcileTickMsg struct{}

// checkSession returns a command that asks the identity provider for the
// current principal.
func checkSession(check func(context.Context) bool, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return sessionCheckedMsg{ok: check(ctx)}
	}
}

// loadMessages returns a command that runs a fetch off the event loop.
func loadMessages(req *chat.FetchRequest, timeout time.Duration) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return messagesLoadedMsg{result: req.Run(ctx)}
	}
}

// sendMessage returns a command that runs a send off the event loop.
func sendMessage(req *chat.SendRequest, timeout time.Duration) tea.Cmd {
	if req == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return messageSentMsg{result: req.Run(ctx)}
	}
}

// scheduleReconcile returns a command that fires reconcileTickMsg after delay.
func scheduleReconcile(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return reconcileTickMsg{}
	})
}
