package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/roomchat/internal/core/chat"
)

// Default timings.
const (
	defaultRequestTimeout = 5 * time.Second
	defaultWidth          = 80
	defaultHeight         = 24
)

// SessionChecker refreshes the signed-in principal. *identity.Session
// satisfies it.
type SessionChecker interface {
	Check(ctx context.Context) bool
}

// Options configures the TUI behavior.
type Options struct {
	RequestTimeout time.Duration  // bound on each store call, defaults to 5s
	RenderMarkdown bool           // render message text as markdown
	Location       *time.Location // zone for message times, defaults to local
}

// Model is the Bubble Tea model for the chat room.
type Model struct {
	vm       *chat.ViewModel
	session  SessionChecker
	opts     Options
	keys     KeyMap
	help     help.Model
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	msgView  *MessagesView

	width          int
	height         int
	sessionChecked bool
	signedIn       bool
	quitting       bool
}

// New creates a new TUI model around vm.
func New(vm *chat.ViewModel, session SessionChecker, opts Options) Model {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}

	ti := textinput.New()
	ti.Placeholder = "Type your message..."
	ti.Prompt = "> "
	ti.PromptStyle = titleStyle.PaddingLeft(0)
	ti.CharLimit = 2000
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	h := help.New()
	h.Styles.ShortKey = helpStyle.PaddingLeft(0)
	h.Styles.ShortDesc = helpStyle.PaddingLeft(0)
	h.Styles.ShortSeparator = helpStyle.PaddingLeft(0)
	h.ShortSeparator = " " + iconDot + " "

	msgView := NewMessagesView(opts.Location)
	if opts.RenderMarkdown {
		msgView.EnableMarkdown()
	}

	m := Model{
		vm:       vm,
		session:  session,
		opts:     opts,
		keys:     DefaultKeyMap(),
		help:     h,
		input:    ti,
		viewport: viewport.New(defaultWidth, defaultHeight),
		spinner:  s,
		msgView:  msgView,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.layout()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		checkSession(m.session.Check, m.opts.RequestTimeout),
		textinput.Blink,
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case sessionCheckedMsg:
		m.sessionChecked = true
		m.signedIn = msg.ok
		if !msg.ok {
			m.input.Blur()
			m.layout()
			return m, nil
		}
		cmd := loadMessages(m.vm.Mount(), m.opts.RequestTimeout)
		m.layout()
		return m, tea.Batch(cmd, m.spinner.Tick)

	case messagesLoadedMsg:
		m.vm.ApplyFetch(msg.result)
		m.layout()
		m.viewport.GotoBottom()
		return m, nil

	case messageSentMsg:
		reconcile := m.vm.ApplySend(msg.result)
		if restored := m.vm.Input(); restored != "" {
			m.input.SetValue(restored)
			m.input.CursorEnd()
		}
		m.input.Focus()
		m.layout()
		m.viewport.GotoBottom()
		if reconcile {
			return m, scheduleReconcile(m.vm.ReconcileDelay())
		}
		return m, nil

	case reconcileTickMsg:
		cmd := loadMessages(m.vm.Reconcile(), m.opts.RequestTimeout)
		m.layout()
		return m, cmd

	case spinner.TickMsg:
		if !m.vm.ShowSpinner() && !m.vm.Sending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Retry):
		if !m.signedIn {
			return m, nil
		}
		cmd := loadMessages(m.vm.Retry(), m.opts.RequestTimeout)
		m.layout()
		return m, tea.Batch(cmd, m.spinner.Tick)

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Send) && !msg.Alt:
		return m.submit()
	}

	// The composer is read-only while a send is in flight.
	if m.vm.Sending() || !m.signedIn {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the composer text to the view-model.
func (m Model) submit() (tea.Model, tea.Cmd) {
	m.vm.SetInput(m.input.Value())
	req := m.vm.Submit()
	if req == nil {
		return m, nil
	}

	m.input.SetValue(m.vm.Input())
	m.layout()
	m.viewport.GotoBottom()

	return m, tea.Batch(sendMessage(req, m.opts.RequestTimeout), m.spinner.Tick)
}

// layout sizes the components and refreshes the conversation content.
func (m *Model) layout() {
	m.input.Width = max(m.width-4, 10)
	m.help.Width = m.width
	m.msgView.SetWidth(m.width)

	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-m.chromeHeight(), 1)

	user, _ := m.vm.User()
	ownInitial := "Me"
	if user.Name != "" {
		ownInitial = initial(user.Name)
	}
	m.viewport.SetContent(m.msgView.Render(m.vm.Messages(), m.vm.IsOwn, ownInitial))
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}
