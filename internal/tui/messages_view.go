package tui

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/roomchat/internal/core/chat"
)

// minBubbleWidth keeps bubbles readable on narrow terminals.
const minBubbleWidth = 16

// MessagesView renders the conversation as chat bubbles: other senders on the
// left with an initial and name at the start of each run, own messages on
// the right.
type MessagesView struct {
	width    int
	location *time.Location
	markdown *glamour.TermRenderer
}

// NewMessagesView creates a view. Times are shown in loc.
func NewMessagesView(loc *time.Location) *MessagesView {
	if loc == nil {
		loc = time.Local
	}
	return &MessagesView{location: loc}
}

// SetWidth sets the render width.
func (v *MessagesView) SetWidth(width int) {
	if width == v.width {
		return
	}
	v.width = width
	if v.markdown != nil {
		v.EnableMarkdown()
	}
}

// EnableMarkdown renders message text as markdown. Messages fall back to
// plain text if the renderer cannot be built.
func (v *MessagesView) EnableMarkdown() {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(v.bubbleWidth()-4),
	)
	if err != nil {
		v.markdown = nil
		return
	}
	v.markdown = r
}

func (v *MessagesView) bubbleWidth() int {
	w := v.width * 2 / 3
	if w < minBubbleWidth {
		w = minBubbleWidth
	}
	return w
}

// Render returns the conversation. isOwn decides which side a message sits
// on and ownInitial labels own bubbles.
func (v *MessagesView) Render(msgs []chat.Message, isOwn func(chat.Message) bool, ownInitial string) string {
	var b strings.Builder

	for i, msg := range msgs {
		own := isOwn(msg)
		showSender := i == 0 || msgs[i-1].SenderID != msg.SenderID

		if i > 0 {
			b.WriteString("\n")
		}
		if own {
			b.WriteString(v.renderOwn(msg, ownInitial))
		} else {
			b.WriteString(v.renderOther(msg, showSender))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (v *MessagesView) renderOther(msg chat.Message, showSender bool) string {
	const gutter = 4 // avatar column: "[A] "

	bubble := otherBubbleStyle.Width(v.bubbleWidth()).Render(v.body(msg))

	var lines []string
	if showSender {
		header := avatarStyle.Render(initial(msg.SenderName)) + "  " + senderStyle.Render(msg.SenderName)
		lines = append(lines, " "+header)
	}
	lines = append(lines, lipgloss.NewStyle().PaddingLeft(gutter).Render(bubble))

	return strings.Join(lines, "\n")
}

func (v *MessagesView) renderOwn(msg chat.Message, ownInitial string) string {
	style := ownBubbleStyle
	if msg.Pending {
		style = pendingBubbleStyle
	}

	bubble := style.Width(v.bubbleWidth()).Render(v.body(msg))
	row := lipgloss.JoinHorizontal(lipgloss.Bottom, bubble, " ", ownAvatarStyle.Render(ownInitial))

	return lipgloss.PlaceHorizontal(v.width, lipgloss.Right, row)
}

func (v *MessagesView) body(msg chat.Message) string {
	text := msg.Text
	if v.markdown != nil {
		if rendered, err := v.markdown.Render(text); err == nil {
			text = strings.Trim(rendered, "\n")
		}
	}

	stamp := formatTime(msg, v.location)
	if msg.Pending {
		stamp = "sending"
	}
	if stamp == "" {
		return text
	}
	return text + "\n" + timeStyle.Render(stamp)
}

// formatTime renders a message time as HH:MM in loc, or "" when CreatedAt
// does not parse.
func formatTime(msg chat.Message, loc *time.Location) string {
	t, ok := msg.Time()
	if !ok {
		return ""
	}
	return t.In(loc).Format("15:04")
}

// initial returns the upper-cased first letter of name, or "?".
func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
