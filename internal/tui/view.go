package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/roomchat/internal/styles"
)

// Fixed rows around the conversation: title, subtitle, two dividers, status,
// input and help.
const fixedChromeRows = 7

// chromeHeight returns the rows taken by everything except the conversation.
func (m Model) chromeHeight() int {
	rows := fixedChromeRows
	if banner := m.bannerText(); banner != "" {
		rows += lipgloss.Height(m.renderBanner(banner))
	}
	return rows
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	divider := dividerStyle.Render(strings.Repeat("─", max(m.width, 1)))

	sections := []string{
		m.renderHeader(),
		divider,
	}

	if banner := m.bannerText(); banner != "" {
		sections = append(sections, m.renderBanner(banner))
	}

	sections = append(sections,
		m.renderBody(),
		divider,
		m.renderStatus(),
		m.input.View(),
		m.help.View(m.keys),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := titleStyle.Render(iconChat + " Chat Room")
	subtitle := subtitleStyle.Render(messageCount(len(m.vm.Messages())) + " " + iconDot + " " + onlineStyle.Render("Online"))
	return title + "\n" + subtitle
}

// messageCount renders "1 message" / "N messages".
func messageCount(n int) string {
	if n == 1 {
		return "1 message"
	}
	return fmt.Sprintf("%d messages", n)
}

func (m Model) bannerText() string {
	if m.sessionChecked && !m.signedIn {
		return "Not signed in. Run 'roomchat signin' and try again."
	}
	return m.vm.Error()
}

func (m Model) renderBanner(text string) string {
	return errorStyle.Width(max(m.width-4, 10)).Render(text)
}

func (m Model) renderBody() string {
	height := max(m.height-m.chromeHeight(), 1)
	place := func(content string) string {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content)
	}

	switch {
	case !m.sessionChecked || m.vm.ShowSpinner():
		return place(m.spinner.View() + " Loading messages...")
	case len(m.vm.Messages()) == 0:
		return place(lipgloss.JoinVertical(lipgloss.Center,
			styles.BannerStyle.Render(styles.Banner),
			"",
			welcomeTitleStyle.Render("Welcome to Chat"),
			"",
			welcomeTextStyle.Render("Start a conversation! Your messages will appear here once you send your first message."),
		))
	default:
		return m.viewport.View()
	}
}

func (m Model) renderStatus() string {
	if m.vm.Sending() {
		return statusStyle.Render(m.spinner.View() + " Sending message...")
	}
	return ""
}
