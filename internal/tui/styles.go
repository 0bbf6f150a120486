// Package tui implements the Bubble Tea chat room for roomchat.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/roomchat/internal/styles"
)

// Tokyo Night color palette.
var (
	colorGreen  = styles.ColorGreen
	colorYellow = styles.ColorYellow
	colorBlue   = styles.ColorBlue
	colorGray   = styles.ColorGray
	colorWhite  = styles.ColorWhite
	colorRed    = styles.ColorRed
	colorPurple = lipgloss.Color("#bb9af7") // magenta
)

var (
	// Title style for the room header.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			PaddingLeft(1)

	// Subtitle under the title: message count and status.
	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingLeft(1)

	onlineStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	// Error banner.
	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorRed).
			Padding(0, 1).
			MarginLeft(1)

	// Sender label above a run of messages from someone else.
	senderStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	// Avatar initial shown next to a sender label.
	avatarStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	ownAvatarStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	// Message bubbles.
	ownBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)

	otherBubbleStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorGray).
				Padding(0, 1)

	pendingBubbleStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorYellow).
				Padding(0, 1)

	timeStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	// Empty state.
	welcomeTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite)

	welcomeTextStyle = lipgloss.NewStyle().
				Foreground(colorGray)

	// Sending indicator and help line.
	statusStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Italic(true).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingLeft(1)

	dividerStyle = styles.DividerStyle

	// Spinner style.
	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorBlue)
)

// Icons and symbols.
const (
	iconChat = "\U000f0369" // Nerd Font chat icon
	iconDot  = "•"          // Unicode bullet separator
)
