package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. Single source of truth for all chat UI colors.
var (
	skyBlue     = lipgloss.Color("#8ECAE6") // primary accent
	paleAmber   = lipgloss.Color("#FFD6A5") // user messages
	mintGreen   = lipgloss.Color("#A8E6CF") // site replies
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(skyBlue).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	userStyle = lipgloss.NewStyle().
			Foreground(paleAmber).
			Bold(true)

	replyStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	siteStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB3BA"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(skyBlue).
			Padding(0, 1)
)
