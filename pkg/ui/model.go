// Package ui implements the interactive terminal chat client. It renders a
// transcript of the conversation with a chat site and forwards each entered
// line as one turn.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Conversation is the slice of the engine the UI drives.
type Conversation interface {
	SendMessage(ctx context.Context, message string) (string, error)
	EndConversation()
}

// model represents the state of the chat TUI.
type model struct {
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	conversation Conversation
	site         string

	transcript *strings.Builder
	lastReply  string

	busy   bool
	width  int
	height int
	ready  bool
}

// replyMsg carries a completed turn back into the update loop.
type replyMsg struct {
	text string
}

// turnErrMsg carries a failed turn back into the update loop.
type turnErrMsg struct {
	err error
}

// newModel builds the initial TUI state for one conversation.
func newModel(conversation Conversation, site string) *model {
	ta := textarea.New()
	ta.Placeholder = "Type a message and press Enter to send"
	ta.Focus()
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = headerStyle

	return &model{
		textarea:     ta,
		spinner:      sp,
		conversation: conversation,
		site:         site,
		transcript:   &strings.Builder{},
	}
}

// Init starts the spinner and cursor blink.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// sendTurn runs one turn off the update loop. The engine serializes turns
// internally; the UI just disables input while one is in flight.
func (m *model) sendTurn(message string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.conversation.SendMessage(context.Background(), message)
		if err != nil {
			return turnErrMsg{err: err}
		}
		return replyMsg{text: reply}
	}
}

// Run starts the chat UI and blocks until the user exits.
func Run(conversation Conversation, site string) error {
	program := tea.NewProgram(newModel(conversation, site), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
