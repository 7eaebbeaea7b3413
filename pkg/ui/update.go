package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	inputBoxChromeHeight = 8 // header, tips, status bar, input box borders
	viewportMinHeight    = 3
)

// Update routes Bubble Tea messages to the appropriate handler.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case replyMsg:
		m.busy = false
		m.lastReply = msg.text
		m.appendEntry(siteStyle.Render(m.site+":"), replyStyle.Render(msg.text))
		return m, nil
	case turnErrMsg:
		m.busy = false
		m.appendEntry(errorStyle.Render("error:"), errorStyle.Render(msg.err.Error()))
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	viewportHeight := msg.Height - inputBoxChromeHeight
	if viewportHeight < viewportMinHeight {
		viewportHeight = viewportMinHeight
	}

	if !m.ready {
		m.viewport = newViewport(msg.Width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}
	m.textarea.SetWidth(msg.Width - 6)
	m.refreshViewport()
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyCtrlY:
		if m.lastReply != "" {
			if err := clipboard.WriteAll(m.lastReply); err == nil {
				m.appendNotice("copied last reply to clipboard")
			}
		}
		return m, nil
	case tea.KeyEnter:
		return m.handleEnter()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *model) handleEnter() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	input := strings.TrimSpace(m.textarea.Value())
	m.textarea.Reset()
	if input == "" {
		return m, nil
	}

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.busy = true
	m.appendEntry(userStyle.Render("you:"), input)
	return m, m.sendTurn(input)
}

// handleCommand dispatches slash commands typed into the input.
func (m *model) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch input {
	case "/end":
		m.conversation.EndConversation()
		m.lastReply = ""
		m.appendNotice("conversation ended; the next message starts a new one")
		return m, nil
	case "/copy":
		if m.lastReply == "" {
			m.appendNotice("nothing to copy yet")
			return m, nil
		}
		if err := clipboard.WriteAll(m.lastReply); err != nil {
			m.appendNotice(fmt.Sprintf("clipboard copy failed: %v", err))
			return m, nil
		}
		m.appendNotice("copied last reply to clipboard")
		return m, nil
	case "/quit", "/exit":
		return m, tea.Quit
	default:
		m.appendNotice(fmt.Sprintf("unknown command %q (try /end, /copy, /quit)", input))
		return m, nil
	}
}

func (m *model) appendEntry(label, body string) {
	fmt.Fprintf(m.transcript, "%s %s\n\n", label, body)
	m.refreshViewport()
}

func (m *model) appendNotice(text string) {
	fmt.Fprintf(m.transcript, "%s\n\n", noticeStyle.Render(text))
	m.refreshViewport()
}

func (m *model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcript.String())
	m.viewport.GotoBottom()
}
