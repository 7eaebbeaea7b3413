package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.SetContent("")
	return vp
}

// View renders the chat interface.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := headerStyle.Render(fmt.Sprintf("  chatdrive · %s", m.site))
	tips := tipsStyle.Render("  Enter to send • /end new conversation • /copy or Ctrl+Y copy last reply • /quit or Ctrl+C to exit")
	status := m.buildStatus()
	inputBox := inputBoxStyle.Width(m.width - 4).Render(m.textarea.View())

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n%s\n", header, tips, m.viewport.View(), status, inputBox)
}

func (m *model) buildStatus() string {
	if m.busy {
		return statusBarStyle.Render(fmt.Sprintf("%s waiting for %s to finish replying...", m.spinner.View(), m.site))
	}
	return statusBarStyle.Render("ready")
}
