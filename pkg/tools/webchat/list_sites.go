package webchat

import (
	"context"
	"fmt"
	"strings"

	"github.com/driftlabs/chatdrive/pkg/agent/tools"
	"github.com/driftlabs/chatdrive/pkg/webchat"
)

// ListSitesTool reports the chat sites this build knows how to drive.
type ListSitesTool struct {
	manager *ConversationManager
}

// NewListSitesTool creates a new list sites tool.
func NewListSitesTool(manager *ConversationManager) *ListSitesTool {
	return &ListSitesTool{manager: manager}
}

// Name returns the tool name.
func (t *ListSitesTool) Name() string {
	return "webchat_list_sites"
}

// Description returns the tool description.
func (t *ListSitesTool) Description() string {
	return "List the chat sites available for webchat_send_message, with their URLs and which ones have an active conversation."
}

// Schema returns the tool's JSON schema.
func (t *ListSitesTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute lists registered sites and marks those with a live engine.
func (t *ListSitesTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	active := make(map[string]bool)
	for _, site := range t.manager.ActiveSites() {
		active[site] = true
	}

	var b strings.Builder
	b.WriteString("Available chat sites:\n")
	for _, name := range webchat.Names() {
		profile, ok := webchat.Lookup(name)
		if !ok {
			continue
		}
		status := ""
		if active[name] {
			status = " (active conversation)"
		}
		fmt.Fprintf(&b, "- %s: %s%s\n", name, profile.URL, status)
	}

	return strings.TrimRight(b.String(), "\n"), nil, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *ListSitesTool) IsLoopBreaking() bool {
	return false
}
