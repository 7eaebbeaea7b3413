package webchat

import (
	"github.com/driftlabs/chatdrive/pkg/agent/tools"
)

// ToolRegistry wires the webchat tools around a shared conversation manager.
// RegisterTools is the entry point for hosts embedding these tools in an
// agent loop; the chatdrive CLI itself drives the engine directly and never
// constructs a registry.
type ToolRegistry struct {
	manager     *ConversationManager
	defaultSite string
	tools       []tools.Tool
}

// NewToolRegistry creates a new webchat tool registry.
func NewToolRegistry(manager *ConversationManager, defaultSite string) *ToolRegistry {
	return &ToolRegistry{
		manager:     manager,
		defaultSite: defaultSite,
		tools:       make([]tools.Tool, 0),
	}
}

// RegisterTools creates and returns all webchat tools.
func (r *ToolRegistry) RegisterTools() []tools.Tool {
	if len(r.tools) > 0 {
		return r.tools
	}

	r.tools = append(r.tools,
		NewSendMessageTool(r.manager, r.defaultSite),
		NewEndConversationTool(r.manager, r.defaultSite),
		NewListSitesTool(r.manager),
	)

	return r.tools
}

// GetTools returns the current set of registered tools.
func (r *ToolRegistry) GetTools() []tools.Tool {
	return r.tools
}

// GetConversationManager returns the underlying conversation manager so the
// host can shut it down on exit.
func (r *ToolRegistry) GetConversationManager() *ConversationManager {
	return r.manager
}
