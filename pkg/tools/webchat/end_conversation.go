package webchat

import (
	"context"
	"fmt"

	"github.com/driftlabs/chatdrive/pkg/agent/tools"
)

// endConfirmation is returned even when teardown partially fails; the next
// send builds a fresh session either way.
const endConfirmation = "Conversation ended. You can start a new one with the next message."

// EndConversationTool discards the current chat thread on a site.
type EndConversationTool struct {
	manager     *ConversationManager
	defaultSite string
}

// NewEndConversationTool creates a new end conversation tool.
func NewEndConversationTool(manager *ConversationManager, defaultSite string) *EndConversationTool {
	return &EndConversationTool{
		manager:     manager,
		defaultSite: defaultSite,
	}
}

// Name returns the tool name.
func (t *EndConversationTool) Name() string {
	return "webchat_end_conversation"
}

// Description returns the tool description.
func (t *EndConversationTool) Description() string {
	return "End the current conversation on a chat site. The next message sent to that site starts a fresh thread with no memory of previous turns."
}

// Schema returns the tool's JSON schema.
func (t *EndConversationTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"site": map[string]interface{}{
				"type":        "string",
				"description": fmt.Sprintf("Chat site whose conversation to end. Default: %q", t.defaultSite),
			},
		},
		nil,
	)
}

// EndConversationInput defines the input parameters for ending a conversation.
type EndConversationInput struct {
	Site string `xml:"site"`
}

// Execute ends the conversation. Teardown is best effort and always
// reports success.
func (t *EndConversationTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input EndConversationInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}

	site := input.Site
	if site == "" {
		site = t.defaultSite
	}

	engine, err := t.manager.Engine(site)
	if err != nil {
		return "", nil, err
	}

	engine.EndConversation()
	return endConfirmation, nil, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *EndConversationTool) IsLoopBreaking() bool {
	return false
}
