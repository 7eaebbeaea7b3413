package webchat

import (
	"context"
	"fmt"

	"github.com/driftlabs/chatdrive/pkg/agent/tools"
)

// SendMessageTool submits one message to a chat site and returns the reply.
type SendMessageTool struct {
	manager     *ConversationManager
	defaultSite string
}

// NewSendMessageTool creates a new send message tool. defaultSite is used
// when the caller omits the site argument.
func NewSendMessageTool(manager *ConversationManager, defaultSite string) *SendMessageTool {
	return &SendMessageTool{
		manager:     manager,
		defaultSite: defaultSite,
	}
}

// Name returns the tool name.
func (t *SendMessageTool) Name() string {
	return "webchat_send_message"
}

// Description returns the tool description.
func (t *SendMessageTool) Description() string {
	return "Send a message to an AI chat site through a browser and return the site's reply. The conversation persists across calls, so follow-up messages continue the same thread."
}

// Schema returns the tool's JSON schema.
func (t *SendMessageTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"message": map[string]interface{}{
				"type":        "string",
				"description": "The message to send to the chat site",
			},
			"site": map[string]interface{}{
				"type":        "string",
				"description": fmt.Sprintf("Chat site to use. Default: %q", t.defaultSite),
			},
		},
		[]string{"message"},
	)
}

// SendMessageInput defines the input parameters for sending a message.
type SendMessageInput struct {
	Message string `xml:"message"`
	Site    string `xml:"site"`
}

// Execute sends the message and waits for the reply. Turn failures are
// returned as the result text, not as errors, so the caller can read what
// went wrong and decide whether to retry.
func (t *SendMessageTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input SendMessageInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if input.Message == "" {
		return "", nil, fmt.Errorf("message is required")
	}

	site := input.Site
	if site == "" {
		site = t.defaultSite
	}

	engine, err := t.manager.Engine(site)
	if err != nil {
		return "", nil, err
	}

	reply, err := engine.SendMessage(ctx, input.Message)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil, nil
	}

	return reply, nil, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *SendMessageTool) IsLoopBreaking() bool {
	return false
}
