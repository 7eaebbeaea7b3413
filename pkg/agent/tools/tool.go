// Package tools defines the tool-invocation contract for hosts that embed
// chatdrive's capabilities in an agent loop: the Tool interface, its JSON
// schema helper, and the XML tool-call parsing a loop uses to dispatch calls.
// The chatdrive CLI drives the engine directly and does not go through this
// surface; hosts obtain the concrete tools from the registry in
// pkg/tools/webchat.
package tools

import (
	"context"
	"encoding/xml"
)

// Tool represents a capability a hosting agent can invoke. Tools are called
// through XML-formatted tool calls and return their result as text, so a
// failed invocation reads as a message rather than crashing the host.
//
// Example tool call format:
//
//	<tool>
//	<server_name>local</server_name>
//	<tool_name>webchat_send_message</tool_name>
//	<arguments>
//	  <message>What changed in Go 1.24?</message>
//	</arguments>
//	</tool>
type Tool interface {
	// Name returns the unique identifier for this tool (e.g., "webchat_send_message")
	Name() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// Schema returns the JSON schema for this tool's input parameters
	Schema() map[string]interface{}

	// Execute runs the tool with the given XML arguments and returns a result string.
	// Returns: (result string, metadata map, error)
	// Metadata is optional and can be nil.
	Execute(ctx context.Context, argumentsXML []byte) (string, map[string]interface{}, error)

	// IsLoopBreaking indicates whether this tool should terminate the agent loop
	IsLoopBreaking() bool
}

// ToolCall represents a parsed tool invocation.
type ToolCall struct {
	XMLName    xml.Name       `xml:"tool"`
	ServerName string         `xml:"server_name"`
	ToolName   string         `xml:"tool_name"`
	Arguments  ArgumentsBlock `xml:"arguments"`
}

// ArgumentsBlock holds the raw XML of the arguments element
type ArgumentsBlock struct {
	InnerXML []byte `xml:",innerxml"`
}

// GetArgumentsXML returns the arguments wrapped in <arguments> tags for unmarshaling.
func (tc *ToolCall) GetArgumentsXML() []byte {
	const prefix = "<arguments>"
	const suffix = "</arguments>"

	result := make([]byte, 0, len(prefix)+len(tc.Arguments.InnerXML)+len(suffix))
	result = append(result, []byte(prefix)...)
	result = append(result, tc.Arguments.InnerXML...)
	result = append(result, []byte(suffix)...)
	return result
}

// BaseToolSchema creates a common JSON schema structure for a tool
// with the given properties and required fields
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
