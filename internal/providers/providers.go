package providers

import (
	"context"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Config represents the configuration for an LLM provider
type Config struct {
	Model       string
	Temperature float64
}

// Message is one turn of a conversation in a provider neutral shape
type Message struct {
	Role       string     `json:"role" yaml:"role"`
	Content    string     `json:"content,omitempty" yaml:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty" yaml:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty" yaml:"tool_name,omitempty"`
}

// ToolCall is a request from the model to run a tool
type ToolCall struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Arguments map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// ToolDefinition advertises a tool to the model
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema
}

// Request is everything sent to the model for one generation step
type Request struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDefinition
}

// Response is either final text or a set of tool calls (or both)
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// Provider defines the interface for an LLM provider
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
