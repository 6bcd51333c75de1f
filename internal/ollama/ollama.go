package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/sitebuilder/internal/providers"
)

const DefaultModel = "llama3.1"

// Ollama is a provider for a local Ollama server
type Ollama struct {
	config  providers.Config
	BaseURL string
	Client  *http.Client
}

// New returns a new Ollama provider
func New(config providers.Config) *Ollama {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	return &Ollama{config: config, BaseURL: BaseURL(), Client: &http.Client{}}
}

// BaseURL reads OLLAMA_URL, then OLLAMA_HOST
func BaseURL() string {
	for _, key := range []string{"OLLAMA_URL", "OLLAMA_HOST"} {
		if v := os.Getenv(key); v != "" {
			if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
				v = "http://" + v
			}
			return strings.TrimRight(v, "/")
		}
	}
	return "http://localhost:11434"
}

type functionCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type toolCall struct {
	Function functionCall `json:"function"`
}

type message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

// Generate runs one /api/chat step
func (o *Ollama) Generate(ctx context.Context, r providers.Request) (*providers.Response, error) {
	url := o.BaseURL + "/api/chat"

	requestBody, err := json.Marshal(map[string]any{
		"model":    o.config.Model,
		"messages": toMessages(r),
		"tools":    toTools(r.Tools),
		"stream":   false,
		"options": map[string]any{
			"temperature": o.config.Temperature,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Message message `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	out := &providers.Response{Text: response.Message.Content}
	for _, tc := range response.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, providers.ToolCall{
			ID:        uuid.NewString(),
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func toMessages(r providers.Request) []message {
	var msgs []message
	if r.SystemPrompt != "" {
		msgs = append(msgs, message{Role: "system", Content: r.SystemPrompt})
	}
	for _, m := range r.Messages {
		msg := message{Role: m.Role, Content: m.Content}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, toolCall{Function: functionCall{Name: tc.Name, Arguments: tc.Arguments}})
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func toTools(tools []providers.ToolDefinition) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		params := t.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		out = append(out, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  params,
			},
		})
	}
	return out
}
