package gemini

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/sitebuilder/internal/providers"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash"

// Gemini is a provider for Google Gemini
type Gemini struct {
	config providers.Config
}

// New returns a new Gemini provider
func New(config providers.Config) *Gemini {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	return &Gemini{config: config}
}

// APIKey returns the configured key, accepting either of the names Google documents.
func APIKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}

// Generate runs one chat step with function calling enabled
func (g *Gemini) Generate(ctx context.Context, req providers.Request) (*providers.Response, error) {
	apiKey := APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) environment variable not set")
	}

	contents := toContents(req.Messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("no messages to send to Gemini")
	}
	last := contents[len(contents)-1]
	if last.Role != "user" {
		return nil, fmt.Errorf("conversation must end with a user or tool turn, got %q", last.Role)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.config.Model)
	model.SetTemperature(float32(g.config.Temperature))
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}
	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(req.Tools)}}
	}

	cs := model.StartChat()
	cs.History = contents[:len(contents)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("empty content returned from Gemini")
	}

	return fromParts(candidate.Content.Parts), nil
}

// toContents maps the neutral history onto Gemini's user/model turns.
// Consecutive tool results are folded into a single user turn.
func toContents(messages []providers.Message) []*genai.Content {
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case providers.RoleUser:
			if m.Content == "" {
				continue
			}
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		case providers.RoleAssistant:
			var parts []genai.Part
			if m.Content != "" {
				parts = append(parts, genai.Text(m.Content))
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: tc.Arguments})
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})
		case providers.RoleTool:
			part := genai.FunctionResponse{
				Name:     m.ToolName,
				Response: map[string]any{"content": m.Content},
			}
			if n := len(contents); n > 0 && isFunctionResponses(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{part}})
		}
	}
	return contents
}

func isFunctionResponses(c *genai.Content) bool {
	if c.Role != "user" || len(c.Parts) == 0 {
		return false
	}
	for _, p := range c.Parts {
		if _, ok := p.(genai.FunctionResponse); !ok {
			return false
		}
	}
	return true
}

func fromParts(parts []genai.Part) *providers.Response {
	resp := &providers.Response{}
	for _, p := range parts {
		switch v := p.(type) {
		case genai.Text:
			resp.Text += string(v)
		case genai.FunctionCall:
			resp.ToolCalls = append(resp.ToolCalls, providers.ToolCall{
				ID:        uuid.NewString(),
				Name:      v.Name,
				Arguments: v.Args,
			})
		}
	}
	return resp
}

func toDeclarations(tools []providers.ToolDefinition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  toSchema(t.Parameters),
		})
	}
	return decls
}

// toSchema converts a JSON schema map. Objects without properties become
// nil because Gemini rejects empty object schemas.
func toSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}

	s := &genai.Schema{Type: schemaType(m["type"])}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	for _, e := range stringList(m["enum"]) {
		s.Enum = append(s.Enum, e)
	}

	switch s.Type {
	case genai.TypeObject:
		props, _ := m["properties"].(map[string]any)
		if len(props) == 0 {
			return nil
		}
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			child, _ := raw.(map[string]any)
			if cs := toSchema(child); cs != nil {
				s.Properties[name] = cs
			}
		}
		s.Required = stringList(m["required"])
	case genai.TypeArray:
		items, _ := m["items"].(map[string]any)
		s.Items = toSchema(items)
	}
	return s
}

func schemaType(v any) genai.Type {
	t, _ := v.(string)
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
