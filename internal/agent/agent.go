// Package agent runs a model against a set of tools until it produces a
// final answer, checkpointing the conversation per thread.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/sitebuilder/internal/providers"
)

const DefaultMaxIterations = 15

var ErrMaxIterationsExceeded = errors.New("max iterations exceeded")

// ToolResult is what a tool hands back to the model.
type ToolResult struct {
	Output  string
	IsError bool
}

// Tool is an operation the model may call.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns a JSON schema object for the arguments.
	Parameters() map[string]any
	Call(ctx context.Context, args map[string]any) (*ToolResult, error)
}

// Checkpointer persists thread state between invocations.
type Checkpointer interface {
	Get(threadID string) ([]providers.Message, bool)
	Put(threadID string, msgs []providers.Message) error
}

// Request is a single user turn plus the system instruction to run it under.
type Request struct {
	System string
	User   string
}

// Result holds the messages produced by one invocation, user turn first.
type Result struct {
	Messages   []providers.Message
	Iterations int
}

// Invoker is the narrow surface callers depend on.
type Invoker interface {
	Invoke(ctx context.Context, req Request, threadID string) (*Result, error)
}

// Config wires a Runtime. A nil Checkpointer keeps no history between calls.
type Config struct {
	Provider      providers.Provider
	Tools         []Tool
	Checkpointer  Checkpointer
	MaxIterations int
}

// Runtime implements the think, act, observe loop.
type Runtime struct {
	provider      providers.Provider
	tools         []Tool
	byName        map[string]Tool
	checkpointer  Checkpointer
	maxIterations int
}

// New returns a Runtime; MaxIterations defaults to DefaultMaxIterations.
func New(cfg Config) *Runtime {
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	byName := make(map[string]Tool, len(cfg.Tools))
	for _, t := range cfg.Tools {
		byName[t.Name()] = t
	}

	return &Runtime{
		provider:      cfg.Provider,
		tools:         cfg.Tools,
		byName:        byName,
		checkpointer:  cfg.Checkpointer,
		maxIterations: maxIter,
	}
}

// Tools returns the tools bound to the runtime in registration order.
func (r *Runtime) Tools() []Tool {
	return append([]Tool(nil), r.tools...)
}

// Invoke runs one user turn on threadID, checkpointing after every step.
func (r *Runtime) Invoke(ctx context.Context, req Request, threadID string) (*Result, error) {
	var history []providers.Message
	if r.checkpointer != nil {
		history, _ = r.checkpointer.Get(threadID)
	}
	start := len(history)
	msgs := append(history, providers.Message{Role: providers.RoleUser, Content: req.User})

	defs := r.definitions()

	for iteration := 1; iteration <= r.maxIterations; iteration++ {
		resp, err := r.provider.Generate(ctx, providers.Request{
			SystemPrompt: req.System,
			Messages:     msgs,
			Tools:        defs,
		})
		if err != nil {
			return nil, fmt.Errorf("LLM generation failed: %w", err)
		}

		msgs = append(msgs, providers.Message{
			Role:      providers.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		if !resp.HasToolCalls() {
			if err := r.checkpoint(threadID, msgs); err != nil {
				return nil, err
			}
			return &Result{Messages: msgs[start:], Iterations: iteration}, nil
		}

		for _, tc := range resp.ToolCalls {
			msgs = append(msgs, providers.Message{
				Role:       providers.RoleTool,
				Content:    r.execute(ctx, tc),
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
			})
		}

		if err := r.checkpoint(threadID, msgs); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: reached %d iterations without final response", ErrMaxIterationsExceeded, r.maxIterations)
}

func (r *Runtime) checkpoint(threadID string, msgs []providers.Message) error {
	if r.checkpointer == nil {
		return nil
	}
	if err := r.checkpointer.Put(threadID, msgs); err != nil {
		return fmt.Errorf("failed to checkpoint thread %s: %w", threadID, err)
	}
	return nil
}

func (r *Runtime) definitions() []providers.ToolDefinition {
	defs := make([]providers.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, providers.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// execute never fails; problems are reported to the model as text.
func (r *Runtime) execute(ctx context.Context, tc providers.ToolCall) string {
	t, exists := r.byName[tc.Name]
	if !exists {
		slog.Warn("Model called unknown tool", "tool", tc.Name)
		return fmt.Sprintf("error: unknown tool '%s'", tc.Name)
	}

	slog.Debug("Calling tool", "tool", tc.Name, "args", tc.Arguments)
	result, err := t.Call(ctx, tc.Arguments)
	if err != nil {
		slog.Error("Tool call failed", "tool", tc.Name, "err", err)
		return fmt.Sprintf("error: tool execution failed: %v", err)
	}
	if result.IsError {
		return "error: " + result.Output
	}
	return result.Output
}
