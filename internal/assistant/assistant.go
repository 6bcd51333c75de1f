// Package assistant turns user messages into agent invocations tagged with
// the current session.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/sitebuilder/internal/agent"
	"github.com/lehigh-university-libraries/sitebuilder/internal/providers"
	"github.com/lehigh-university-libraries/sitebuilder/internal/session"
)

// Builder constructs the agent. The closer, if any, is released by Close.
type Builder func(ctx context.Context) (agent.Invoker, io.Closer, error)

// Counter reports how many messages are checkpointed for a thread.
type Counter interface {
	Len(threadID string) int
}

// Assistant is the handle the user interfaces drive.
type Assistant struct {
	sessions      *session.Manager
	counter       Counter
	build         Builder
	toolServerURL string

	mu      sync.Mutex
	invoker agent.Invoker
	closer  io.Closer
}

func New(sessions *session.Manager, counter Counter, build Builder, toolServerURL string) *Assistant {
	return &Assistant{
		sessions:      sessions,
		counter:       counter,
		build:         build,
		toolServerURL: toolServerURL,
	}
}

// Sessions returns the session manager.
func (a *Assistant) Sessions() *session.Manager {
	return a.sessions
}

// Ready reports whether the agent has been built.
func (a *Assistant) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.invoker != nil
}

// ensureAgent builds the agent on first use. A failed build is retried on the
// next call; a successful one is kept for the life of the process.
func (a *Assistant) ensureAgent(ctx context.Context) (agent.Invoker, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.invoker != nil {
		return a.invoker, nil
	}

	slog.Info("Setting up agent", "tool_server", a.toolServerURL)
	invoker, closer, err := a.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("setup failed: %w", err)
	}
	a.invoker, a.closer = invoker, closer
	slog.Info("Agent setup complete")
	return invoker, nil
}

// ProcessPrompt runs one user turn and renders the reply with session status.
func (a *Assistant) ProcessPrompt(ctx context.Context, input string) string {
	inv, err := a.ensureAgent(ctx)
	if err != nil {
		return a.errorText(err)
	}

	id, started := a.sessions.Ensure()
	if started || a.sessions.ProjectDescription() == "" {
		a.sessions.SetProjectDescription(input)
	}

	slog.Info("Processing user input", "session", session.Short(id), "input", truncate(input, 100))

	res, err := inv.Invoke(ctx, agent.Request{System: SystemPrompt, User: input}, id)
	if err != nil {
		return a.errorText(err)
	}

	slog.Info("Response processed and state saved", "session", session.Short(id), "messages", len(res.Messages))
	return ExtractText(res) + fmt.Sprintf("\n\n🧠 **Session ID:** %s... (State automatically saved)", session.Short(id))
}

func (a *Assistant) errorText(err error) string {
	slog.Error("Error processing prompt", "err", err)

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %v\n\nPlease check that:\n", err)
	fmt.Fprintf(&b, "1. The tool server is running at %s\n", a.toolServerURL)
	b.WriteString("2. Your language model API key is set correctly\n")
	b.WriteString("3. The server is accessible")
	if errors.Is(err, agent.ErrMaxIterationsExceeded) {
		b.WriteString("\n\nThe request needed too many tool calls. Try breaking it into smaller steps.")
	}
	return b.String()
}

// ExtractText prefers every assistant message with content, then the last
// message, then a dump of the result.
func ExtractText(res *agent.Result) string {
	if res == nil || len(res.Messages) == 0 {
		return fmt.Sprintf("%+v", res)
	}

	var parts []string
	for _, m := range res.Messages {
		if m.Role == providers.RoleAssistant && m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, "\n\n")
	}

	if last := res.Messages[len(res.Messages)-1]; last.Content != "" {
		return last.Content
	}
	return fmt.Sprintf("%+v", *res)
}

// StartNewProject begins a fresh session.
func (a *Assistant) StartNewProject() string {
	id := a.sessions.Start()
	return fmt.Sprintf("🚀 **Started New Website Project!**\n\nSession ID: %s...\n\nYou can now create a fresh website. Previous conversations are saved separately.", session.Short(id))
}

// SessionInfo describes the active session.
func (a *Assistant) SessionInfo() string {
	id := a.sessions.Current()
	if id == "" {
		return "📭 No active session. Start a new project or send a message to begin."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 **Active Session:** %s...\n\n", session.Short(id))
	if desc := a.sessions.ProjectDescription(); desc != "" {
		fmt.Fprintf(&b, "Project: %s\n", truncate(desc, 100))
	}
	if a.counter != nil {
		fmt.Fprintf(&b, "Checkpointed messages: %d\n", a.counter.Len(id))
	}
	b.WriteString("All your conversation history and modifications are preserved!")
	return b.String()
}

// ClearSession replaces the active session. The old thread stays checkpointed.
func (a *Assistant) ClearSession() string {
	old := a.sessions.Current()
	id := a.sessions.Start()
	return fmt.Sprintf("🧹 **Session Cleared!**\n\nOld session: %s...\nNew session: %s...\n\nStarting fresh - previous state is preserved in memory but no longer active.", session.Short(old), session.Short(id))
}

// Close releases the tool server connection if the agent was built.
func (a *Assistant) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
