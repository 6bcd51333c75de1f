package assistant

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lehigh-university-libraries/sitebuilder/internal/agent"
	"github.com/lehigh-university-libraries/sitebuilder/internal/providers"
	"github.com/lehigh-university-libraries/sitebuilder/internal/toolclient"
)

// Options configure the agent built by Setup.
type Options struct {
	ToolServerURL string
	Provider      providers.Provider
	Checkpointer  agent.Checkpointer
	MaxIterations int
	Version       string
}

// Setup returns a Builder that connects to the tool server, discovers its
// tools and binds them to the model.
func Setup(opts Options) Builder {
	return func(ctx context.Context) (agent.Invoker, io.Closer, error) {
		c, err := toolclient.Connect(ctx, opts.ToolServerURL, opts.Version)
		if err != nil {
			return nil, nil, err
		}

		tools, err := c.Tools(ctx)
		if err != nil {
			c.Close()
			return nil, nil, err
		}
		if len(tools) == 0 {
			c.Close()
			return nil, nil, fmt.Errorf("tool server at %s exposes no tools", opts.ToolServerURL)
		}

		names := make([]string, 0, len(tools))
		for _, t := range tools {
			names = append(names, t.Name())
		}
		slog.Info("Loaded tools", "count", len(tools), "tools", names)

		rt := agent.New(agent.Config{
			Provider:      opts.Provider,
			Tools:         tools,
			Checkpointer:  opts.Checkpointer,
			MaxIterations: opts.MaxIterations,
		})
		return rt, c, nil
	}
}
