// Package toolclient connects to the tool server and adapts its tools for
// the agent runtime.
package toolclient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/sitebuilder/internal/agent"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

const clientName = "sitebuilder-agent"

// Client is a live MCP session with the tool server.
type Client struct {
	url string
	mcp *client.Client
}

// Connect opens the SSE stream at url and performs the initialize handshake.
func Connect(ctx context.Context, url, version string) (*Client, error) {
	c, err := client.NewSSEMCPClient(url)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}

	// the stream outlives the request that triggered the connection
	if err := c.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, fmt.Errorf("failed to connect to tool server at %s: %w", url, err)
	}

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    clientName,
		Version: version,
	}
	info, err := c.Initialize(ctx, req)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize tool server session: %w", err)
	}

	slog.Info("Connected to tool server", "url", url, "server", info.ServerInfo.Name, "version", info.ServerInfo.Version)
	return &Client{url: url, mcp: c}, nil
}

// Tools lists the server's tools, each wrapped as an agent.Tool.
func (c *Client) Tools(ctx context.Context) ([]agent.Tool, error) {
	res, err := c.mcp.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	tools := make([]agent.Tool, 0, len(res.Tools))
	for _, t := range res.Tools {
		tools = append(tools, &RemoteTool{client: c.mcp, tool: t})
	}
	slog.Debug("Discovered tools", "count", len(tools))
	return tools, nil
}

func (c *Client) Close() error {
	return c.mcp.Close()
}

// RemoteTool forwards calls to one tool on the server.
type RemoteTool struct {
	client *client.Client
	tool   mcp.Tool
}

func (t *RemoteTool) Name() string        { return t.tool.Name }
func (t *RemoteTool) Description() string { return t.tool.Description }

func (t *RemoteTool) Parameters() map[string]any {
	props := t.tool.InputSchema.Properties
	if props == nil {
		props = map[string]any{}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(t.tool.InputSchema.Required) > 0 {
		schema["required"] = t.tool.InputSchema.Required
	}
	return schema
}

func (t *RemoteTool) Call(ctx context.Context, args map[string]any) (*agent.ToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = t.tool.Name
	req.Params.Arguments = args

	res, err := t.client.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", t.tool.Name, err)
	}
	return &agent.ToolResult{Output: Text(res), IsError: res.IsError}, nil
}

// Text joins the text parts of a tool result.
func Text(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		switch v := c.(type) {
		case mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		}
	}
	return strings.Join(parts, "\n")
}
