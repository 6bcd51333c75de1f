// Package toolserver exposes the website building operations as MCP tools
// over an SSE endpoint.
package toolserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lehigh-university-libraries/sitebuilder/internal/images"
	"github.com/lehigh-university-libraries/sitebuilder/internal/limits"
	"github.com/lehigh-university-libraries/sitebuilder/internal/netlify"
	"github.com/lehigh-university-libraries/sitebuilder/internal/workspace"
	"github.com/mark3labs/mcp-go/server"
)

const (
	Name       = "sitebuilder-tools"
	DefaultURL = "http://127.0.0.1:7860/mcp/sse"
)

// Server owns the project directory and the tools that act on it.
type Server struct {
	ws      *workspace.Workspace
	catalog *images.Catalog
	cli     *netlify.CLI
	mcp     *server.MCPServer
}

// New registers every tool against ws. Images are catalogued from the
// project directory itself so saved pages can reference them by name.
func New(ws *workspace.Workspace, cli *netlify.CLI, version string) *Server {
	s := &Server{
		ws:      ws,
		catalog: images.NewCatalog(ws.Dir()),
		cli:     cli,
		mcp: server.NewMCPServer(
			Name,
			version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
	}
	s.register()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Endpoint is where the SSE transport is served.
type Endpoint struct {
	Addr     string // host:port to listen on
	BaseURL  string // scheme://host:port advertised to clients
	BasePath string // prefix for the sse and message endpoints
}

// ParseEndpoint splits a client facing URL such as
// http://127.0.0.1:7860/mcp/sse into its listening parts. The path must end
// in /sse.
func ParseEndpoint(raw string) (*Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid tool server url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid tool server url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid tool server url %q: missing host", raw)
	}

	addr := u.Host
	if u.Port() == "" {
		if u.Scheme == "https" {
			addr += ":443"
		} else {
			addr += ":80"
		}
	}

	// Clients connect to the URL as given, so it must name the SSE endpoint exactly.
	if !strings.HasSuffix(u.Path, "/sse") {
		return nil, fmt.Errorf("invalid tool server url %q: path must end in /sse", raw)
	}
	base := strings.TrimSuffix(u.Path, "/sse")
	return &Endpoint{
		Addr:     addr,
		BaseURL:  u.Scheme + "://" + u.Host,
		BasePath: base,
	}, nil
}

// SSE builds the transport for e.
func (s *Server) SSE(e *Endpoint) *server.SSEServer {
	opts := []server.SSEOption{server.WithBaseURL(e.BaseURL)}
	if e.BasePath != "" {
		opts = append(opts, server.WithStaticBasePath(e.BasePath))
	}
	return server.NewSSEServer(s.mcp, opts...)
}

// Handler routes the SSE transport behind the rate limiter, plus a healthcheck.
func Handler(sse http.Handler, e *Endpoint, limiter *limits.KeyedLimiter) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(e.BasePath+"/", limiter.Middleware(sse))
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}
