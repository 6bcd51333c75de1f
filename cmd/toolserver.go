package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/sitebuilder/internal/images"
	"github.com/lehigh-university-libraries/sitebuilder/internal/limits"
	"github.com/lehigh-university-libraries/sitebuilder/internal/netlify"
	"github.com/lehigh-university-libraries/sitebuilder/internal/toolserver"
	"github.com/lehigh-university-libraries/sitebuilder/internal/workspace"
	"github.com/spf13/cobra"
)

const defaultProjectDir = "website"

func newToolServerCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toolserver",
		Short: "Start the MCP tool server for the website project",
		Long: `Starts the tool server. It owns the project directory (website sources
and images) and exposes Netlify, file and image tools over MCP using SSE.`,
		Example: `  # Serve ./website on the default endpoint
  sitebuilder toolserver

  # Serve another directory on another port
  sitebuilder toolserver --project-dir ~/sites/bakery --url http://127.0.0.1:9000/mcp/sse`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rawURL := flagOrEnv(cmd, "url", "SITEBUILDER_TOOL_SERVER_URL")
			dir := flagOrEnv(cmd, "project-dir", "SITEBUILDER_PROJECT_DIR")
			perMin, err := intFlagOrEnv(cmd, "rate-limit", "SITEBUILDER_RATE_LIMIT")
			if err != nil {
				return err
			}
			timeout, err := durationFlagOrEnv(cmd, "command-timeout", "SITEBUILDER_COMMAND_TIMEOUT")
			if err != nil {
				return err
			}

			endpoint, err := toolserver.ParseEndpoint(rawURL)
			if err != nil {
				return err
			}

			ws, err := workspace.New(dir)
			if err != nil {
				return err
			}
			if err := ws.Ensure(); err != nil {
				return fmt.Errorf("failed to create project directory: %w", err)
			}

			cli := netlify.New(netlify.ExecRunner{Timeout: timeout})
			srv := toolserver.New(ws, cli, version)
			sse := srv.SSE(endpoint)

			server := &http.Server{
				Addr:    endpoint.Addr,
				Handler: toolserver.Handler(sse, endpoint, limits.NewKeyedLimiter(perMin)),
			}

			slog.Info("Tool server available",
				"url", endpoint.BaseURL+endpoint.BasePath+"/sse",
				"project_dir", ws.Dir(),
				"supported_formats", strings.Join(images.SupportedFormats, " "))

			return runServer(cmd.Context(), server, func(ctx context.Context) error {
				return sse.Shutdown(ctx)
			})
		},
	}

	cmd.Flags().String("url", toolserver.DefaultURL, "SSE endpoint URL to serve (env SITEBUILDER_TOOL_SERVER_URL)")
	cmd.Flags().String("project-dir", defaultProjectDir, "Directory holding the website files and images (env SITEBUILDER_PROJECT_DIR)")
	cmd.Flags().Int("rate-limit", 120, "Tool calls allowed per minute per client, 0 disables (env SITEBUILDER_RATE_LIMIT)")
	cmd.Flags().String("command-timeout", "10m", "Timeout for netlify and npm commands, 0 disables (env SITEBUILDER_COMMAND_TIMEOUT)")

	return cmd
}
