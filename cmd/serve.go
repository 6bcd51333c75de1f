package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/sitebuilder/internal/handlers"
	"github.com/lehigh-university-libraries/sitebuilder/internal/workspace"
	"github.com/spf13/cobra"
)

func newServeCmd(version string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web API for the website builder",
		Long: `Starts the Sitebuilder web API on the specified port.

Prompts sent to /api/prompt are handled by the agent, which connects to the
tool server on first use. The project directory is previewed under /site/ and
images can be uploaded to it through /api/images.`,
		Example: `  # Start server on default port 8888
  sitebuilder serve

  # Use OpenAI and keep sessions across restarts
  sitebuilder serve --provider openai --checkpoint-file sessions.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, store, err := newAssistant(cmd, version)
			if err != nil {
				return err
			}
			defer a.Close()

			ws, err := workspace.New(flagOrEnv(cmd, "project-dir", "SITEBUILDER_PROJECT_DIR"))
			if err != nil {
				return err
			}
			if err := ws.Ensure(); err != nil {
				return fmt.Errorf("failed to create project directory: %w", err)
			}

			handler := handlers.New(a, store, ws)
			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			slog.Info("Sitebuilder interface available", "addr", addr, "url", "http://localhost"+addr, "project_dir", ws.Dir())
			return runServer(cmd.Context(), server, func(context.Context) error {
				return a.Close()
			})
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().String("project-dir", defaultProjectDir, "Project directory to preview and upload images into (env SITEBUILDER_PROJECT_DIR)")
	addAgentFlags(cmd)

	return cmd
}
