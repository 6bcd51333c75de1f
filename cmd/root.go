package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// defaultLogLevel can be set per command through Annotations.
const defaultLogLevel = "default-log-level"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitebuilder",
		Short: "Chat driven website builder backed by a local tool server",
		Long: `Sitebuilder builds websites from plain language requests.

The tool server owns a project directory and exposes Netlify, file and image
tools over MCP (SSE). The agent connects to it, discovers the tools and uses a
language model to create, modify, preview and deploy the site, remembering each
session's conversation.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return setupLogging(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error (env SITEBUILDER_LOG_LEVEL)")

	cmd.AddCommand(newToolServerCmd(version))
	cmd.AddCommand(newServeCmd(version))
	cmd.AddCommand(newChatCmd(version))
	cmd.AddCommand(newCheckpointsCmd())

	return cmd
}

func setupLogging(cmd *cobra.Command) error {
	value := flagOrEnv(cmd, "log-level", "SITEBUILDER_LOG_LEVEL")
	if f := cmd.Flags().Lookup("log-level"); f != nil && !f.Changed && os.Getenv("SITEBUILDER_LOG_LEVEL") == "" {
		if lvl, ok := cmd.Annotations[defaultLogLevel]; ok {
			value = lvl
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", value, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// flagOrEnv prefers an explicitly set flag, then the environment, then the
// flag default. Reading at run time lets values from .env apply.
func flagOrEnv(cmd *cobra.Command, flag, env string) string {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		return os.Getenv(env)
	}
	if f.Changed {
		return f.Value.String()
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return f.Value.String()
}

func intFlagOrEnv(cmd *cobra.Command, flag, env string) (int, error) {
	v := flagOrEnv(cmd, flag, env)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q for --%s: %w", v, flag, err)
	}
	return n, nil
}

func durationFlagOrEnv(cmd *cobra.Command, flag, env string) (time.Duration, error) {
	v := flagOrEnv(cmd, flag, env)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q for --%s: %w", v, flag, err)
	}
	return d, nil
}
