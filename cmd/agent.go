package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lehigh-university-libraries/sitebuilder/internal/agent"
	"github.com/lehigh-university-libraries/sitebuilder/internal/assistant"
	"github.com/lehigh-university-libraries/sitebuilder/internal/llm"
	"github.com/lehigh-university-libraries/sitebuilder/internal/session"
	"github.com/lehigh-university-libraries/sitebuilder/internal/storage"
	"github.com/lehigh-university-libraries/sitebuilder/internal/toolserver"
	"github.com/spf13/cobra"
)

// addAgentFlags registers the flags shared by the commands that talk to the model.
func addAgentFlags(cmd *cobra.Command) {
	cmd.Flags().String("tool-server-url", toolserver.DefaultURL, "Tool server SSE endpoint (env SITEBUILDER_TOOL_SERVER_URL)")
	cmd.Flags().String("provider", "", "LLM provider: gemini, openai or ollama (env LLM_PROVIDER, default gemini)")
	cmd.Flags().String("model", "", "Model name (env GEMINI_MODEL, OPENAI_MODEL or OLLAMA_MODEL)")
	cmd.Flags().Float64("temperature", llm.DefaultTemperature, "Sampling temperature")
	cmd.Flags().Int("max-iterations", agent.DefaultMaxIterations, "Maximum model steps per prompt (env SITEBUILDER_MAX_ITERATIONS)")
	cmd.Flags().String("checkpoint-file", "", "Persist conversation state to this YAML file (env SITEBUILDER_CHECKPOINT_FILE)")
	cmd.Flags().Int("max-messages", 0, "Keep at most this many messages per session, 0 keeps all (env SITEBUILDER_MAX_MESSAGES)")
}

// newAssistant wires the model, checkpoint store and session manager. The
// tool server connection is made lazily on the first prompt.
func newAssistant(cmd *cobra.Command, version string) (*assistant.Assistant, *storage.CheckpointStore, error) {
	toolServerURL := flagOrEnv(cmd, "tool-server-url", "SITEBUILDER_TOOL_SERVER_URL")
	checkpointFile := flagOrEnv(cmd, "checkpoint-file", "SITEBUILDER_CHECKPOINT_FILE")
	providerName, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")

	temperature, err := strconv.ParseFloat(flagOrEnv(cmd, "temperature", "SITEBUILDER_TEMPERATURE"), 64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid temperature: %w", err)
	}
	maxIterations, err := intFlagOrEnv(cmd, "max-iterations", "SITEBUILDER_MAX_ITERATIONS")
	if err != nil {
		return nil, nil, err
	}
	maxMessages, err := intFlagOrEnv(cmd, "max-messages", "SITEBUILDER_MAX_MESSAGES")
	if err != nil {
		return nil, nil, err
	}

	provider, err := llm.New(providerName, model, temperature)
	if err != nil {
		return nil, nil, err
	}

	store := storage.New()
	store.SetMaxMessages(maxMessages)
	if checkpointFile != "" {
		if err := store.LoadFile(checkpointFile); err != nil {
			return nil, nil, err
		}
		store.SetSnapshotPath(checkpointFile)
		slog.Info("Checkpoints restored", "file", checkpointFile, "sessions", len(store.Threads()))
	}

	build := assistant.Setup(assistant.Options{
		ToolServerURL: toolServerURL,
		Provider:      provider,
		Checkpointer:  store,
		MaxIterations: maxIterations,
		Version:       version,
	})
	return assistant.New(session.New(), store, build, toolServerURL), store, nil
}
