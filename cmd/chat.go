package cmd

import (
	"github.com/lehigh-university-libraries/sitebuilder/internal/chat"
	"github.com/spf13/cobra"
)

func newChatCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Build a website from an interactive terminal chat",
		Long: `Starts an interactive chat with the website builder agent.

Type a request such as "Create a landing page for my bakery" and the agent
uses the tool server to write, preview and deploy the site. Type /help for
the available commands.`,
		Example: `  # Chat using the default tool server
  sitebuilder chat

  # Chat with a local model
  sitebuilder chat --provider ollama --model llama3.1`,
		Annotations: map[string]string{defaultLogLevel: "warn"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := newAssistant(cmd, version)
			if err != nil {
				return err
			}
			defer a.Close()

			return chat.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a)
		},
	}

	addAgentFlags(cmd)
	return cmd
}
