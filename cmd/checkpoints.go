package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/sitebuilder/internal/session"
	"github.com/lehigh-university-libraries/sitebuilder/internal/storage"
	"github.com/spf13/cobra"
)

func newCheckpointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "Inspect and export saved conversation state",
	}
	cmd.PersistentFlags().String("checkpoint-file", "", "Checkpoint YAML file written by serve or chat (env SITEBUILDER_CHECKPOINT_FILE)")

	cmd.AddCommand(newCheckpointsListCmd())
	cmd.AddCommand(newCheckpointsExportCmd())
	return cmd
}

func loadCheckpoints(cmd *cobra.Command) (*storage.CheckpointStore, error) {
	path := flagOrEnv(cmd, "checkpoint-file", "SITEBUILDER_CHECKPOINT_FILE")
	if path == "" {
		return nil, fmt.Errorf("--checkpoint-file is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}
	store := storage.New()
	if err := store.LoadFile(path); err != nil {
		return nil, err
	}
	return store, nil
}

func newCheckpointsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions and their message counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadCheckpoints(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range store.Threads() {
				fmt.Fprintf(out, "%s\t%s...\t%d messages\n", id, session.Short(id), store.Len(id))
			}
			return nil
		},
	}
}

func newCheckpointsExportCmd() *cobra.Command {
	var (
		output  string
		threads []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export conversation transcripts to a Parquet file",
		Example: `  # Export every session
  sitebuilder checkpoints export --checkpoint-file sessions.yaml --out transcripts.parquet

  # Export one session
  sitebuilder checkpoints export --checkpoint-file sessions.yaml --thread 3f2c... --out one.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadCheckpoints(cmd)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			n, err := store.ExportParquet(f, threads...)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			slog.Info("Exported transcripts", "rows", n, "file", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "transcripts.parquet", "Output Parquet file")
	cmd.Flags().StringSliceVar(&threads, "thread", nil, "Session ID to export (repeatable, default all)")
	return cmd
}
