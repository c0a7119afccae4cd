package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tubewise/internal/logging"
	"tubewise/internal/pipeline"
	"tubewise/internal/queue"
	"tubewise/internal/transcript"
)

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	var async bool
	var language string
	var noNotion bool

	cmd := &cobra.Command{
		Use:   "summarize <url>",
		Short: "Summarize a video, inline or via the background queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			if transcript.IsPlaylistURL(url) {
				return fmt.Errorf("playlist URLs are not supported yet; pass a single video URL")
			}
			if _, err := transcript.ExtractVideoID(url); err != nil {
				return err
			}

			if async {
				return enqueueJob(cmd, ctx, url, language, noNotion)
			}
			return runInline(cmd, ctx, url, language, noNotion)
		},
	}

	cmd.Flags().BoolVar(&async, "async", false, "Enqueue the job for the worker daemon instead of running inline")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Transcript language code (default from config)")
	cmd.Flags().BoolVar(&noNotion, "no-notion", false, "Skip Notion publishing, keep only the local file")

	return cmd
}

func enqueueJob(cmd *cobra.Command, ctx *commandContext, url, language string, noNotion bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if language == "" {
		language = cfg.Transcript.Language
	}

	store, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	job, err := store.Enqueue(cmd.Context(), url, language, noNotion)
	if err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Job %d queued: %s\n", job.ID, job.URL)
	fmt.Fprintln(cmd.OutOrStdout(), "Run `tubewise worker start` if the daemon is not running, and `tubewise status` to track progress.")
	return nil
}

func runInline(cmd *cobra.Command, ctx *commandContext, url, language string, noNotion bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	executor, err := pipeline.NewExecutor(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	if language == "" {
		language = cfg.Transcript.Language
	}
	// Inline runs reuse the queue job shape without touching the store.
	job := &queue.Job{URL: url, Language: language, NoNotion: noNotion}
	result, err := executor.Execute(cmd.Context(), job)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Summary saved: %s\n", result.LocalFilePath)
	if result.NotionPageURL != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Notion page: %s\n", result.NotionPageURL)
	}
	return nil
}
