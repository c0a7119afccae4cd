// Package pipeline composes the summarization stages into the
// executor run by workers: fetch transcript, generate summary, write
// the local artifact, then publish to Notion unless the job or the
// configuration opted out.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tubewise/internal/config"
	"tubewise/internal/logging"
	"tubewise/internal/notion"
	"tubewise/internal/queue"
	"tubewise/internal/render"
	"tubewise/internal/summarize"
	"tubewise/internal/transcript"
	"tubewise/internal/worker"
)

// TranscriptFetcher resolves a URL into transcript and metadata.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, rawURL, language string) (*transcript.ContentInfo, error)
}

// SummaryGenerator produces the sectioned summary text.
type SummaryGenerator interface {
	Summarize(ctx context.Context, content *transcript.ContentInfo) (string, error)
}

// ArtifactWriter persists the summary locally.
type ArtifactWriter interface {
	WriteSummary(content *transcript.ContentInfo, rawSummary string) (string, error)
}

// PagePublisher creates the Notion page structure.
type PagePublisher interface {
	Publish(ctx context.Context, rawSummary string, content *transcript.ContentInfo) (string, error)
}

// Executor is the production job executor.
type Executor struct {
	fetcher       TranscriptFetcher
	summarizer    SummaryGenerator
	writer        ArtifactWriter
	publisher     PagePublisher
	logger        *slog.Logger
	defaultLang   string
	notionEnabled bool
}

// NewExecutor wires the production stages from configuration. The
// Bedrock model connection is established eagerly so a misconfigured
// worker fails at startup instead of on its first job.
func NewExecutor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Executor, error) {
	summarizer, err := summarize.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init summarizer: %w", err)
	}
	return New(
		transcript.NewClient(cfg, logger),
		summarizer,
		render.NewWriter(cfg),
		notion.NewPublisher(cfg, logger),
		cfg,
		logger,
	), nil
}

// New assembles an Executor from explicit stages. Tests use this to
// substitute fakes.
func New(fetcher TranscriptFetcher, summarizer SummaryGenerator, writer ArtifactWriter, publisher PagePublisher, cfg *config.Config, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		fetcher:       fetcher,
		summarizer:    summarizer,
		writer:        writer,
		publisher:     publisher,
		logger:        logging.NewComponentLogger(logger, "pipeline"),
		defaultLang:   cfg.Transcript.Language,
		notionEnabled: cfg.Notion.Enabled,
	}
}

// Execute runs the full pipeline for one job.
func (e *Executor) Execute(ctx context.Context, job *queue.Job) (worker.Result, error) {
	language := strings.TrimSpace(job.Language)
	if language == "" {
		language = e.defaultLang
	}

	logger := e.logger.With(logging.Int64(logging.FieldJobID, job.ID))

	content, err := e.fetcher.Fetch(ctx, job.URL, language)
	if err != nil {
		return worker.Result{}, fmt.Errorf("fetch content: %w", err)
	}
	logger.Info("content fetched",
		logging.String("title", content.Title),
		logging.Int("words", content.WordCount()),
	)

	rawSummary, err := e.summarizer.Summarize(ctx, content)
	if err != nil {
		return worker.Result{}, fmt.Errorf("generate summary: %w", err)
	}

	// The local artifact is written before Notion publishing so the
	// summary survives a publish failure.
	localPath, err := e.writer.WriteSummary(content, rawSummary)
	if err != nil {
		return worker.Result{}, fmt.Errorf("write local summary: %w", err)
	}
	logger.Info("local summary written", logging.String("path", localPath))

	result := worker.Result{LocalFilePath: localPath}
	if job.NoNotion || !e.notionEnabled {
		return result, nil
	}

	pageURL, err := e.publisher.Publish(ctx, rawSummary, content)
	if err != nil {
		return result, fmt.Errorf("publish to notion: %w", err)
	}
	logger.Info("notion page created", logging.String(logging.FieldURL, pageURL))
	result.NotionPageURL = pageURL
	return result, nil
}
