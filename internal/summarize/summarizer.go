package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/schema"

	"tubewise/internal/config"
	"tubewise/internal/logging"
	"tubewise/internal/transcript"
)

// Summarizer generates structured summaries from transcripts.
type Summarizer struct {
	model  llms.Model
	logger *slog.Logger

	temperature        float64
	maxTokens          int
	singleShotMaxWords int
	chunkWords         int
}

// chunkOverlapWords carries context across chunk boundaries so the map
// step does not lose sentences cut mid-thought.
const chunkOverlapWords = 200

// NewFromConfig builds a Summarizer backed by Claude on AWS Bedrock.
// Credentials come from the standard AWS chain (env, shared config,
// instance role).
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Summarizer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Bedrock.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := bedrockruntime.NewFromConfig(awsCfg)
	model, err := bedrock.New(
		bedrock.WithClient(client),
		bedrock.WithModel(cfg.Bedrock.ModelID),
	)
	if err != nil {
		return nil, fmt.Errorf("create bedrock model: %w", err)
	}
	return New(model, cfg, logger), nil
}

// New builds a Summarizer on an existing model. Tests use this to
// substitute a fake.
func New(model llms.Model, cfg *config.Config, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Summarizer{
		model:              model,
		logger:             logging.NewComponentLogger(logger, "summarize"),
		temperature:        cfg.Bedrock.Temperature,
		maxTokens:          cfg.Bedrock.MaxTokens,
		singleShotMaxWords: cfg.Bedrock.SingleShotMaxWords,
		chunkWords:         cfg.Bedrock.ChunkWords,
	}
}

// Summarize produces the raw sectioned summary text for a transcript.
func (s *Summarizer) Summarize(ctx context.Context, content *transcript.ContentInfo) (string, error) {
	words := content.WordCount()
	if words == 0 {
		return "", fmt.Errorf("transcript is empty")
	}
	if words <= s.singleShotMaxWords {
		s.logger.Info("summarizing single-shot", logging.Int("words", words))
		return s.generate(ctx, summaryPrompt(content))
	}
	s.logger.Info("summarizing via map-reduce", logging.Int("words", words))
	return s.summarizeChunked(ctx, content)
}

func (s *Summarizer) summarizeChunked(ctx context.Context, content *transcript.ContentInfo) (string, error) {
	chunks := splitWords(content.Transcript, s.chunkWords, chunkOverlapWords)
	total := len(chunks)
	s.logger.Info("transcript split into chunks", logging.Int("chunks", total))

	summaries := make([]string, 0, total)
	for i, chunk := range chunks {
		s.logger.Debug("processing chunk", logging.Int("chunk", i+1), logging.Int("total", total))
		summary, err := s.generate(ctx, chunkMapPrompt(content.Title, i+1, total, chunk))
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d/%d: %w", i+1, total, err)
		}
		summaries = append(summaries, fmt.Sprintf("--- Section %d ---\n%s", i+1, summary))
	}

	combined := strings.Join(summaries, "\n\n")
	final, err := s.generate(ctx, chunkReducePrompt(content, combined))
	if err != nil {
		return "", fmt.Errorf("combine chunk summaries: %w", err)
	}
	return final, nil
}

func (s *Summarizer) generate(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}
	response, err := s.model.GenerateContent(ctx, messages,
		llms.WithTemperature(s.temperature),
		llms.WithMaxTokens(s.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return response.Choices[0].Content, nil
}

// splitWords divides text into word-bounded chunks of at most size
// words, each overlapping the previous by overlap words.
func splitWords(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if size <= 0 || len(words) <= size {
		return []string{text}
	}
	if overlap >= size {
		overlap = size / 4
	}
	step := size - overlap

	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
