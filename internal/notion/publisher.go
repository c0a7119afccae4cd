package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"tubewise/internal/config"
	"tubewise/internal/logging"
	"tubewise/internal/transcript"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	notionVersion  = "2022-06-28"

	// blockBatchSize is Notion's limit on blocks per create/append request.
	blockBatchSize = 100

	// subPageWordThreshold switches long summaries to the multi-page
	// layout. Roughly 15 minutes of speech.
	subPageWordThreshold = 2500
)

// Publisher creates summary pages through the Notion REST API.
type Publisher struct {
	httpClient   *http.Client
	logger       *slog.Logger
	token        string
	parentPageID string
	baseURL      string
}

func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Notion.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Publisher{
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logging.NewComponentLogger(logger, "notion"),
		token:        cfg.Notion.Token,
		parentPageID: cfg.Notion.ParentPageID,
		baseURL:      defaultBaseURL,
	}
}

// Publish parses the sectioned summary and creates the page structure.
// Short summaries get a single page; long ones get a parent page with
// three sub-pages. Returns the parent page URL.
func (p *Publisher) Publish(ctx context.Context, rawSummary string, content *transcript.ContentInfo) (string, error) {
	if p.token == "" {
		return "", fmt.Errorf("notion token not configured")
	}
	if p.parentPageID == "" {
		return "", fmt.Errorf("notion parent page id not configured")
	}

	sections := ParseSections(rawSummary)
	duration := content.DurationFormatted()

	if content.WordCount() <= subPageWordThreshold {
		p.logger.Info("creating single summary page", logging.String(logging.FieldURL, content.URL))
		blocks := buildSinglePage(sections, content.URL, content.Channel, duration)
		_, pageURL, err := p.createPage(ctx, p.parentPageID, "📹 "+content.Title, blocks)
		return pageURL, err
	}

	p.logger.Info("creating summary page with sub-pages", logging.String(logging.FieldURL, content.URL))
	parentBlocks := buildParentPage(sections, content.URL, content.Channel, duration)
	parentID, pageURL, err := p.createPage(ctx, p.parentPageID, "📹 "+content.Title, parentBlocks)
	if err != nil {
		return "", err
	}

	subPages := []struct {
		title  string
		blocks []Block
	}{
		{"📚 Topics & Deep-Dives", buildTopicsSubPage(sections)},
		{"✅ Actions & Resources", buildActionsSubPage(sections)},
		{"💬 Quotes & Concept Map", buildQuotesSubPage(sections)},
	}
	for _, sub := range subPages {
		if len(sub.blocks) == 0 {
			continue
		}
		if _, _, err := p.createPage(ctx, parentID, sub.title, sub.blocks); err != nil {
			return "", fmt.Errorf("create sub-page %q: %w", sub.title, err)
		}
	}
	return pageURL, nil
}

type pageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// createPage creates a page with the first batch of blocks and appends
// the rest in batches.
func (p *Publisher) createPage(ctx context.Context, parentID, title string, blocks []Block) (string, string, error) {
	first := blocks
	if len(first) > blockBatchSize {
		first = blocks[:blockBatchSize]
	}
	payload := map[string]any{
		"parent": map[string]any{"page_id": parentID},
		"properties": map[string]any{
			"title": map[string]any{
				"title": []any{map[string]any{"text": map[string]any{"content": title}}},
			},
		},
		"children": first,
	}

	var page pageResponse
	if err := p.post(ctx, "/pages", payload, &page); err != nil {
		return "", "", fmt.Errorf("create page: %w", err)
	}

	remaining := blocks[len(first):]
	for len(remaining) > 0 {
		batch := remaining
		if len(batch) > blockBatchSize {
			batch = remaining[:blockBatchSize]
		}
		remaining = remaining[len(batch):]
		if err := p.patch(ctx, "/blocks/"+page.ID+"/children", map[string]any{"children": batch}); err != nil {
			return "", "", fmt.Errorf("append blocks: %w", err)
		}
	}
	return page.ID, page.URL, nil
}

func (p *Publisher) post(ctx context.Context, path string, payload any, out any) error {
	return p.request(ctx, http.MethodPost, path, payload, out)
}

func (p *Publisher) patch(ctx context.Context, path string, payload any) error {
	return p.request(ctx, http.MethodPatch, path, payload, nil)
}

func (p *Publisher) request(ctx context.Context, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notion API %s %s: status %d: %s", method, path, resp.StatusCode, truncateBody(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func truncateBody(body []byte) string {
	const limit = 300
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
