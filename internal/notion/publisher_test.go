package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tubewise/internal/logging"
	"tubewise/internal/testsupport"
	"tubewise/internal/transcript"
)

type recordedRequest struct {
	method string
	path   string
	body   map[string]any
}

func newTestPublisher(t *testing.T, requests *[]recordedRequest) *Publisher {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		*requests = append(*requests, recordedRequest{method: r.Method, path: r.URL.Path, body: body})
		json.NewEncoder(w).Encode(map[string]any{
			"id":  "page-id-1",
			"url": "https://notion.so/page-id-1",
		})
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Notion.Token = "secret-token"
	cfg.Notion.ParentPageID = "parent-page"

	p := NewPublisher(cfg, logging.NewNop())
	p.baseURL = server.URL
	return p
}

func shortContent(words int) *transcript.ContentInfo {
	return &transcript.ContentInfo{
		VideoID:         "dQw4w9WgXcQ",
		URL:             "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Title:           "Understanding Queues",
		Channel:         "Systems Channel",
		Transcript:      strings.TrimSpace(strings.Repeat("word ", words)),
		DurationSeconds: 245,
	}
}

func TestPublishShortVideoCreatesSinglePage(t *testing.T) {
	var requests []recordedRequest
	p := newTestPublisher(t, &requests)

	pageURL, err := p.Publish(context.Background(), sampleSummary, shortContent(100))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if pageURL != "https://notion.so/page-id-1" {
		t.Fatalf("unexpected page URL %q", pageURL)
	}
	if len(requests) != 1 {
		t.Fatalf("expected a single page create, got %d requests", len(requests))
	}
	req := requests[0]
	if req.method != http.MethodPost || req.path != "/pages" {
		t.Fatalf("unexpected request %s %s", req.method, req.path)
	}

	props := req.body["properties"].(map[string]any)
	title := props["title"].(map[string]any)["title"].([]any)[0].(map[string]any)
	got := title["text"].(map[string]any)["content"].(string)
	if got != "📹 Understanding Queues" {
		t.Fatalf("unexpected page title %q", got)
	}

	children := req.body["children"].([]any)
	if len(children) == 0 || len(children) > blockBatchSize {
		t.Fatalf("unexpected children count %d", len(children))
	}
}

func TestPublishLongVideoCreatesSubPages(t *testing.T) {
	var requests []recordedRequest
	p := newTestPublisher(t, &requests)

	if _, err := p.Publish(context.Background(), sampleSummary, shortContent(3000)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// parent page plus three sub-pages
	if len(requests) != 4 {
		t.Fatalf("expected 4 page creates, got %d", len(requests))
	}
	parent := requests[1].body["parent"].(map[string]any)
	if parent["page_id"] != "page-id-1" {
		t.Fatalf("sub-page not nested under parent: %v", parent)
	}
}

func TestPublishRequiresConfiguration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := NewPublisher(cfg, logging.NewNop())

	if _, err := p.Publish(context.Background(), sampleSummary, shortContent(10)); err == nil {
		t.Fatal("expected error without token")
	}

	cfg.Notion.Token = "token"
	p = NewPublisher(cfg, logging.NewNop())
	if _, err := p.Publish(context.Background(), sampleSummary, shortContent(10)); err == nil {
		t.Fatal("expected error without parent page id")
	}
}

func TestCreatePageBatchesBlocks(t *testing.T) {
	var requests []recordedRequest
	p := newTestPublisher(t, &requests)

	blocks := make([]Block, 230)
	for i := range blocks {
		blocks[i] = paragraphBlock("p")
	}
	if _, _, err := p.createPage(context.Background(), "parent-page", "T", blocks); err != nil {
		t.Fatalf("createPage failed: %v", err)
	}

	// one create plus two appends of at most 100 blocks each
	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(requests))
	}
	if requests[1].method != http.MethodPatch || !strings.Contains(requests[1].path, "/blocks/page-id-1/children") {
		t.Fatalf("unexpected append request %s %s", requests[1].method, requests[1].path)
	}
	second := requests[1].body["children"].([]any)
	third := requests[2].body["children"].([]any)
	if len(second) != 100 || len(third) != 30 {
		t.Fatalf("batch sizes wrong: %d, %d", len(second), len(third))
	}
}
