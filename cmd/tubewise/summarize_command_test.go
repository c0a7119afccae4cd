package main

import (
	"context"
	"strings"
	"testing"

	"tubewise/internal/queue"
)

func TestSummarizeAsyncEnqueuesJob(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"summarize", "--async", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}, env.configPath)
	if err != nil {
		t.Fatalf("summarize --async: %v", err)
	}
	requireContains(t, out, "Job 1 queued")

	store, err := queue.Open(env.cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	job, err := store.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job == nil {
		t.Fatal("expected job 1 to exist")
	}
	if job.Status != queue.StatusQueued {
		t.Fatalf("status = %s, want queued", job.Status)
	}
	if job.Language != "en" {
		t.Fatalf("language = %q, want config default en", job.Language)
	}
}

func TestSummarizeAsyncHonorsFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"summarize", "--async", "--language", "de", "--no-notion", "https://youtu.be/dQw4w9WgXcQ"}, env.configPath)
	if err != nil {
		t.Fatalf("summarize --async: %v", err)
	}

	store, err := queue.Open(env.cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	job, err := store.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Language != "de" {
		t.Fatalf("language = %q, want de", job.Language)
	}
	if !job.NoNotion {
		t.Fatal("expected no-notion flag to be recorded")
	}
}

func TestSummarizeRejectsPlaylistURL(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"summarize", "--async", "https://www.youtube.com/playlist?list=PL123"}, env.configPath)
	if err == nil {
		t.Fatal("expected playlist URL to be rejected")
	}
	if !strings.Contains(err.Error(), "playlist") {
		t.Fatalf("error = %v, want playlist rejection", err)
	}
}

func TestSummarizeRejectsUnparseableURL(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"summarize", "--async", "https://example.com/not-a-video"}, env.configPath)
	if err == nil {
		t.Fatal("expected invalid URL to be rejected")
	}
}
