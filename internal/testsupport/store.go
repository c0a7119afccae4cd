package testsupport

import (
	"context"
	"testing"

	"tubewise/internal/config"
	"tubewise/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Enqueue inserts a job for tests using the provided store.
func Enqueue(t testing.TB, store *queue.Store, url string) *queue.Job {
	t.Helper()

	job, err := store.Enqueue(context.Background(), url, "en", false)
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return job
}

// Claim claims the next queued job for tests, failing when none is available.
func Claim(t testing.TB, store *queue.Store, owner string) *queue.Job {
	t.Helper()

	job, err := store.ClaimNext(context.Background(), owner)
	if err != nil {
		t.Fatalf("store.ClaimNext: %v", err)
	}
	if job == nil {
		t.Fatal("expected a claimable job")
	}
	return job
}
