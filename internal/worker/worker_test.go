package worker_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"tubewise/internal/logging"
	"tubewise/internal/queue"
	"tubewise/internal/testsupport"
	"tubewise/internal/worker"
)

type fakeExecutor struct {
	mu       sync.Mutex
	executed []int64
	results  map[int64]worker.Result
	errs     map[int64]error
	done     chan int64
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		results: make(map[int64]worker.Result),
		errs:    make(map[int64]error),
		done:    make(chan int64, 16),
	}
}

func (f *fakeExecutor) Execute(ctx context.Context, job *queue.Job) (worker.Result, error) {
	f.mu.Lock()
	f.executed = append(f.executed, job.ID)
	result := f.results[job.ID]
	err := f.errs[job.ID]
	f.mu.Unlock()
	f.done <- job.ID
	return result, err
}

func (f *fakeExecutor) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.done:
		case <-time.After(10 * time.Second):
			t.Fatalf("timed out waiting for execution %d of %d", i+1, n)
		}
	}
}

func TestWorkerProcessesJobsToDone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first := testsupport.Enqueue(t, store, "https://youtube.com/watch?v=a")
	second := testsupport.Enqueue(t, store, "https://youtube.com/watch?v=b")

	exec := newFakeExecutor()
	exec.results[first.ID] = worker.Result{LocalFilePath: "/tmp/a.md", NotionPageURL: "https://notion.so/a"}
	exec.results[second.ID] = worker.Result{LocalFilePath: "/tmp/b.md"}

	w := worker.New(cfg, store, exec, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- w.Run(ctx) }()

	exec.wait(t, 2)
	cancel()
	if err := <-runDone; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for _, id := range []int64{first.ID, second.ID} {
		job, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if job.Status != queue.StatusDone {
			t.Fatalf("job %d: expected done, got %s", id, job.Status)
		}
		if job.Owner != "" {
			t.Fatalf("job %d: expected ownership released, got %q", id, job.Owner)
		}
	}

	done, err := store.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if done.NotionPageURL != "https://notion.so/a" || done.LocalFilePath != "/tmp/a.md" {
		t.Fatalf("result refs not recorded: %#v", done)
	}
}

func TestWorkerRecordsExecutorFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job := testsupport.Enqueue(t, store, "https://youtube.com/watch?v=broken")

	exec := newFakeExecutor()
	exec.errs[job.ID] = errors.New("transcript unavailable for this video")

	w := worker.New(cfg, store, exec, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- w.Run(ctx) }()

	exec.wait(t, 1)
	cancel()
	if err := <-runDone; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	failed, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if failed.Status != queue.StatusFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}
	if !strings.Contains(failed.ErrorMessage, "transcript unavailable") {
		t.Fatalf("expected executor error recorded, got %q", failed.ErrorMessage)
	}
}

func TestWorkersShareQueueWithoutOverlap(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	const jobs = 6
	for i := 0; i < jobs; i++ {
		testsupport.Enqueue(t, store, fmt.Sprintf("https://youtube.com/watch?v=%d", i))
	}

	exec := newFakeExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 2)
	for i := 0; i < 2; i++ {
		w := worker.New(cfg, store, exec, logging.NewNop())
		go func() { runDone <- w.Run(ctx) }()
	}

	exec.wait(t, jobs)
	cancel()
	for i := 0; i < 2; i++ {
		if err := <-runDone; err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	}

	exec.mu.Lock()
	defer exec.mu.Unlock()
	seen := make(map[int64]bool, len(exec.executed))
	for _, id := range exec.executed {
		if seen[id] {
			t.Fatalf("job %d executed more than once", id)
		}
		seen[id] = true
	}
	if len(seen) != jobs {
		t.Fatalf("expected %d distinct jobs executed, got %d", jobs, len(seen))
	}
}

func TestStopMidExecutionLeavesJobForSweep(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job := testsupport.Enqueue(t, store, "https://youtube.com/watch?v=slow")

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	blocking := worker.ExecutorFunc(func(execCtx context.Context, _ *queue.Job) (worker.Result, error) {
		close(started)
		<-ctx.Done()
		// The run context stopping must not reach the executing job.
		if execCtx.Err() != nil {
			t.Error("executor context cancelled by shutdown")
		}
		return worker.Result{}, context.Canceled
	})

	w := worker.New(cfg, store, blocking, logging.NewNop())
	runDone := make(chan error, 1)
	go func() { runDone <- w.Run(ctx) }()

	<-started
	cancel()
	select {
	case err := <-runDone:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}

	// The interrupted job stays running, owner intact, for the next sweep.
	held, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if held.Status != queue.StatusRunning {
		t.Fatalf("status after stop mid-execution = %s, want running", held.Status)
	}
	if held.Owner != w.Owner() {
		t.Fatalf("expected owner %q retained, got %q", w.Owner(), held.Owner)
	}

	swept, err := store.RequeueOrphans(context.Background())
	if err != nil {
		t.Fatalf("RequeueOrphans failed: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 orphan swept, got %d", swept)
	}
	reclaimed := testsupport.Claim(t, store, "worker-next")
	if reclaimed.ID != job.ID {
		t.Fatalf("expected job %d reclaimable after sweep, got %d", job.ID, reclaimed.ID)
	}
}

func TestNewOwnerIDIsUniqueAndCarriesPID(t *testing.T) {
	a := worker.NewOwnerID()
	b := worker.NewOwnerID()
	if a == b {
		t.Fatalf("expected distinct owner ids, got %q twice", a)
	}
	if !strings.Contains(a, "-") {
		t.Fatalf("expected pid-fragment form, got %q", a)
	}
}
