package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"tubewise/internal/config"
	"tubewise/internal/logging"
	"tubewise/internal/queue"
)

// maxStoreFailures bounds consecutive queue store errors before the
// worker gives up. Transient SQLITE_BUSY contention is already retried
// inside the store, so repeated failures here mean the database is gone.
const maxStoreFailures = 5

const storeFailureBackoff = 2 * time.Second

// NewOwnerID builds the claim owner identity for this process. The pid
// makes the owner traceable from status output; the random fragment
// keeps identities unique across pid reuse.
func NewOwnerID() string {
	fragment := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d-%s", os.Getpid(), fragment)
}

// Worker is a single-job-at-a-time queue consumer.
type Worker struct {
	store        *queue.Store
	executor     Executor
	logger       *slog.Logger
	owner        string
	pollInterval time.Duration
}

func New(cfg *config.Config, store *queue.Store, executor Executor, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Worker{
		store:        store,
		executor:     executor,
		logger:       logging.NewComponentLogger(logger, "worker"),
		owner:        NewOwnerID(),
		pollInterval: time.Duration(cfg.Queue.PollInterval) * time.Second,
	}
}

// Owner returns the claim identity stamped onto jobs this worker runs.
func (w *Worker) Owner() string {
	return w.owner
}

// Run polls and processes jobs until ctx is cancelled or the store
// fails repeatedly. A nil return means a clean shutdown.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started",
		logging.String(logging.FieldWorkerID, w.owner),
		logging.Int(logging.FieldPID, os.Getpid()),
	)

	storeFailures := 0
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping", logging.String(logging.FieldWorkerID, w.owner))
			return nil
		default:
		}

		job, err := w.store.ClaimNext(ctx, w.owner)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			storeFailures++
			w.logger.Error("claim failed",
				logging.Error(err),
				logging.Int("consecutive_failures", storeFailures),
			)
			if storeFailures >= maxStoreFailures {
				return fmt.Errorf("queue store unavailable after %d attempts: %w", storeFailures, err)
			}
			w.sleep(ctx, storeFailureBackoff)
			continue
		}
		storeFailures = 0

		if job == nil {
			w.sleep(ctx, w.pollInterval)
			continue
		}

		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *queue.Job) {
	logger := w.logger.With(
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldURL, job.URL),
	)
	logger.Info("job claimed")

	// Shutdown only stops new claims; a claimed job runs to completion.
	// The daemon's force-kill bounds a job that will not finish.
	execCtx := context.WithoutCancel(ctx)

	start := time.Now()
	result, err := w.executor.Execute(execCtx, job)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			// The executor aborted on shutdown anyway. Leave the record
			// running so the next start's orphan sweep requeues it.
			logger.Warn("job interrupted by shutdown, leaving for orphan sweep",
				logging.Duration("elapsed", time.Since(start)),
			)
			return
		}
		logger.Warn("job failed",
			logging.Error(err),
			logging.Duration("elapsed", time.Since(start)),
		)
		w.finish(ctx, logger, func(finishCtx context.Context) error {
			return w.store.MarkFailed(finishCtx, job.ID, w.owner, err.Error())
		})
		return
	}

	logger.Info("job completed",
		logging.Duration("elapsed", time.Since(start)),
		logging.String("local_file", result.LocalFilePath),
	)
	w.finish(ctx, logger, func(finishCtx context.Context) error {
		return w.store.MarkDone(finishCtx, job.ID, w.owner, result.NotionPageURL, result.LocalFilePath)
	})
}

// finish records a terminal state. Cancellation mid-shutdown must not
// lose the outcome, so the write falls back to a short detached context.
func (w *Worker) finish(ctx context.Context, logger *slog.Logger, mark func(context.Context) error) {
	err := mark(ctx)
	if err != nil && ctx.Err() != nil && !errors.Is(err, queue.ErrInvalidTransition) {
		detached, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = mark(detached)
	}
	if err != nil {
		if errors.Is(err, queue.ErrInvalidTransition) {
			// The job was swept back to queued while we held it. Another
			// worker owns the retry; log and move on.
			logger.Warn("job no longer owned by this worker", logging.Error(err))
			return
		}
		logger.Error("failed to record job outcome", logging.Error(err))
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
