package worker

import (
	"context"

	"tubewise/internal/queue"
)

// Result carries the artifact references produced by a successful run.
type Result struct {
	NotionPageURL string
	LocalFilePath string
}

// Executor processes a claimed job end to end. Implementations must be
// safe to call repeatedly and should honor ctx cancellation.
type Executor interface {
	Execute(ctx context.Context, job *queue.Job) (Result, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, job *queue.Job) (Result, error)

func (f ExecutorFunc) Execute(ctx context.Context, job *queue.Job) (Result, error) {
	return f(ctx, job)
}
