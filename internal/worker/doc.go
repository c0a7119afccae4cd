// Package worker runs the claim-execute-finish loop of a single worker
// process. A worker polls the queue store for queued jobs, hands each
// claimed job to an Executor, and records the terminal outcome.
package worker
