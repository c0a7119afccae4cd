package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

var allStatuses = []Status{StatusQueued, StatusRunning, StatusDone, StatusFailed}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Job represents one unit of submitted work persisted in SQLite.
type Job struct {
	ID            int64
	URL           string
	Language      string
	NoNotion      bool
	Status        Status
	CreatedAt     time.Time
	StartedAt     *time.Time
	FinishedAt    *time.Time
	Owner         string
	ErrorMessage  string
	NotionPageURL string
	LocalFilePath string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Elapsed returns the job's processing duration: time since start for a
// running job, start-to-finish for a terminal one, zero for a queued one.
func (j Job) Elapsed(now time.Time) time.Duration {
	if j.StartedAt == nil {
		return 0
	}
	switch {
	case j.FinishedAt != nil:
		return j.FinishedAt.Sub(*j.StartedAt)
	case j.Status == StatusRunning:
		return now.Sub(*j.StartedAt)
	default:
		return 0
	}
}
