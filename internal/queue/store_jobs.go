package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const jobColumns = "id, url, language, no_notion, status, created_at, started_at, finished_at, owner, error_message, notion_page_url, local_file_path"

// errorMessageLimit bounds stored error text; executor failures can carry
// multi-kilobyte wrapped messages.
const errorMessageLimit = 500

// Enqueue inserts a new queued job and returns it. It never blocks on other
// jobs and never touches existing rows.
func (s *Store) Enqueue(ctx context.Context, url, language string, noNotion bool) (*Job, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (url, language, no_notion, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		url,
		language,
		boolToInt(noNotion),
		StatusQueued,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier, or nil when it does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// List returns jobs newest-id first, filtered by status set when provided.
// A limit <= 0 returns all rows.
func (s *Store) List(ctx context.Context, limit int, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ClaimNext atomically transitions the oldest queued job to running, stamping
// started_at and owner, and returns it. Returns nil when the queue is empty.
// Two callers racing for the same row resolve to exactly one winner; the
// loser simply observes no row.
func (s *Store) ClaimNext(ctx context.Context, owner string) (*Job, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	ctx = ensureContext(ctx)
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	var (
		job     *Job
		scanErr error
	)
	err := retryOnBusy(ctx, func() error {
		row := s.db.QueryRowContext(
			ctx,
			`UPDATE jobs
             SET status = ?, started_at = ?, owner = ?
             WHERE id = (
                 SELECT id FROM jobs WHERE status = ? ORDER BY id ASC LIMIT 1
             )
             RETURNING `+jobColumns,
			StatusRunning,
			timestamp,
			owner,
			StatusQueued,
		)
		job, scanErr = scanJob(row)
		if errors.Is(scanErr, sql.ErrNoRows) {
			job = nil
			return nil
		}
		return scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("claim next job: %w", err)
	}
	return job, nil
}

// MarkDone completes a running job owned by the caller, recording the result
// references and releasing ownership. Any other precondition fails with
// ErrInvalidTransition and leaves the row untouched.
func (s *Store) MarkDone(ctx context.Context, id int64, owner, notionPageURL, localFilePath string) error {
	return s.finishJob(ctx, id, owner, StatusDone, "", notionPageURL, localFilePath)
}

// MarkFailed fails a running job owned by the caller, recording the error
// and releasing ownership. Any other precondition fails with
// ErrInvalidTransition and leaves the row untouched.
func (s *Store) MarkFailed(ctx context.Context, id int64, owner, errorMessage string) error {
	return s.finishJob(ctx, id, owner, StatusFailed, truncateError(errorMessage), "", "")
}

func (s *Store) finishJob(ctx context.Context, id int64, owner string, status Status, errorMessage, notionPageURL, localFilePath string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs
         SET status = ?, finished_at = ?, error_message = ?, notion_page_url = ?, local_file_path = ?, owner = NULL
         WHERE id = ? AND status = ? AND owner = ?`,
		status,
		timestamp,
		nullableString(errorMessage),
		nullableString(notionPageURL),
		nullableString(localFilePath),
		id,
		StatusRunning,
		owner,
	)
	if err != nil {
		return fmt.Errorf("finish job %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job %d to %s: %w", id, status, ErrInvalidTransition)
	}
	return nil
}

// RequeueOrphans forces every running job back to queued, clearing owner and
// started_at. This is the only sanctioned exit from running other than the
// terminal states; the daemon controller calls it at startup when any prior
// worker population is known to be gone. Returns the number of requeued jobs.
func (s *Store) RequeueOrphans(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE jobs SET status = ?, owner = NULL, started_at = NULL WHERE status = ?`,
		StatusQueued,
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("requeue orphans: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id          int64
		url         string
		language    sql.NullString
		noNotion    sql.NullInt64
		statusStr   string
		createdRaw  sql.NullString
		startedRaw  sql.NullString
		finishedRaw sql.NullString
		owner       sql.NullString
		errMessage  sql.NullString
		notionURL   sql.NullString
		localFile   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&url,
		&language,
		&noNotion,
		&statusStr,
		&createdRaw,
		&startedRaw,
		&finishedRaw,
		&owner,
		&errMessage,
		&notionURL,
		&localFile,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:            id,
		URL:           url,
		Language:      language.String,
		NoNotion:      noNotion.Valid && noNotion.Int64 != 0,
		Status:        Status(statusStr),
		Owner:         owner.String,
		ErrorMessage:  errMessage.String,
		NotionPageURL: notionURL.String,
		LocalFilePath: localFile.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if startedRaw.Valid {
		if started, err := parseTimeString(startedRaw.String); err == nil {
			job.StartedAt = &started
		}
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			job.FinishedAt = &finished
		}
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// truncateError caps stored error text, cutting on a rune boundary so a
// multi-byte message never becomes invalid UTF-8.
func truncateError(message string) string {
	if len(message) <= errorMessageLimit {
		return message
	}
	runes := []rune(message)
	if len(runes) <= errorMessageLimit {
		return message
	}
	return string(runes[:errorMessageLimit])
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
