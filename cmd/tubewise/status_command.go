package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tubewise/internal/daemonctl"
	"tubewise/internal/language"
	"tubewise/internal/queue"
)

const statusJobLimit = 20

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon state, queue counts, and recent jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var statuses []queue.Status
			if strings.TrimSpace(statusFilter) != "" {
				parsed, ok := queue.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFilter)
				}
				statuses = append(statuses, parsed)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			daemonStatus, err := daemonctl.Inspect(cfg)
			if err != nil {
				return err
			}
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("read queue stats: %w", err)
			}
			jobs, err := store.List(cmd.Context(), limit, statuses...)
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderDaemonSection(daemonStatus, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)
			for _, line := range renderQueueSection(stats, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderJobTable(jobs, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", statusJobLimit, "Maximum number of jobs to list")
	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Only list jobs with this status (queued, running, done, failed)")

	return cmd
}

func renderDaemonSection(status daemonctl.Status, colorize bool) []string {
	lines := renderSectionHeader("Worker Daemon", colorize)
	if !status.Running {
		kind := statusWarn
		detail := "Not running (run `tubewise worker start`)"
		if status.ControllerPID > 0 {
			detail = fmt.Sprintf("Not running (stale registry, controller pid %d is dead)", status.ControllerPID)
		}
		lines = append(lines, renderStatusLine("Daemon", kind, detail, colorize))
		return lines
	}

	lines = append(lines, renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", status.ControllerPID), colorize))
	for i, w := range status.Workers {
		label := fmt.Sprintf("Worker %d", i+1)
		if w.Alive {
			lines = append(lines, renderStatusLine(label, statusOK, fmt.Sprintf("Alive (pid %d)", w.PID), colorize))
		} else {
			lines = append(lines, renderStatusLine(label, statusError, fmt.Sprintf("Dead (pid %d)", w.PID), colorize))
		}
	}
	return lines
}

func renderQueueSection(stats map[queue.Status]int, colorize bool) []string {
	lines := renderSectionHeader("Queue", colorize)
	for _, status := range []queue.Status{queue.StatusQueued, queue.StatusRunning, queue.StatusDone, queue.StatusFailed} {
		kind := statusInfo
		if status == queue.StatusFailed && stats[status] > 0 {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(capitalize(string(status)), kind, strconv.Itoa(stats[status]), colorize))
	}
	return lines
}

func renderJobTable(jobs []*queue.Job, now time.Time) string {
	headers := []string{"ID", "Status", "URL", "Language", "Elapsed", "Result"}
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			strconv.FormatInt(job.ID, 10),
			string(job.Status),
			truncate(job.URL, 48),
			language.DisplayName(job.Language),
			formatElapsed(job, now),
			jobResult(job),
		})
	}
	return renderTable(headers, rows, 0)
}

func jobResult(job *queue.Job) string {
	switch job.Status {
	case queue.StatusFailed:
		return truncate(job.ErrorMessage, 40)
	case queue.StatusDone:
		if job.NotionPageURL != "" {
			return truncate(job.NotionPageURL, 40)
		}
		return truncate(job.LocalFilePath, 40)
	default:
		return ""
	}
}

func formatElapsed(job *queue.Job, now time.Time) string {
	elapsed := job.Elapsed(now)
	if elapsed <= 0 {
		return "-"
	}
	return elapsed.Round(time.Second).String()
}

func capitalize(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

// truncate shortens display text to max runes, never splitting a
// multi-byte rune.
func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
