// Package render writes summaries as local markdown artifacts. The
// local file is written for every job, including ones that also
// publish to Notion, so there is always an offline copy.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tubewise/internal/config"
	"tubewise/internal/fileutil"
	"tubewise/internal/transcript"
)

// filenameMaxLength caps the sanitized title portion of the filename.
const filenameMaxLength = 80

// Writer saves summary artifacts under the configured output directory.
type Writer struct {
	outputDir string
}

func NewWriter(cfg *config.Config) *Writer {
	return &Writer{outputDir: cfg.Paths.OutputDir}
}

// WriteSummary saves the raw summary as a markdown file named after
// the video title and returns the file path.
func (w *Writer) WriteSummary(content *transcript.ContentInfo, rawSummary string) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	title := NormalizeTitle(content.Title)
	path := filepath.Join(w.outputDir, "summary_"+SanitizeFilename(title)+".md")

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString(rawSummary)
	if !strings.HasSuffix(rawSummary, "\n") {
		b.WriteString("\n")
	}

	if err := fileutil.WriteFileAtomic(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write summary file: %w", err)
	}
	return path, nil
}

// SanitizeFilename keeps letters, digits, spaces, dashes, and
// underscores, and truncates to a filesystem-friendly length.
func SanitizeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	if runes := []rune(safe); len(runes) > filenameMaxLength {
		safe = strings.TrimSpace(string(runes[:filenameMaxLength]))
	}
	if safe == "" {
		safe = "untitled"
	}
	return safe
}

// NormalizeTitle collapses whitespace and fixes all-lowercase or
// all-uppercase titles into title case.
func NormalizeTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return "Untitled Video"
	}
	if title == strings.ToLower(title) || title == strings.ToUpper(title) {
		return cases.Title(language.English).String(strings.ToLower(title))
	}
	return title
}
