package transcript

import (
	"fmt"
	"strings"
)

// ContentInfo is everything downstream stages need about a video.
type ContentInfo struct {
	VideoID         string
	URL             string
	Title           string
	Channel         string
	Transcript      string
	DurationSeconds int
	Language        string
}

// WordCount approximates the transcript length in words.
func (c *ContentInfo) WordCount() int {
	return len(strings.Fields(c.Transcript))
}

// DurationFormatted renders the duration as "1h 1m 1s" or "4m 5s".
func (c *ContentInfo) DurationFormatted() string {
	hours := c.DurationSeconds / 3600
	minutes := (c.DurationSeconds % 3600) / 60
	seconds := c.DurationSeconds % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
