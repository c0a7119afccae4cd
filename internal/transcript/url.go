package transcript

import (
	"fmt"
	"regexp"
)

var (
	videoIDPatterns = []*regexp.Regexp{
		// watch, short link, embed, and legacy /v/ URLs, with or
		// without extra query parameters
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/)([a-zA-Z0-9_-]{11})`),
		// bare 11-character video id
		regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
	}
	playlistPattern = regexp.MustCompile(`[?&]list=|/playlist\?list=`)
)

// ExtractVideoID pulls the 11-character video id out of any common
// YouTube URL form, or accepts a bare id.
func ExtractVideoID(raw string) (string, error) {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("could not extract video id from %q (supported: youtube.com/watch?v=..., youtu.be/...)", raw)
}

// IsPlaylistURL reports whether the URL references a playlist.
func IsPlaylistURL(raw string) bool {
	return playlistPattern.MatchString(raw)
}

// CanonicalURL returns the standard watch URL for a video id.
func CanonicalURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
