package transcript

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"standard watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch URL with playlist", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc", "dQw4w9WgXcQ", false},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"legacy v format", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"bare video id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"not a video URL", "https://example.com/page", "", true},
		{"too short id", "abc123", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPlaylistURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://www.youtube.com/playlist?list=PLabc", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc", true},
		{"https://youtube.com/playlist?list=PLabc", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", false},
	}
	for _, tt := range tests {
		if got := IsPlaylistURL(tt.input); got != tt.want {
			t.Errorf("IsPlaylistURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDurationFormatted(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{3661, "1h 1m 1s"},
		{245, "4m 5s"},
		{0, "0m 0s"},
		{7322, "2h 2m 2s"},
	}
	for _, tt := range tests {
		c := &ContentInfo{DurationSeconds: tt.seconds}
		if got := c.DurationFormatted(); got != tt.want {
			t.Errorf("DurationFormatted(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestWordCount(t *testing.T) {
	c := &ContentInfo{Transcript: "one two  three\nfour"}
	if got := c.WordCount(); got != 4 {
		t.Fatalf("WordCount = %d, want 4", got)
	}
}
