package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tubewise/internal/config"
	lang "tubewise/internal/language"
	"tubewise/internal/logging"
)

const (
	defaultTimedTextBase = "https://video.google.com/timedtext"
	defaultOEmbedBase    = "https://www.youtube.com/oembed"

	fallbackTitle   = "YouTube Video"
	fallbackChannel = "Unknown Channel"
)

// Client fetches captions and metadata for YouTube videos.
type Client struct {
	httpClient    *http.Client
	logger        *slog.Logger
	timedTextBase string
	oembedBase    string
}

func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Transcript.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logging.NewComponentLogger(logger, "transcript"),
		timedTextBase: defaultTimedTextBase,
		oembedBase:    defaultOEmbedBase,
	}
}

// Fetch resolves a URL or bare id into a ContentInfo with transcript
// and metadata. Metadata failures degrade to placeholder values; a
// missing transcript is a hard error.
func (c *Client) Fetch(ctx context.Context, rawURL, language string) (*ContentInfo, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(language) == "" {
		language = "en"
	}

	text, duration, langUsed, err := c.fetchTranscript(ctx, videoID, language)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript for %s: %w", videoID, err)
	}
	c.logger.Info("transcript fetched",
		logging.String("video_id", videoID),
		logging.String("language", langUsed),
		logging.Int("words", len(strings.Fields(text))),
	)

	title, channel := c.fetchMetadata(ctx, videoID)

	return &ContentInfo{
		VideoID:         videoID,
		URL:             CanonicalURL(videoID),
		Title:           title,
		Channel:         channel,
		Transcript:      text,
		DurationSeconds: duration,
		Language:        langUsed,
	}, nil
}

type captionTrack struct {
	LangCode string `xml:"lang_code,attr"`
	Name     string `xml:"name,attr"`
	Kind     string `xml:"kind,attr"`
}

type trackList struct {
	Tracks []captionTrack `xml:"track"`
}

type captionText struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Body  string  `xml:",chardata"`
}

type captionDoc struct {
	Texts []captionText `xml:"text"`
}

// fetchTranscript tries the requested language first, preferring
// manually created captions over auto-generated ones, then falls back
// to translating whatever track exists.
func (c *Client) fetchTranscript(ctx context.Context, videoID, language string) (string, int, string, error) {
	tracks, err := c.listTracks(ctx, videoID)
	if err != nil {
		return "", 0, "", err
	}
	if len(tracks) == 0 {
		return "", 0, "", fmt.Errorf("no captions available (the video may not have subtitles enabled)")
	}

	if track := pickTrack(tracks, language); track != nil {
		text, duration, err := c.fetchTrack(ctx, videoID, *track, "")
		if err == nil {
			return text, duration, language, nil
		}
		c.logger.Warn("caption track fetch failed, trying fallback", logging.Error(err))
	}

	// No track in the requested language. Translate the first one and
	// keep its original language if translation is unavailable.
	first := tracks[0]
	if !lang.Matches(first.LangCode, language) {
		if text, duration, err := c.fetchTrack(ctx, videoID, first, language); err == nil {
			return text, duration, language, nil
		}
	}
	text, duration, err := c.fetchTrack(ctx, videoID, first, "")
	if err != nil {
		return "", 0, "", err
	}
	return text, duration, first.LangCode, nil
}

// pickTrack matches on the base language so a requested "en" accepts an
// "en-GB" track.
func pickTrack(tracks []captionTrack, language string) *captionTrack {
	var auto *captionTrack
	for i := range tracks {
		if !lang.Matches(tracks[i].LangCode, language) {
			continue
		}
		if tracks[i].Kind != "asr" {
			return &tracks[i]
		}
		if auto == nil {
			auto = &tracks[i]
		}
	}
	return auto
}

func (c *Client) listTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	params := url.Values{"type": {"list"}, "v": {videoID}}
	body, err := c.get(ctx, c.timedTextBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	var list trackList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parse caption track list: %w", err)
	}
	return list.Tracks, nil
}

func (c *Client) fetchTrack(ctx context.Context, videoID string, track captionTrack, translateTo string) (string, int, error) {
	params := url.Values{"v": {videoID}, "lang": {track.LangCode}}
	if track.Name != "" {
		params.Set("name", track.Name)
	}
	if track.Kind != "" {
		params.Set("kind", track.Kind)
	}
	if translateTo != "" {
		params.Set("tlang", translateTo)
	}
	body, err := c.get(ctx, c.timedTextBase+"?"+params.Encode())
	if err != nil {
		return "", 0, err
	}
	if len(body) == 0 {
		return "", 0, fmt.Errorf("empty caption response for track %s", track.LangCode)
	}

	var doc captionDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", 0, fmt.Errorf("parse captions: %w", err)
	}
	if len(doc.Texts) == 0 {
		return "", 0, fmt.Errorf("caption track %s contains no text", track.LangCode)
	}

	parts := make([]string, 0, len(doc.Texts))
	var lastStart, lastDur float64
	for _, entry := range doc.Texts {
		snippet := strings.TrimSpace(html.UnescapeString(entry.Body))
		if snippet != "" {
			parts = append(parts, snippet)
		}
		lastStart = entry.Start
		lastDur = entry.Dur
	}
	return strings.Join(parts, " "), int(lastStart + lastDur), nil
}

type oembedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// fetchMetadata resolves title and channel via the oEmbed endpoint.
// Failures fall back to placeholders so summarization still proceeds.
func (c *Client) fetchMetadata(ctx context.Context, videoID string) (string, string) {
	params := url.Values{"url": {CanonicalURL(videoID)}, "format": {"json"}}
	body, err := c.get(ctx, c.oembedBase+"?"+params.Encode())
	if err != nil {
		c.logger.Warn("metadata fetch failed", logging.Error(err))
		return fallbackTitle, fallbackChannel
	}
	var resp oembedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Warn("metadata parse failed", logging.Error(err))
		return fallbackTitle, fallbackChannel
	}
	title := strings.TrimSpace(resp.Title)
	if title == "" {
		title = fallbackTitle
	}
	channel := strings.TrimSpace(resp.AuthorName)
	if channel == "" {
		channel = fallbackChannel
	}
	return title, channel
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, requestURL)
	}
	return io.ReadAll(resp.Body)
}
