package transcript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tubewise/internal/logging"
	"tubewise/internal/testsupport"
)

const captionListXML = `<?xml version="1.0" encoding="utf-8"?>
<transcript_list docid="1">
  <track id="0" name="" lang_code="en" lang_original="English" kind="asr"/>
  <track id="1" name="" lang_code="en" lang_original="English"/>
  <track id="2" name="" lang_code="de" lang_original="Deutsch"/>
</transcript_list>`

const captionBodyXML = `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="2.5">Hello &amp; welcome</text>
  <text start="2.5" dur="3.0">to the show</text>
  <text start="5.5" dur="4.5">that&#39;s all</text>
</transcript>`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(testsupport.NewConfig(t), logging.NewNop())
	client.timedTextBase = server.URL + "/timedtext"
	client.oembedBase = server.URL + "/oembed"
	return client
}

func TestFetchAssemblesContentInfo(t *testing.T) {
	var requestedLang string
	mux := http.NewServeMux()
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") == "list" {
			w.Write([]byte(captionListXML))
			return
		}
		requestedLang = r.URL.Query().Get("lang")
		w.Write([]byte(captionBodyXML))
	})
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"How Queues Work","author_name":"Systems Channel"}`))
	})

	client := newTestClient(t, mux)
	info, err := client.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if info.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected video id %q", info.VideoID)
	}
	if info.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("unexpected canonical URL %q", info.URL)
	}
	if info.Transcript != "Hello & welcome to the show that's all" {
		t.Fatalf("unexpected transcript %q", info.Transcript)
	}
	if info.DurationSeconds != 10 {
		t.Fatalf("expected duration 10s from last caption timing, got %d", info.DurationSeconds)
	}
	if info.Title != "How Queues Work" || info.Channel != "Systems Channel" {
		t.Fatalf("unexpected metadata: %q / %q", info.Title, info.Channel)
	}
	if info.Language != "en" || requestedLang != "en" {
		t.Fatalf("language routing broken: info=%q requested=%q", info.Language, requestedLang)
	}
}

func TestFetchPrefersManualCaptionsOverAuto(t *testing.T) {
	tracks := pickTrack([]captionTrack{
		{LangCode: "en", Kind: "asr"},
		{LangCode: "en"},
		{LangCode: "de"},
	}, "en")
	if tracks == nil || tracks.Kind != "" {
		t.Fatalf("expected manual track preferred, got %#v", tracks)
	}

	auto := pickTrack([]captionTrack{
		{LangCode: "en", Kind: "asr"},
		{LangCode: "de"},
	}, "en")
	if auto == nil || auto.Kind != "asr" {
		t.Fatalf("expected auto track fallback, got %#v", auto)
	}

	if pickTrack([]captionTrack{{LangCode: "de"}}, "en") != nil {
		t.Fatal("expected nil for missing language")
	}
}

func TestFetchTranslatesWhenLanguageMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("type") == "list" {
			w.Write([]byte(`<transcript_list><track id="0" lang_code="de"/></transcript_list>`))
			return
		}
		if q.Get("tlang") != "en" {
			http.Error(w, "missing tlang", http.StatusBadRequest)
			return
		}
		w.Write([]byte(captionBodyXML))
	})
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"T","author_name":"C"}`))
	})

	client := newTestClient(t, mux)
	info, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if info.Language != "en" {
		t.Fatalf("expected translated language en, got %q", info.Language)
	}
}

func TestFetchFailsWithoutCaptions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<transcript_list></transcript_list>`))
	})

	client := newTestClient(t, mux)
	_, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", "en")
	if err == nil {
		t.Fatal("expected error for video without captions")
	}
	if !strings.Contains(err.Error(), "no captions") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchMetadataFallsBack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") == "list" {
			w.Write([]byte(`<transcript_list><track id="0" lang_code="en"/></transcript_list>`))
			return
		}
		w.Write([]byte(captionBodyXML))
	})
	mux.HandleFunc("/oembed", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	client := newTestClient(t, mux)
	info, err := client.Fetch(context.Background(), "dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if info.Title != fallbackTitle || info.Channel != fallbackChannel {
		t.Fatalf("expected metadata fallbacks, got %q / %q", info.Title, info.Channel)
	}
}
