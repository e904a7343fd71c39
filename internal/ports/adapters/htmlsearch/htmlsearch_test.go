package htmlsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

const resultsPage = `
<html><body>
<ytd-video-renderer>
  <img src="/thumb/a.jpg">
  <a id="video-title" title="First video" href="/watch?v=a">First video</a>
  <span class="style-scope ytd-video-meta-block">1.2M views</span>
</ytd-video-renderer>
<ytd-video-renderer>
  <a id="video-title" href="">no link</a>
</ytd-video-renderer>
<ytd-video-renderer>
  <img data-src="https://i.ytimg.com/b.jpg">
  <a id="video-title" href="https://www.youtube.com/watch?v=b"> Second </a>
  <span class="ytd-video-meta-block">No views</span>
</ytd-video-renderer>
<ytd-video-renderer>
  <a id="video-title" href="/watch?v=c">Third</a>
</ytd-video-renderer>
</body></html>`

func TestSearch_ParsesCards(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	p := New(zerolog.Nop(), srv.Client(), srv.URL+"/results?q={query}&n={max}", Selectors{})
	got, err := p.Search(context.Background(), "go tips", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "go tips" {
		t.Fatalf("unexpected query sent: %q", gotQuery)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", got)
	}
	if got[0].Title != "First video" || got[0].ViewCount != 1_200_000 {
		t.Fatalf("unexpected first candidate: %+v", got[0])
	}
	if !strings.HasPrefix(got[0].URL, srv.URL+"/watch?v=a") || got[0].ThumbnailRef != srv.URL+"/thumb/a.jpg" {
		t.Fatalf("expected resolved urls, got %+v", got[0])
	}
	if got[1].Title != "Second" || got[1].ViewCount != 0 || got[1].ThumbnailRef != "https://i.ytimg.com/b.jpg" {
		t.Fatalf("unexpected second candidate: %+v", got[1])
	}
}

func TestSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing</body></html>"))
	}))
	defer srv.Close()

	p := New(zerolog.Nop(), srv.Client(), srv.URL+"/?q={query}", Selectors{})
	got, err := p.Search(context.Background(), "x", 5)
	if err != nil {
		t.Fatalf("empty page must not be an error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %+v", got)
	}
}

func TestSearch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := New(zerolog.Nop(), srv.Client(), srv.URL+"/?q={query}", Selectors{})
	if _, err := p.Search(context.Background(), "x", 5); err == nil {
		t.Fatalf("expected error on 429")
	}
}

func TestParseCount(t *testing.T) {
	tests := map[string]int64{
		"":                        0,
		"No views":                0,
		"1,234 views":             1234,
		"987":                     987,
		"1.2M views":              1_200_000,
		"3K likes":                3000,
		"2.5B":                    2_500_000_000,
		"1,2 mi de visualizações": 1_200_000,
		"15 mil visualizações":    15_000,
		"1.234.567 visualizações": 1_234_567,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := ParseCount(in); got != want {
				t.Fatalf("ParseCount(%q) = %d, want %d", in, got, want)
			}
		})
	}
}
