package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Careers</title>
  <style>body { color: red; }</style>
  <script>console.log("tracking");</script>
</head>
<body>
  <h1>Open positions</h1>
  <p>We are hiring a <b>Go engineer</b> in Berlin.</p>
  <noscript>Enable JavaScript</noscript>
</body>
</html>`

func TestStaticFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "job-cli") {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	text, err := NewStatic(0, nil).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if !strings.Contains(text, "Go engineer in Berlin") {
		t.Errorf("text = %q, want the body content with collapsed whitespace", text)
	}
	for _, gone := range []string{"console.log", "color: red", "Enable JavaScript", "<"} {
		if strings.Contains(text, gone) {
			t.Errorf("text still contains %q", gone)
		}
	}
}

func TestStaticFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewStatic(0, nil).Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch succeeded on a 404")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %T, want *Error", err)
	}
	if fetchErr.URL != srv.URL {
		t.Errorf("Error.URL = %q, want %q", fetchErr.URL, srv.URL)
	}
}

func TestStaticFetchInvalidURL(t *testing.T) {
	for _, bad := range []string{"", "not-a-url", "spotify.com/jobs"} {
		if _, err := NewStatic(0, nil).Fetch(context.Background(), bad); err == nil {
			t.Errorf("Fetch(%q) succeeded, want error", bad)
		}
	}
}

func TestStaticFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewStatic(0, nil).Fetch(ctx, srv.URL); err == nil {
		t.Fatal("Fetch succeeded with a cancelled context")
	}
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText(strings.NewReader("<p>one</p>\n<p>two\t three</p>"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "one two three" {
		t.Errorf("text = %q, want %q", text, "one two three")
	}
}
