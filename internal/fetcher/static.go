package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; job-cli/1.0; +https://github.com/xrsl/job)"
)

// Static fetches pages with a plain HTTP GET and extracts the visible text.
// Fast, but misses content rendered by JavaScript.
type Static struct {
	client *http.Client
	logger *zap.Logger
}

// NewStatic builds a static fetcher. A non-positive timeout falls back to
// the default.
func NewStatic(timeout time.Duration, logger *zap.Logger) *Static {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Static{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch returns the page's visible text.
func (f *Static) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &Error{URL: rawURL, Cause: fmt.Errorf("invalid url")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &Error{URL: rawURL, Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{URL: rawURL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: rawURL, Cause: fmt.Errorf("bad status: %s", resp.Status)}
	}

	text, err := ExtractText(resp.Body)
	if err != nil {
		return "", &Error{URL: rawURL, Cause: err}
	}

	f.logger.Debug("static fetch done",
		zap.String("url", rawURL),
		zap.Int("chars", len(text)),
	)

	return text, nil
}

// ExtractText strips markup, scripts and styles from an HTML document and
// returns its text with collapsed whitespace.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
