package fetcher

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	browserTimeout = 30 * time.Second
	// Extra settle time for content loaded after the initial render.
	renderWait = 3 * time.Second
	// Renders shorter than this are treated as a likely JS failure and
	// retried with the static fetcher.
	minContentLength = 200
)

// Browser renders pages in headless Chrome before extracting text, picking
// up content that JavaScript-heavy career pages only load client-side.
// When the render fails or comes back suspiciously empty it falls back to
// the static fetcher.
type Browser struct {
	timeout  time.Duration
	fallback *Static
	logger   *zap.Logger
}

// NewBrowser builds a browser fetcher with a static fallback.
func NewBrowser(fallback *Static, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Browser{
		timeout:  browserTimeout,
		fallback: fallback,
		logger:   logger,
	}
}

// Fetch renders the page and returns its visible text.
func (f *Browser) Fetch(ctx context.Context, rawURL string) (string, error) {
	text, err := f.render(ctx, rawURL)
	if err == nil && len(text) >= minContentLength {
		return text, nil
	}

	if f.fallback == nil {
		if err != nil {
			return "", &Error{URL: rawURL, Cause: err}
		}
		return text, nil
	}

	f.logger.Debug("browser render insufficient, falling back to static fetch",
		zap.String("url", rawURL),
		zap.Int("chars", len(text)),
		zap.Error(err),
	)

	return f.fallback.Fetch(ctx, rawURL)
}

func (f *Browser) render(ctx context.Context, rawURL string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, f.timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(renderWait),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}

	text, err := ExtractText(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	f.logger.Debug("browser fetch done",
		zap.String("url", rawURL),
		zap.Int("chars", len(text)),
	)

	return text, nil
}
