package ingest

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeFetcher renders a page with a headless browser before extraction,
// for sites that build their content with JavaScript.
type ChromeFetcher struct {
	Timeout time.Duration
}

// NewChromeFetcher builds a headless fetcher with the given per-page timeout.
func NewChromeFetcher(timeout time.Duration) *ChromeFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ChromeFetcher{Timeout: timeout}
}

// FetchHTML navigates to the page and returns the rendered document HTML.
func (c *ChromeFetcher) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(browserHeaders["User-Agent"]),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}
