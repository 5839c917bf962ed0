// Package ingest fetches and cleans web evidence pages: bounded concurrent
// retrieval, allow-list enforcement, readability extraction and quality
// filtering. Individual page failures are dropped, never escalated.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/helpers"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/rag"
)

const (
	defaultMinTextLen  = 120
	defaultMaxChars    = 20000
	defaultMaxParallel = 4
	defaultTimeout     = 30 * time.Second
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml",
	"Accept-Language": "en-US,en;q=0.9",
}

// HTMLFetcher retrieves the raw HTML of a page. The default implementation is
// a plain HTTP GET; a headless-browser implementation can be layered in for
// JS-rendered pages.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, pageURL string) (string, error)
}

// Options tune a Fetcher. Zero values fall back to defaults.
type Options struct {
	Timeout     time.Duration
	MinTextLen  int
	MaxChars    int
	MaxParallel int
	Headless    HTMLFetcher // optional second-chance fetch for thin pages
}

// Fetcher retrieves evidence pages concurrently.
type Fetcher struct {
	opts   Options
	client *http.Client
	logger *log.Logger
}

// NewFetcher builds a Fetcher with the given options.
func NewFetcher(opts Options, logger *log.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MinTextLen <= 0 {
		opts.MinTextLen = defaultMinTextLen
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = defaultMaxChars
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = defaultMaxParallel
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[FETCH] ", log.LstdFlags)
	}
	return &Fetcher{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger,
	}
}

// Fetch retrieves up to pageBudget pages from the seed URLs, skipping
// duplicates and URLs outside the allow-list. Failed, timed-out, or
// too-short pages are silently omitted. Output preserves input URL order.
func (f *Fetcher) Fetch(ctx context.Context, seedURLs, allowedDomains []string, pageBudget int) []rag.Document {
	urls := f.selectURLs(seedURLs, allowedDomains, pageBudget)
	if len(urls) == 0 {
		f.logger.Printf("no seed urls to fetch")
		return nil
	}

	f.logger.Printf("fetching %d urls (parallelism %d)", len(urls), f.opts.MaxParallel)

	results := make([]*rag.Document, len(urls))
	sem := make(chan struct{}, f.opts.MaxParallel)
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = f.fetchOne(ctx, u)
		}(i, u)
	}
	wg.Wait()

	docs := make([]rag.Document, 0, len(urls))
	for _, d := range results {
		if d != nil {
			docs = append(docs, *d)
		}
	}
	f.logger.Printf("fetched %d / %d pages", len(docs), len(urls))
	return docs
}

// selectURLs dedupes, filters by allow-list, and caps at the page budget.
func (f *Fetcher) selectURLs(seedURLs, allowedDomains []string, pageBudget int) []string {
	seen := make(map[string]bool, len(seedURLs))
	var urls []string
	for _, raw := range seedURLs {
		if len(urls) >= pageBudget {
			break
		}
		canonical, err := helpers.CanonicalURL(raw)
		if err != nil || seen[canonical] {
			continue
		}
		if !helpers.DomainAllowed(canonical, allowedDomains) {
			f.logger.Printf("skipping %s: domain not allowed", raw)
			continue
		}
		seen[canonical] = true
		urls = append(urls, canonical)
	}
	return urls
}

// fetchOne retrieves a single page and extracts readable text. Any failure
// returns nil: a missing page degrades quality, it does not break the fetch.
func (f *Fetcher) fetchOne(ctx context.Context, pageURL string) *rag.Document {
	start := time.Now()
	html, err := f.fetchHTML(ctx, pageURL)
	if err != nil {
		f.logger.Printf("fetch %s failed: %v", pageURL, err)
		return nil
	}

	doc := f.extract(pageURL, html)
	if doc == nil && f.opts.Headless != nil {
		// Thin static HTML may still render content with a browser.
		if rendered, herr := f.opts.Headless.FetchHTML(ctx, pageURL); herr == nil {
			doc = f.extract(pageURL, rendered)
		}
	}
	if doc == nil {
		f.logger.Printf("skipping %s: no usable content", pageURL)
		return nil
	}

	f.logger.Printf("fetched %s: %d chars in %dms", pageURL, len(doc.Text), time.Since(start).Milliseconds())
	return doc
}

func (f *Fetcher) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("http %d", resp.StatusCode)
	}

	var sb strings.Builder
	if _, err := copyBounded(&sb, resp); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// copyBounded reads at most 2 MiB of the response body.
func copyBounded(dst *strings.Builder, resp *http.Response) (int64, error) {
	return io.Copy(dst, io.LimitReader(resp.Body, 2<<20))
}

// extract runs readability over raw HTML and applies the quality filter.
func (f *Fetcher) extract(pageURL, html string) *rag.Document {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return nil
	}

	text := strings.TrimSpace(whitespaceRuns.ReplaceAllString(article.TextContent, " "))
	if len(text) < f.opts.MinTextLen {
		return nil
	}
	if len(text) > f.opts.MaxChars {
		text = text[:f.opts.MaxChars]
	}
	return &rag.Document{
		URL:   pageURL,
		Title: strings.TrimSpace(article.Title),
		Text:  text,
	}
}
