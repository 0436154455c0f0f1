package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxResponseSize = 10 << 20

// Fetcher issues the GET requests of a run. Every call blocks for at most
// the given timeout; failures are returned to the caller, never retried.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (f *Fetcher) Feed(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	return f.fetch(ctx, url, timeout, "application/rss+xml, application/xml;q=0.9, */*;q=0.8", false)
}

func (f *Fetcher) Page(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	return f.fetch(ctx, url, timeout, "text/html,application/xhtml+xml;q=0.9, */*;q=0.8", true)
}

func (f *Fetcher) fetch(ctx context.Context, url string, timeout time.Duration, accept string, requireHTML bool) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if requireHTML {
		contentType := resp.Header.Get("Content-Type")
		if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
			return nil, fmt.Errorf("content type is not HTML: %s", contentType)
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
