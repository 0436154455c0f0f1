package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/lysyi3m/kent-tracker/app/feed"
)

// Collection is what one source yielded during a run.
type Collection struct {
	Candidates []feed.Candidate
	Skipped    int      // article links already seen, never fetched
	Processed  []string // article links fetched this run
	Errors     int
}

// Collector turns one configured source into candidates, one query at a time.
type Collector struct {
	fetcher *Fetcher
	parser  *feed.Parser
	police  *feed.PoliceExtractor
}

func NewCollector(fetcher *Fetcher, parser *feed.Parser, police *feed.PoliceExtractor) *Collector {
	return &Collector{
		fetcher: fetcher,
		parser:  parser,
		police:  police,
	}
}

// Run walks the source's queries in order. A failing query is logged and
// skipped. seen reports URLs that need not be fetched again.
func (c *Collector) Run(ctx context.Context, source *feed.SourceConfig, seen func(string) bool) Collection {
	var out Collection
	timeout := time.Duration(source.Settings.Timeout) * time.Second

	for _, query := range source.Queries {
		if ctx.Err() != nil {
			return out
		}

		queryURL, err := QueryURL(source, query)
		if err != nil {
			slog.Warn("Invalid source URL", "source", source.Name, "error", err)
			out.Errors++
			return out
		}

		var cands []feed.Candidate
		switch source.Kind {
		case feed.SourceKindPoliceSearch:
			cands, err = c.collectPolice(ctx, source, queryURL, timeout, seen, &out)
		default:
			cands, err = c.collectFeed(ctx, queryURL, timeout)
		}
		if err != nil {
			slog.Warn("Query failed, skipping", "source", source.Name, "query", query, "error", err)
			out.Errors++
			continue
		}

		if max := source.Settings.MaxItemsPerQuery; max > 0 && len(cands) > max {
			cands = cands[:max]
		}

		slog.Debug("Query collected", "source", source.Name, "query", query, "candidates", len(cands))
		out.Candidates = append(out.Candidates, cands...)
	}

	return out
}

func (c *Collector) collectFeed(ctx context.Context, queryURL string, timeout time.Duration) ([]feed.Candidate, error) {
	data, err := c.fetcher.Feed(ctx, queryURL, timeout)
	if err != nil {
		return nil, err
	}

	return c.parser.Run(data)
}

func (c *Collector) collectPolice(ctx context.Context, source *feed.SourceConfig, queryURL string, timeout time.Duration, seen func(string) bool, out *Collection) ([]feed.Candidate, error) {
	data, err := c.fetcher.Page(ctx, queryURL, timeout)
	if err != nil {
		return nil, err
	}

	links, err := c.police.Links(data, queryURL)
	if err != nil {
		return nil, err
	}
	if max := source.Settings.MaxLinksPerQuery; max > 0 && len(links) > max {
		links = links[:max]
	}

	sourceName := cmp.Or(source.SourceName, source.Name)

	var cands []feed.Candidate
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		if seen != nil && seen(link) {
			out.Skipped++
			continue
		}

		page, err := c.fetcher.Page(ctx, link, timeout)
		if err != nil {
			slog.Warn("Article fetch failed, skipping", "source", source.Name, "url", link, "error", err)
			out.Errors++
			continue
		}
		out.Processed = append(out.Processed, link)

		cand, err := c.police.Article(page, link, sourceName)
		if err != nil {
			slog.Warn("Article extraction failed, skipping", "source", source.Name, "url", link, "error", err)
			out.Errors++
			continue
		}

		cands = append(cands, cand)
	}

	return cands, nil
}

// QueryURL builds the request URL for one query: the source URL with q set
// to the query (when non-empty) and the source's extra parameters added.
func QueryURL(source *feed.SourceConfig, query string) (string, error) {
	u, err := url.Parse(source.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", source.URL, err)
	}

	if query == "" && len(source.Params) == 0 {
		return u.String(), nil
	}

	values := u.Query()
	if query != "" {
		values.Set("q", query)
	}
	for k, v := range source.Params {
		values.Set(k, v)
	}
	u.RawQuery = values.Encode()

	return u.String(), nil
}
