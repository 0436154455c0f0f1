package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

// Parser turns RSS/Atom documents into candidates. RSS is read with the
// format-specific parser so per-item <source> elements survive.
type Parser struct {
	gofeedParser *gofeed.Parser
	rssParser    *rss.Parser
	normalizer   *Normalizer
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		rssParser:    &rss.Parser{},
		normalizer:   NewNormalizer(),
	}
}

func (p *Parser) Run(data []byte) ([]Candidate, error) {
	if gofeed.DetectFeedType(bytes.NewReader(data)) == gofeed.FeedTypeRSS {
		return p.parseRSS(data)
	}
	return p.parseUniversal(data)
}

func (p *Parser) parseRSS(data []byte) ([]Candidate, error) {
	feed, err := p.rssParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	candidates := make([]Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		var sourceName, sourceURL string
		if item.Source != nil {
			sourceName = item.Source.Title
			sourceURL = item.Source.URL
		}

		candidates = append(candidates, p.candidate(
			item.Title,
			item.Link,
			cmp.Or(item.Description, item.Content),
			item.PubDateParsed, item.PubDate,
			cmp.Or(sourceName, feed.Title),
			cmp.Or(sourceURL, item.Link),
		))
	}

	return candidates, nil
}

func (p *Parser) parseUniversal(data []byte) ([]Candidate, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	candidates := make([]Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		candidates = append(candidates, p.candidate(
			item.Title,
			item.Link,
			cmp.Or(item.Description, item.Content),
			item.PublishedParsed, item.Published,
			feed.Title,
			item.Link,
		))
	}

	return candidates, nil
}

func (p *Parser) candidate(title, link, description string, parsed *time.Time, rawDate, sourceName, sourceURL string) Candidate {
	cand := Candidate{
		Title:        p.normalizer.Display(title),
		URL:          strings.TrimSpace(link),
		SourceName:   p.normalizer.Display(sourceName),
		SourceDomain: NormalizeDomain(sourceURL),
		Summary:      Truncate(p.normalizer.Display(description), MaxSummaryLength),
	}

	if parsed != nil {
		d := NewDate(*parsed)
		cand.Published = &d
	} else if d, ok := ParseDate(rawDate); ok {
		cand.Published = d
	}

	return cand
}
