package feed

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var publishedStamp = regexp.MustCompile(`Published:\s*(\d{2}:\d{2}\s+\d{2}/\d{2}/\d{4})`)

// PoliceExtractor reads police news-search result pages and article pages.
type PoliceExtractor struct {
	normalizer       *Normalizer
	contentExtractor *ContentExtractor
}

func NewPoliceExtractor(contentExtractor *ContentExtractor) *PoliceExtractor {
	return &PoliceExtractor{
		normalizer:       NewNormalizer(),
		contentExtractor: contentExtractor,
	}
}

// Links returns the absolute, query-free article URLs on a search result page, sorted.
func (e *PoliceExtractor) Links(data []byte, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	links := make(map[string]struct{})
	collect := func(sel *goquery.Selection, requireLatest bool) {
		sel.Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			if abs := resolveNewsLink(base, href, requireLatest); abs != "" {
				links[abs] = struct{}{}
			}
		})
	}

	collect(doc.Find("h3 a"), false)
	if len(links) == 0 {
		collect(doc.Find("a[href]"), true)
	}

	out := make([]string, 0, len(links))
	for link := range links {
		out = append(out, link)
	}
	sort.Strings(out)
	return out, nil
}

func resolveNewsLink(base *url.URL, href string, requireLatest bool) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Host != base.Host || !strings.HasPrefix(abs.Path, "/news/") {
		return ""
	}
	if requireLatest && !strings.Contains(abs.Path, "/latest/") {
		return ""
	}

	abs.RawQuery = ""
	abs.Fragment = ""
	return abs.String()
}

// Article extracts a candidate from one police news article page.
func (e *PoliceExtractor) Article(data []byte, pageURL, sourceName string) (Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to parse article page: %w", err)
	}

	title := e.normalizer.Display(doc.Find("h1").First().Text())
	if title == "" {
		if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
			title = e.normalizer.Display(og)
		}
	}
	if title == "" {
		return Candidate{}, fmt.Errorf("no title found on %s", pageURL)
	}

	cand := Candidate{
		Title:        title,
		URL:          pageURL,
		SourceName:   sourceName,
		SourceDomain: NormalizeDomain(pageURL),
	}

	if m := publishedStamp.FindStringSubmatch(doc.Text()); m != nil {
		if d, ok := ParseDate(m[1]); ok {
			cand.Published = d
		}
	}

	summary := ""
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		summary = e.normalizer.Display(desc)
	}
	if summary == "" {
		summary = e.normalizer.Display(doc.Find("p").First().Text())
	}
	if summary == "" && e.contentExtractor != nil {
		if text, err := e.contentExtractor.Run(data); err == nil {
			summary = e.normalizer.Display(text)
		}
	}
	cand.Summary = Truncate(summary, MaxSummaryLength)

	return cand, nil
}
