package feed

import (
	"strings"
	"testing"
)

func TestParseGoogleNewsRSS(t *testing.T) {
	rssData := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>"kent homophobic" - Google News</title>
    <link>https://news.google.com/search?q=kent+homophobic</link>
    <item>
      <title>Man jailed for homophobic attack in Maidstone - Kent Online</title>
      <link>https://news.google.com/rss/articles/abc123</link>
      <guid isPermaLink="false">abc123</guid>
      <pubDate>Wed, 28 May 2025 09:00:00 GMT</pubDate>
      <description>&lt;a href="https://news.google.com/rss/articles/abc123"&gt;Man jailed for homophobic attack&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font color="#6f6f6f"&gt;Kent Online&lt;/font&gt;</description>
      <source url="https://www.kentonline.co.uk">Kent Online</source>
    </item>
    <item>
      <title>Undated item</title>
      <link>https://news.google.com/rss/articles/def456</link>
      <pubDate>sometime last week</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	cands, err := parser.Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(cands) != 2 {
		t.Fatalf("Expected 2 candidates, got: %d", len(cands))
	}

	first := cands[0]
	if first.Title != "Man jailed for homophobic attack in Maidstone - Kent Online" {
		t.Errorf("Unexpected title: %s", first.Title)
	}
	if first.URL != "https://news.google.com/rss/articles/abc123" {
		t.Errorf("Unexpected URL: %s", first.URL)
	}
	if first.SourceName != "Kent Online" {
		t.Errorf("Expected source 'Kent Online', got: %s", first.SourceName)
	}
	if first.SourceDomain != "kentonline.co.uk" {
		t.Errorf("Expected domain 'kentonline.co.uk', got: %s", first.SourceDomain)
	}
	if first.Published == nil || first.Published.String() != "2025-05-28" {
		t.Errorf("Expected published 2025-05-28, got: %v", first.Published)
	}
	if strings.Contains(first.Summary, "<") || !strings.Contains(first.Summary, "Man jailed for homophobic attack") {
		t.Errorf("Expected plain-text summary, got: %q", first.Summary)
	}

	second := cands[1]
	if second.Published != nil {
		t.Errorf("Expected unknown date, got: %v", second.Published)
	}
	if second.SourceName != `"kent homophobic" - Google News` {
		t.Errorf("Expected feed title as source fallback, got: %s", second.SourceName)
	}
	if second.SourceDomain != "news.google.com" {
		t.Errorf("Expected domain from item link, got: %s", second.SourceDomain)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Medway Council news</title>
  <link href="https://www.medway.gov.uk/"/>
  <id>urn:uuid:60a76c80-d399-11d9-b93c-0003939e0af6</id>
  <updated>2025-05-20T18:30:02Z</updated>
  <entry>
    <title>Council condemns transphobic graffiti in Chatham</title>
    <link href="https://www.medway.gov.uk/news/graffiti"/>
    <id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
    <updated>2025-05-20T18:30:02Z</updated>
    <published>2025-05-20T18:30:02Z</published>
    <summary>The council said the &lt;em&gt;graffiti&lt;/em&gt; was unacceptable.</summary>
  </entry>
</feed>`

	cands, err := NewParser().Run([]byte(atomData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("Expected 1 candidate, got: %d", len(cands))
	}

	cand := cands[0]
	if cand.URL != "https://www.medway.gov.uk/news/graffiti" {
		t.Errorf("Unexpected URL: %s", cand.URL)
	}
	if cand.SourceName != "Medway Council news" || cand.SourceDomain != "medway.gov.uk" {
		t.Errorf("Unexpected source: %s / %s", cand.SourceName, cand.SourceDomain)
	}
	if cand.Summary != "The council said the graffiti was unacceptable." {
		t.Errorf("Unexpected summary: %q", cand.Summary)
	}
	if cand.Published == nil || cand.Published.String() != "2025-05-20" {
		t.Errorf("Expected published 2025-05-20, got: %v", cand.Published)
	}
}

func TestParseSummaryTruncated(t *testing.T) {
	long := strings.Repeat("word ", 200)
	rssData := `<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>
<item><title>Long</title><link>https://a.example/long</link><description>` + long + `</description></item>
</channel></rss>`

	cands, err := NewParser().Run([]byte(rssData))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if n := len([]rune(cands[0].Summary)); n > MaxSummaryLength {
		t.Errorf("Expected summary capped at %d runes, got %d", MaxSummaryLength, n)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := NewParser().Run([]byte("not a feed")); err == nil {
		t.Error("Expected error for invalid feed data")
	}
}
