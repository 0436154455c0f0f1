package feed

import (
	"bytes"
	"encoding/json"
	"time"
)

// Feed processing types

type Label string

const (
	LabelCourtUpdate     Label = "Court update"
	LabelHateCrimeUpdate Label = "Hate crime update"
	LabelPoliceUpdate    Label = "Police update"
	LabelNewsReport      Label = "News report"
)

const MaxSummaryLength = 400

// Candidate is one scraped record before classification. URL is the identity key.
type Candidate struct {
	Title        string
	URL          string
	Published    *Date // nil when the source gave no parseable date
	SourceName   string
	SourceDomain string
	Summary      string
}

// Eligible reports whether the record carries the required fields.
func (c Candidate) Eligible() bool {
	return c.URL != "" && c.Title != ""
}

type FeedItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Published    *Date     `json:"published"`
	Source       string    `json:"source"`
	SourceDomain string    `json:"source_domain,omitempty"`
	Summary      string    `json:"summary"`
	Label        Label     `json:"label"`
	Tags         []string  `json:"tags"`
	FoundAt      time.Time `json:"found_at"`
	RulesVersion string    `json:"rules_version,omitempty"`
}

// UnmarshalJSON decodes a persisted item. A published value that is empty
// or unparseable leaves the date unknown instead of failing the item.
func (i *FeedItem) UnmarshalJSON(data []byte) error {
	type plain FeedItem
	aux := struct {
		*plain
		Published json.RawMessage `json:"published"`
	}{plain: (*plain)(i)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	i.Published = nil
	if len(aux.Published) == 0 || bytes.Equal(aux.Published, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(aux.Published, &raw); err != nil {
		return nil
	}
	if published, ok := ParseDate(raw); ok {
		i.Published = published
	}
	return nil
}

// Verdict is the outcome of classifying one candidate.
type Verdict struct {
	Admitted bool
	Reason   string
}
