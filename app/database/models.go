package database

import (
	"time"
)

// State is the persisted cross-run record, oldest URL first.
// ProcessedURLs holds article pages already fetched, admitted or not.
type State struct {
	SeenURLs      []string `json:"seen_urls"`
	ProcessedURLs []string `json:"processed_urls,omitempty"`
}

type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	RulesVersion string
	Fetched      int // candidates returned by extractors
	Duplicates   int // skipped as already seen
	Rejected     int // failed classification
	Admitted     int
	FeedSize     int
	SeenSize     int
	Errors       int // failed queries and records
}

type ItemStats struct {
	Total   int
	ByLabel map[string]int
}
