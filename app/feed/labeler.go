package feed

import (
	"time"

	"github.com/lysyi3m/kent-tracker/app/rules"
)

type Labeler struct {
	rules      *rules.Ruleset
	normalizer *Normalizer
}

func NewLabeler(ruleset *rules.Ruleset) *Labeler {
	return &Labeler{
		rules:      ruleset,
		normalizer: NewNormalizer(),
	}
}

// Label picks the category for admitted matching text. Tiers are checked in
// fixed order: court, hate crime, police source, news.
func (l *Labeler) Label(text string, cand Candidate) Label {
	if firstTerm(text, l.rules.CourtTerms) != "" {
		return LabelCourtUpdate
	}
	if firstTerm(text, l.rules.HateTerms) != "" {
		return LabelHateCrimeUpdate
	}
	if l.isPoliceSource(cand) {
		return LabelPoliceUpdate
	}
	return LabelNewsReport
}

func (l *Labeler) Tags(text string) []string {
	return matchedTerms(text, l.rules.TagTerms())
}

// Run turns an admitted candidate into a feed item.
func (l *Labeler) Run(cand Candidate, text string, foundAt time.Time) FeedItem {
	return FeedItem{
		ID:           cand.URL,
		Title:        cand.Title,
		URL:          cand.URL,
		Published:    cand.Published,
		Source:       cand.SourceName,
		SourceDomain: cand.SourceDomain,
		Summary:      cand.Summary,
		Label:        l.Label(text, cand),
		Tags:         l.Tags(text),
		FoundAt:      foundAt.UTC().Truncate(time.Second),
		RulesVersion: l.rules.Version,
	}
}

func (l *Labeler) isPoliceSource(cand Candidate) bool {
	if domainMatches(NormalizeDomain(cand.SourceDomain), l.rules.PoliceDomains) {
		return true
	}
	return firstTerm(l.normalizer.Match(cand.SourceName), l.rules.PoliceSources) != ""
}
