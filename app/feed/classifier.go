package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/kent-tracker/app/rules"
)

const DefaultLookbackYears = 5

// Classifier decides admission as Location ∧ Topic ∧ Recency over one ruleset.
// For a fixed ruleset and clock it is a pure function of the candidate.
type Classifier struct {
	rules         *rules.Ruleset
	normalizer    *Normalizer
	lookbackYears int
	now           func() time.Time
}

func NewClassifier(ruleset *rules.Ruleset, lookbackYears int) *Classifier {
	if lookbackYears <= 0 {
		lookbackYears = DefaultLookbackYears
	}
	return &Classifier{
		rules:         ruleset,
		normalizer:    NewNormalizer(),
		lookbackYears: lookbackYears,
		now:           time.Now,
	}
}

// WithClock pins the reference time used by the recency filter.
func (c *Classifier) WithClock(now func() time.Time) *Classifier {
	c.now = now
	return c
}

func (c *Classifier) Ruleset() *rules.Ruleset {
	return c.rules
}

// Text builds the folded matching text for a candidate.
func (c *Classifier) Text(cand Candidate) string {
	return c.normalizer.Match(strings.Join([]string{
		cand.Title, cand.Summary, cand.SourceName, cand.SourceDomain,
	}, " "))
}

func (c *Classifier) Classify(cand Candidate) Verdict {
	text := c.Text(cand)

	if ok, reason := c.Location(text, cand.SourceDomain); !ok {
		return Verdict{Reason: reason}
	}
	if ok, reason := c.Topic(text); !ok {
		return Verdict{Reason: reason}
	}
	if ok, reason := c.Recency(cand.Published); !ok {
		return Verdict{Reason: reason}
	}

	return Verdict{Admitted: true}
}

// Location admits text plausibly about the configured county. Block terms
// win over every other signal, trusted domains included.
func (c *Classifier) Location(text, domain string) (bool, string) {
	if term := firstTerm(text, c.rules.BlockTerms); term != "" {
		return false, fmt.Sprintf("Excluded by location filter: contains block term '%s'", term)
	}

	if domainMatches(NormalizeDomain(domain), c.rules.TrustedDomains) {
		return true, ""
	}

	if firstTerm(text, c.rules.PositivePhrases) != "" || firstTerm(text, c.rules.Localities) != "" {
		return true, ""
	}

	if containsTerm(text, c.rules.County) {
		if firstTerm(text, c.rules.Qualifiers) != "" {
			return true, ""
		}
		return false, fmt.Sprintf("Excluded by location filter: '%s' without a UK qualifier", c.rules.County)
	}

	return false, "Excluded by location filter: no location match"
}

// Topic admits strong terms alone, broad terms only alongside hate or court vocabulary.
func (c *Classifier) Topic(text string) (bool, string) {
	if firstTerm(text, c.rules.StrongTerms) != "" {
		return true, ""
	}

	if firstTerm(text, c.rules.BroadTerms) == "" {
		return false, "Excluded by topic filter: no topic term"
	}

	if firstTerm(text, c.rules.HateTerms) != "" || firstTerm(text, c.rules.CourtTerms) != "" {
		return true, ""
	}

	return false, "Excluded by topic filter: broad term without hate or court context"
}

// Recency rejects dated items older than the lookback window. Unknown dates pass.
func (c *Classifier) Recency(published *Date) (bool, string) {
	if published == nil {
		return true, ""
	}

	cutoff := NewDate(c.now().AddDate(-c.lookbackYears, 0, 0))
	if published.Before(cutoff.Time) {
		return false, fmt.Sprintf("Excluded by recency filter: published %s before %s", published, cutoff)
	}

	return true, ""
}
