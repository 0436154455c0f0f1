package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/kent-tracker/app/rules"
)

var classifierNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestClassifier() *Classifier {
	return NewClassifier(rules.Default(), 5).WithClock(func() time.Time { return classifierNow })
}

func dated(year int, month time.Month, day int) *Date {
	d := NewDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
	return &d
}

func TestClassifierClassify(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name     string
		cand     Candidate
		admitted bool
		reason   string
	}{
		{
			name:     "locality and strong term",
			cand:     Candidate{Title: "Man jailed for homophobic attack in Maidstone", URL: "https://a.example/1", Published: dated(2025, 5, 1)},
			admitted: true,
		},
		{
			name:   "block term beats everything",
			cand:   Candidate{Title: "Homophobic attack in Kent, Ohio", URL: "https://a.example/2", SourceDomain: "kentonline.co.uk"},
			reason: "location filter",
		},
		{
			name:     "trusted domain without locality",
			cand:     Candidate{Title: "Transphobic abuse investigated", URL: "https://a.example/3", SourceDomain: "kent.police.uk"},
			admitted: true,
		},
		{
			name:   "county without qualifier",
			cand:   Candidate{Title: "Homophobic attack in Kent", URL: "https://a.example/4"},
			reason: "without a UK qualifier",
		},
		{
			name:     "county with qualifier",
			cand:     Candidate{Title: "Homophobic attack in Kent, England", URL: "https://a.example/5"},
			admitted: true,
		},
		{
			name:   "no location",
			cand:   Candidate{Title: "Homophobic attack in Leeds", URL: "https://a.example/6"},
			reason: "no location match",
		},
		{
			name:     "broad term with hate context",
			cand:     Candidate{Title: "Gay man targeted in Margate", Summary: "Police are treating it as a hate crime.", URL: "https://a.example/7"},
			admitted: true,
		},
		{
			name:     "broad term with court context",
			cand:     Candidate{Title: "Trans woman's attacker sentenced in Canterbury", URL: "https://a.example/8"},
			admitted: true,
		},
		{
			name:   "broad term alone",
			cand:   Candidate{Title: "Pride returns to Canterbury", URL: "https://a.example/9"},
			reason: "broad term without hate or court context",
		},
		{
			name:   "no topic",
			cand:   Candidate{Title: "Roadworks in Maidstone", URL: "https://a.example/10"},
			reason: "no topic term",
		},
		{
			name:   "too old",
			cand:   Candidate{Title: "Homophobic attack in Dover", URL: "https://a.example/11", Published: dated(2019, 1, 1)},
			reason: "recency filter",
		},
		{
			name:     "missing date is permissive",
			cand:     Candidate{Title: "Homophobic attack in Dover", URL: "https://a.example/12"},
			admitted: true,
		},
		{
			name:     "markup and case are ignored",
			cand:     Candidate{Title: "<b>HOMOPHOBIC</b> abuse in <i>THANET</i>", URL: "https://a.example/13"},
			admitted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := c.Classify(tt.cand)
			if verdict.Admitted != tt.admitted {
				t.Fatalf("Expected admitted=%v, got %v (%s)", tt.admitted, verdict.Admitted, verdict.Reason)
			}
			if !tt.admitted && !strings.Contains(verdict.Reason, tt.reason) {
				t.Errorf("Expected reason containing %q, got %q", tt.reason, verdict.Reason)
			}
			if tt.admitted && verdict.Reason != "" {
				t.Errorf("Expected empty reason for admitted candidate, got %q", verdict.Reason)
			}
		})
	}
}

func TestClassifierIdempotent(t *testing.T) {
	c := newTestClassifier()
	cand := Candidate{Title: "Homophobic attack in Kent, Ohio", URL: "https://a.example/x"}

	first := c.Classify(cand)
	for i := 0; i < 5; i++ {
		if got := c.Classify(cand); got != first {
			t.Fatalf("Classification changed between calls: %+v vs %+v", first, got)
		}
	}
}

func TestClassifierSoundness(t *testing.T) {
	c := newTestClassifier()
	cands := []Candidate{
		{Title: "Man jailed for homophobic attack in Maidstone", Published: dated(2025, 5, 1)},
		{Title: "Gay man targeted in Margate hate crime"},
		{Title: "Pride returns to Canterbury"},
		{Title: "Homophobic attack in Ohio"},
		{Title: "Homophobic attack in Dover", Published: dated(2010, 1, 1)},
	}

	for _, cand := range cands {
		verdict := c.Classify(cand)
		text := c.Text(cand)

		location, _ := c.Location(text, cand.SourceDomain)
		topic, _ := c.Topic(text)
		recency, _ := c.Recency(cand.Published)

		if verdict.Admitted != (location && topic && recency) {
			t.Errorf("%q: admitted=%v but location=%v topic=%v recency=%v", cand.Title, verdict.Admitted, location, topic, recency)
		}
	}
}

func TestClassifierRecencyBoundary(t *testing.T) {
	c := newTestClassifier()

	if ok, _ := c.Recency(dated(2020, 6, 1)); !ok {
		t.Error("Expected cutoff day itself to pass")
	}
	if ok, _ := c.Recency(dated(2020, 5, 31)); ok {
		t.Error("Expected day before cutoff to fail")
	}
	if ok, _ := c.Recency(nil); !ok {
		t.Error("Expected unknown date to pass")
	}
}

func TestClassifierUsesRuleset(t *testing.T) {
	ruleset, err := rules.Parse([]byte(`
version: "sussex-1"
county: "sussex"
localities: ["brighton"]
strong_terms: ["homophobic"]
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	c := NewClassifier(ruleset, 5)
	if !c.Classify(Candidate{Title: "Homophobic attack in Brighton"}).Admitted {
		t.Error("Expected Brighton story admitted under the Sussex ruleset")
	}
	if c.Classify(Candidate{Title: "Homophobic attack in Maidstone"}).Admitted {
		t.Error("Expected Maidstone story rejected under the Sussex ruleset")
	}
}
