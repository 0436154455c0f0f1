package feed

import (
	"reflect"
	"testing"
)

func TestContainsTerm(t *testing.T) {
	tests := []struct {
		text     string
		term     string
		expected bool
	}{
		{"homophobic attack in kent", "kent", true},
		{"attack in kentish town", "kent", false},
		{"kent, ohio police said", "kent, ohio", true},
		{"pride month", "pride", true},
		{"prideful display", "pride", false},
		{"lgbtq+ community", "lgbtq+", true},
		{"lgbtq community", "lgbt", false},
		{"trans woman", "trans", true},
		{"transport delays", "trans", false},
		{"a u.s. citizen", "u.s.", true},
		{"", "kent", false},
		{"kent", "", false},
		{"kent", "kent", true},
	}

	for _, tt := range tests {
		if got := containsTerm(tt.text, tt.term); got != tt.expected {
			t.Errorf("containsTerm(%q, %q) = %v, want %v", tt.text, tt.term, got, tt.expected)
		}
	}
}

func TestContainsTermFindsLaterBoundedMatch(t *testing.T) {
	if !containsTerm("kentish folk and kent police", "kent") {
		t.Error("Expected bounded match after an unbounded one")
	}
}

func TestMatchedTerms(t *testing.T) {
	got := matchedTerms("transphobic and homophobic hate crime", []string{"homophobic", "transphobic", "hate crime", "homophobic", "biphobic"})
	expected := []string{"hate crime", "homophobic", "transphobic"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if got := matchedTerms("nothing here", []string{"gay"}); len(got) != 0 {
		t.Errorf("Expected no terms, got %v", got)
	}
}

func TestDomainMatches(t *testing.T) {
	domains := []string{"police.uk", "kentonline.co.uk"}

	if !domainMatches("kent.police.uk", domains) {
		t.Error("Expected subdomain match")
	}
	if !domainMatches("kentonline.co.uk", domains) {
		t.Error("Expected exact match")
	}
	if domainMatches("notpolice.uk", domains) {
		t.Error("Expected suffix without dot to be rejected")
	}
	if domainMatches("", domains) {
		t.Error("Expected empty domain to be rejected")
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"https://www.KentOnline.co.uk/news/story": "kentonline.co.uk",
		"http://kent.police.uk:8080/news":         "kent.police.uk",
		"www.thepinknews.com":                     "thepinknews.com",
		"bbc.co.uk/news":                          "bbc.co.uk",
		"example.com.":                            "example.com",
		"":                                        "",
	}

	for input, expected := range tests {
		if got := NormalizeDomain(input); got != expected {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", input, got, expected)
		}
	}
}
