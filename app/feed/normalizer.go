package feed

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const maxDecodeRounds = 4

// Normalizer turns raw scraped strings into display and matching text.
type Normalizer struct {
	policy *bluemonday.Policy
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Display strips markup, unescapes entities and collapses whitespace,
// keeping the original case.
func (n *Normalizer) Display(raw string) string {
	if raw == "" {
		return ""
	}

	// NFKC first: fullwidth brackets fold to '<' and '>'.
	s := norm.NFKC.String(raw)

	// Escaped markup turns into tags once decoded, so decoding and
	// sanitizing alternate until the text stops changing.
	for range maxDecodeRounds {
		decoded := html.UnescapeString(s)
		if !strings.Contains(decoded, "<") {
			if decoded == s {
				break
			}
			s = decoded
			continue
		}
		// Tags are replaced by a space so adjacent words don't merge.
		s = n.policy.Sanitize(strings.ReplaceAll(decoded, "<", " <"))
	}
	s = html.UnescapeString(s)

	return strings.Join(strings.Fields(s), " ")
}

// Match returns the case-folded form of Display, used for term matching.
func (n *Normalizer) Match(raw string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Fold().String(n.Display(raw))
}

// Truncate shortens s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
