package feed

import (
	"net/url"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// containsTerm reports whether term occurs in text bounded by non-alphanumeric
// characters (or the ends of text). Both are expected to be folded already.
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}

	for offset := 0; offset <= len(text)-len(term); {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(term)

		if isBoundary(text, start, true) && isBoundary(text, end, false) {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}

	return false
}

func isBoundary(text string, pos int, before bool) bool {
	var r rune
	if before {
		if pos == 0 {
			return true
		}
		r, _ = utf8.DecodeLastRuneInString(text[:pos])
	} else {
		if pos >= len(text) {
			return true
		}
		r, _ = utf8.DecodeRuneInString(text[pos:])
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// firstTerm returns the first term of terms found in text, or "".
func firstTerm(text string, terms []string) string {
	for _, term := range terms {
		if containsTerm(text, term) {
			return term
		}
	}
	return ""
}

// matchedTerms returns every term found in text, sorted and unique.
func matchedTerms(text string, terms []string) []string {
	set := make(map[string]struct{})
	for _, term := range terms {
		if containsTerm(text, term) {
			set[term] = struct{}{}
		}
	}

	matched := make([]string, 0, len(set))
	for term := range set {
		matched = append(matched, term)
	}
	sort.Strings(matched)
	return matched
}

// domainMatches reports whether domain equals one of domains or is a subdomain of it.
func domainMatches(domain string, domains []string) bool {
	if domain == "" {
		return false
	}
	for _, d := range domains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// NormalizeDomain reduces a URL or bare host to a lower-case host without "www.".
func NormalizeDomain(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}

	host := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		host = u.Hostname()
	} else if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}

	host = strings.TrimSuffix(host, ".")
	return strings.TrimPrefix(host, "www.")
}
