package rules

// Ruleset is one versioned vocabulary for the relevance classifier and labeler.
// All terms are matched case-insensitively on word boundaries.
type Ruleset struct {
	Version string `yaml:"version"`
	County  string `yaml:"county"`

	// Location
	BlockTerms      []string `yaml:"block_terms"`
	TrustedDomains  []string `yaml:"trusted_domains"`
	PositivePhrases []string `yaml:"positive_phrases"`
	Localities      []string `yaml:"localities"`
	Qualifiers      []string `yaml:"qualifiers"`

	// Topic
	StrongTerms []string `yaml:"strong_terms"`
	BroadTerms  []string `yaml:"broad_terms"`
	HateTerms   []string `yaml:"hate_terms"`
	CourtTerms  []string `yaml:"court_terms"`

	// Labeling
	PoliceSources []string `yaml:"police_sources"`
	PoliceDomains []string `yaml:"police_domains"`
}

// TagTerms returns the vocabulary recorded as item tags.
func (r *Ruleset) TagTerms() []string {
	terms := make([]string, 0, len(r.StrongTerms)+len(r.BroadTerms)+len(r.HateTerms))
	terms = append(terms, r.StrongTerms...)
	terms = append(terms, r.BroadTerms...)
	terms = append(terms, r.HateTerms...)
	return terms
}
