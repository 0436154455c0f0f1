package rules

const DefaultVersion = "kent-2"

// Default returns the built-in Kent ruleset. Callers get a fresh copy.
func Default() *Ruleset {
	return &Ruleset{
		Version: DefaultVersion,
		County:  "kent",

		BlockTerms: []string{
			"kent state",
			"kent state university",
			"kent, ohio",
			"kent, washington",
			"ohio",
			"usa",
			"u.s.",
			"united states",
		},
		TrustedDomains: []string{
			"kent.police.uk",
			"kentonline.co.uk",
			"kentlive.news",
			"kent.gov.uk",
			"medway.gov.uk",
		},
		PositivePhrases: []string{
			"kent police",
			"kent county council",
			"kent and medway",
			"east kent",
			"west kent",
			"north kent",
			"mid kent",
			"kent online",
			"kentonline",
			"kent live",
		},
		// "deal" is left out: it collides with the common noun.
		Localities: []string{
			"ashford", "broadstairs", "canterbury", "chatham", "dartford", "dover",
			"faversham", "folkestone", "gillingham", "gravesend", "herne bay", "hythe",
			"isle of sheppey", "maidstone", "margate", "medway", "ramsgate", "rochester",
			"sevenoaks", "sheerness", "sheppey", "sittingbourne", "swale", "thanet",
			"tonbridge", "tunbridge wells", "whitstable",
		},
		Qualifiers: []string{
			"uk", "u.k.", "england", "english", "britain", "great britain", "united kingdom",
		},

		StrongTerms: []string{
			"homophobic", "homophobia",
			"transphobic", "transphobia",
			"biphobic", "biphobia",
			"sexual orientation",
			"gender identity",
		},
		BroadTerms: []string{
			"lgbt", "lgbtq", "lgbtq+", "lgbtqia", "lgbtqia+",
			"gay", "lesbian", "bisexual",
			"trans", "transgender",
			"non-binary", "non binary", "nonbinary",
			"pride",
		},
		HateTerms: []string{
			"hate crime", "hate-crime", "hatecrime",
			"hate incident",
		},
		CourtTerms: []string{
			"court", "crown court", "magistrates",
			"jailed", "sentenced", "convicted",
			"pleaded guilty", "pleaded",
			"charged", "appeared", "remanded",
			"trial", "hearing",
		},

		PoliceSources: []string{"kent police"},
		PoliceDomains: []string{"police.uk"},
	}
}
