package forensics

import "regexp"

// NamePattern is a single candidate-extraction rule. Priority follows slice
// order; earlier patterns produce higher-confidence candidates.
type NamePattern struct {
	Name string
	Re   *regexp.Regexp
}

// NamePatterns is the immutable, ordered extraction configuration. Build it
// once with DefaultNamePatterns and share it by reference across matchers;
// it is never mutated after construction.
type NamePatterns struct {
	Patterns   []NamePattern
	Honorifics *regexp.Regexp
	Stopwords  map[string]struct{}
}

// DefaultNamePatterns returns the standard certificate phrasing library
func DefaultNamePatterns() *NamePatterns {
	namePart := `[A-Z][A-Za-z.'\-]+`
	titleRun := namePart + `(?:\s+` + namePart + `){0,3}`

	patterns := []NamePattern{
		{
			Name: "certify_idiom",
			Re: regexp.MustCompile(`(?i)(?:this is to certify that|certifies that|certify that|is hereby awarded to|hereby awarded to|awarded to|presented to|is presented to|conferred upon|granted to)\s+(` + titleRun + `)`),
		},
		{
			Name: "labeled_field",
			Re:   regexp.MustCompile(`(?i)(?:student name|candidate name|recipient name|holder name|name)\s*[:\-]\s*(` + titleRun + `)`),
		},
		{
			Name: "honorific",
			Re:   regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Miss|Dr|Prof|Er)\.?\s+(` + titleRun + `)`),
		},
		{
			Name: "all_caps_run",
			Re:   regexp.MustCompile(`\b([A-Z][A-Z.'\-]{1,}(?:\s+[A-Z][A-Z.'\-]{1,}){1,3})\b`),
		},
		{
			Name: "title_case_run",
			Re:   regexp.MustCompile(`\b([A-Z][a-z.'\-]+(?:\s+[A-Z][a-z.'\-]+){1,3})\b`),
		},
	}

	stop := map[string]struct{}{}
	for _, w := range []string{
		"certificate", "certification", "university", "college", "institute",
		"institution", "academy", "school", "completion", "achievement",
		"appreciation", "participation", "excellence", "award", "awarded",
		"diploma", "degree", "bachelor", "master", "doctor", "program",
		"course", "training", "date", "signature", "signed", "director",
		"dean", "president", "principal", "registrar", "chairman",
		"department", "faculty", "board", "issued", "valid", "verify",
		"verification", "authorized", "this", "that", "has", "who",
	} {
		stop[w] = struct{}{}
	}

	return &NamePatterns{
		Patterns:   patterns,
		Honorifics: regexp.MustCompile(`(?i)^(?:mr|mrs|ms|miss|dr|prof|er)\.?\s+`),
		Stopwords:  stop,
	}
}
