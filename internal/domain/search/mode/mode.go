package mode

// Mode is a line matching strategy.
type Mode string

// Matching mode constants, listed in default priority order.
const (
	// Text matches language-aware and case-insensitive.
	Text Mode = "text"
	// Suffix matches exact substrings via a suffix array.
	Suffix Mode = "suffix"
	// SuffixFold matches case-insensitive substrings and returns surrounding context.
	SuffixFold Mode = "suffix_fold"
	Fuzzy      Mode = "fuzzy"
	// Bleve runs a fuzzy term query against a full-text index.
	Bleve Mode = "bleve"
)

// Default returns the matcher priority order used when none is configured.
func Default() []Mode {
	return []Mode{Text, Suffix, SuffixFold, Fuzzy, Bleve}
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Text || m == Suffix || m == SuffixFold || m == Fuzzy || m == Bleve
}
