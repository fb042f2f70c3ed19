package matcher

import (
	"context"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/kailas-cloud/shakesearch/internal/corpus"
)

// FuzzyMatcher matches lines containing the query characters in order,
// ignoring case and diacritics.
type FuzzyMatcher struct {
	lines []string
}

// NewFuzzy creates a FuzzyMatcher over the corpus lines.
func NewFuzzy(c *corpus.Corpus) *FuzzyMatcher {
	return &FuzzyMatcher{lines: c.Lines()}
}

// Search returns matching lines in corpus order.
func (m *FuzzyMatcher) Search(ctx context.Context, query string) ([]string, error) {
	var lines []string
	for i, line := range m.lines {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if fuzzy.MatchNormalizedFold(query, line) {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
