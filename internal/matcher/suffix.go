package matcher

import (
	"context"
	"fmt"
	"index/suffixarray"
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/kailas-cloud/shakesearch/internal/corpus"
	"github.com/kailas-cloud/shakesearch/internal/domain"
)

// contextBytes is how much text SuffixFold returns on each side of a match.
const contextBytes = 250

// ctxCheckEvery is how many lines a scan handles between ctx checks.
const ctxCheckEvery = 1024

// SuffixArray indexes the whole corpus text for substring lookups.
type SuffixArray struct {
	text  string
	index *suffixarray.Index
}

// NewSuffixArray builds the index. Construction is O(n) in corpus size.
func NewSuffixArray(c *corpus.Corpus) *SuffixArray {
	return &SuffixArray{
		text:  c.Text(),
		index: suffixarray.New([]byte(c.Text())),
	}
}

// Exact returns a matcher for case-sensitive substrings.
func (sa *SuffixArray) Exact() Matcher { return exactMatcher{sa} }

// Fold returns a matcher for case-insensitive substrings with surrounding context.
func (sa *SuffixArray) Fold() Matcher { return foldMatcher{sa} }

type exactMatcher struct{ sa *SuffixArray }

// Search returns each line containing query once, in corpus order.
func (m exactMatcher) Search(ctx context.Context, query string) ([]string, error) {
	offsets := m.sa.index.Lookup([]byte(query), -1)
	if len(offsets) == 0 {
		return nil, nil
	}
	sort.Ints(offsets)

	lines := make([]string, 0, len(offsets))
	lastStart := -1
	for _, off := range offsets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start, end := corpus.LineBounds(m.sa.text, off)
		if start == lastStart {
			continue
		}
		lastStart = start
		lines = append(lines, m.sa.text[start:end])
	}
	return lines, nil
}

type foldMatcher struct{ sa *SuffixArray }

// Search returns every non-overlapping match with up to contextBytes either side.
//
// A (?i) pattern has no literal prefix, so the index cannot narrow the search and
// FindAllIndex would scan the whole text in one call. The scan is done match by
// match instead so it stops when ctx is done.
func (m foldMatcher) Search(ctx context.Context, query string) ([]string, error) {
	if query == "" {
		return nil, nil
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %w", domain.ErrMatcherFailed, query, err)
	}

	text := m.sa.text
	var snippets []string
	for off := 0; off < len(text); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loc := re.FindStringIndex(text[off:])
		if loc == nil {
			break
		}
		start, end := off+loc[0], off+loc[1]
		snippets = append(snippets, m.sa.window(start, end))
		off = end
	}
	return snippets, nil
}

// window returns text[start-contextBytes : end+contextBytes], clamped to the text and
// to rune boundaries.
func (sa *SuffixArray) window(start, end int) string {
	lo := max(start-contextBytes, 0)
	hi := min(end+contextBytes, len(sa.text))
	for lo < start && !utf8.RuneStart(sa.text[lo]) {
		lo++
	}
	for hi > end && hi < len(sa.text) && !utf8.RuneStart(sa.text[hi]) {
		hi--
	}
	return sa.text[lo:hi]
}
