// Package matcher implements the line matching strategies searched by the search service.
package matcher

import (
	"context"
	"fmt"
	"io"

	"github.com/kailas-cloud/shakesearch/internal/corpus"
	"github.com/kailas-cloud/shakesearch/internal/domain"
	"github.com/kailas-cloud/shakesearch/internal/domain/search/mode"
)

// Matcher finds corpus lines for a query.
type Matcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Named pairs a matcher with the mode it implements.
type Named struct {
	Mode    mode.Mode
	Matcher Matcher
}

// Build creates one matcher per mode, in the given order. The suffix array is built once
// and shared by the suffix modes. limit caps the hits a bleve query asks for.
func Build(c *corpus.Corpus, modes []mode.Mode, limit int) ([]Named, error) {
	var sa *SuffixArray
	suffixArray := func() *SuffixArray {
		if sa == nil {
			sa = NewSuffixArray(c)
		}
		return sa
	}

	out := make([]Named, 0, len(modes))
	for _, m := range modes {
		var mt Matcher
		switch m {
		case mode.Text:
			mt = NewText(c)
		case mode.Suffix:
			mt = suffixArray().Exact()
		case mode.SuffixFold:
			mt = suffixArray().Fold()
		case mode.Fuzzy:
			mt = NewFuzzy(c)
		case mode.Bleve:
			b, err := NewBleve(c, limit)
			if err != nil {
				CloseAll(out)
				return nil, fmt.Errorf("build bleve matcher: %w", err)
			}
			mt = b
		default:
			CloseAll(out)
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMatcher, m)
		}
		out = append(out, Named{Mode: m, Matcher: mt})
	}
	return out, nil
}

// CloseAll releases matchers holding resources (bleve indexes).
func CloseAll(ms []Named) {
	for _, n := range ms {
		if c, ok := n.Matcher.(io.Closer); ok {
			_ = c.Close()
		}
	}
}
