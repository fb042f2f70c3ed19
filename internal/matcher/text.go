package matcher

import (
	"context"

	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/kailas-cloud/shakesearch/internal/corpus"
)

// TextMatcher matches with Unicode collation rules: case-insensitive and
// tolerant of canonical equivalents.
type TextMatcher struct {
	tag  language.Tag
	text string
}

// NewText creates a TextMatcher using American English collation.
func NewText(c *corpus.Corpus) *TextMatcher {
	return &TextMatcher{tag: language.AmericanEnglish, text: c.Text()}
}

// Search returns each line containing the query once, in corpus order.
func (m *TextMatcher) Search(ctx context.Context, query string) ([]string, error) {
	// search.Matcher keeps scratch state; one per call keeps Search safe for concurrent use.
	pattern := search.New(m.tag, search.IgnoreCase).CompileString(query)

	var lines []string
	for off := 0; off < len(m.text); {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start, _ := pattern.IndexString(m.text[off:])
		if start == -1 {
			break
		}
		ls, le := corpus.LineBounds(m.text, off+start)
		lines = append(lines, m.text[ls:le])
		off = le + 1
	}
	return lines, nil
}
