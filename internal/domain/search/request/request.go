package request

import (
	"fmt"

	"github.com/kailas-cloud/shakesearch/internal/domain"
)

// MaxQueryLength is the maximum allowed search query length in bytes.
const MaxQueryLength = 4096

// Request is a validated search query.
type Request struct {
	query string
}

// New validates the raw query. The text is kept verbatim: no trimming or case folding,
// matchers decide how to compare.
func New(query string) (Request, error) {
	if query == "" {
		return Request{}, domain.ErrEmptyQuery
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w (max %d bytes)", domain.ErrQueryTooLong, MaxQueryLength)
	}
	return Request{query: query}, nil
}

// Query returns the query text.
func (r Request) Query() string { return r.query }
