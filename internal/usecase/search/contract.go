package search

import (
	"context"

	"github.com/kailas-cloud/shakesearch/internal/domain/search/mode"
)

// Matcher finds corpus lines for a query.
type Matcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// NamedMatcher pairs a matcher with the mode it implements. Slice order is priority order.
type NamedMatcher struct {
	Mode    mode.Mode
	Matcher Matcher
}

// Strategy decides how per-matcher results become one result set.
type Strategy string

const (
	// StrategyFirst serves the first non-empty result in priority order.
	StrategyFirst Strategy = "first"
	// StrategyFuse merges every matcher's ranking with Reciprocal Rank Fusion.
	StrategyFuse Strategy = "fuse"
)

// IsValid checks if the strategy is supported.
func (s Strategy) IsValid() bool {
	return s == StrategyFirst || s == StrategyFuse
}
