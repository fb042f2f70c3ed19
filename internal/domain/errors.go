package domain

import "errors"

var (
	// ErrEmptyQuery signals a search without query text.
	ErrEmptyQuery = errors.New("missing search query in URL params")
	// ErrQueryTooLong signals a query above request.MaxQueryLength.
	ErrQueryTooLong = errors.New("query too long")
	// ErrSearchTimeout signals that no matcher answered before the search deadline.
	ErrSearchTimeout = errors.New("search timed out")
	// ErrEmptyCorpus signals a corpus with no searchable lines.
	ErrEmptyCorpus = errors.New("corpus is empty")
	// ErrUnknownMatcher signals a matcher name that is not registered.
	ErrUnknownMatcher = errors.New("unknown matcher")
	// ErrMatcherFailed signals that a matcher could not complete a search.
	ErrMatcherFailed = errors.New("matcher failed")
)
