package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/shakesearch/internal/domain"
	"github.com/kailas-cloud/shakesearch/internal/domain/search/request"
	"github.com/kailas-cloud/shakesearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/shakesearch/internal/logger"
	"github.com/kailas-cloud/shakesearch/internal/metrics"
)

// noMatcher labels searches where nothing matched.
const noMatcher = "none"

// Service runs every configured matcher concurrently and combines their results.
type Service struct {
	matchers   []NamedMatcher
	strategy   Strategy
	maxResults int
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates a search service. matchers are in priority order.
func New(matchers []NamedMatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		matchers: matchers,
		strategy: StrategyFirst,
		logger:   logger,
	}
}

// WithStrategy sets how results are combined (default StrategyFirst).
func (s *Service) WithStrategy(strategy Strategy) *Service {
	if strategy.IsValid() {
		s.strategy = strategy
	}
	return s
}

// WithMaxResults caps the number of returned lines. 0 disables the cap.
func (s *Service) WithMaxResults(n int) *Service {
	if n >= 0 {
		s.maxResults = n
	}
	return s
}

// WithTimeout bounds a whole search. 0 disables the bound.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d >= 0 {
		s.timeout = d
	}
	return s
}

// Search returns the lines matching req. The result is never nil.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Set, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rankings, err := s.runAll(ctx, req.Query())
	if err != nil {
		return nil, err
	}

	var lines []string
	winner := noMatcher
	switch s.strategy {
	case StrategyFuse:
		lines = fuseRRF(rankings, s.maxResults)
		if len(lines) > 0 {
			winner = string(StrategyFuse)
		}
	default:
		for i, r := range rankings {
			if len(r) > 0 {
				lines = r
				winner = string(s.matchers[i].Mode)
				break
			}
		}
	}
	metrics.SearchResultsTotal.WithLabelValues(winner).Inc()

	return result.Set(lines).Truncate(s.maxResults).OrEmpty(), nil
}

// runAll searches with every matcher and returns once the rankings the strategy needs
// are known or ctx is done, whichever comes first. With StrategyFirst that is the highest
// priority non-empty result; with StrategyFuse it is every result. Matchers still running
// are cancelled and drain in the background; their late results are dropped.
func (s *Service) runAll(ctx context.Context, query string) ([][]string, error) {
	log := logpkg.FromContextOr(ctx, s.logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		rankings = make([][]string, len(s.matchers))
		done     = make([]bool, len(s.matchers))
		ready    = make(chan struct{})
		once     sync.Once
	)
	markReady := func() { once.Do(func() { close(ready) }) }

	g, gctx := errgroup.WithContext(runCtx)
	for i, nm := range s.matchers {
		g.Go(func() error {
			start := time.Now()
			lines, err := nm.Matcher.Search(gctx, query)
			metrics.MatcherDuration.WithLabelValues(string(nm.Mode)).Observe(time.Since(start).Seconds())

			if err != nil {
				if gctx.Err() == nil {
					metrics.MatcherErrorsTotal.WithLabelValues(string(nm.Mode)).Inc()
					log.Warn("matcher failed",
						zap.String("matcher", string(nm.Mode)),
						zap.Error(err),
					)
				}
				lines = nil
			}

			mu.Lock()
			defer mu.Unlock()
			rankings[i] = lines
			done[i] = true
			if s.decided(rankings, done) {
				markReady()
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		markReady()
	}()

	select {
	case <-ready:
	case <-ctx.Done():
	}
	// Matchers that honor ctx finish empty at the deadline; that is a timeout, not a miss.
	if err := ctx.Err(); err != nil {
		return nil, searchCtxErr(query, err)
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([][]string, len(rankings))
	copy(out, rankings)
	return out, nil
}

func (s *Service) decided(rankings [][]string, done []bool) bool {
	if s.strategy == StrategyFuse {
		for _, d := range done {
			if !d {
				return false
			}
		}
		return true
	}
	return firstDecided(rankings, done)
}

func searchCtxErr(query string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("search %q: %w: %w", query, domain.ErrSearchTimeout, err)
	}
	return fmt.Errorf("search %q: %w", query, err)
}

// firstDecided reports whether the first non-empty ranking in priority order is known:
// every higher priority matcher has finished empty.
func firstDecided(rankings [][]string, done []bool) bool {
	for i := range rankings {
		if !done[i] {
			return false
		}
		if len(rankings[i]) > 0 {
			return true
		}
	}
	return true
}

// IsTimeout reports whether err came from the search deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, domain.ErrSearchTimeout)
}
