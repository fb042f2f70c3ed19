package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/shakesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/shakesearch/internal/domain/search/request"
	"github.com/kailas-cloud/shakesearch/internal/metrics"
)

type fakeMatcher struct {
	lines []string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeMatcher) Search(ctx context.Context, _ string) ([]string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.lines, f.err
}

// blockingMatcher waits for cancellation and closes cancelled when it sees it.
type blockingMatcher struct {
	cancelled chan struct{}
}

func newBlockingMatcher() *blockingMatcher {
	return &blockingMatcher{cancelled: make(chan struct{})}
}

func (b *blockingMatcher) Search(ctx context.Context, _ string) ([]string, error) {
	<-ctx.Done()
	close(b.cancelled)
	return nil, ctx.Err()
}

// stubbornMatcher ignores ctx and returns only when release is closed.
type stubbornMatcher struct {
	lines   []string
	release chan struct{}
}

func (m *stubbornMatcher) Search(context.Context, string) ([]string, error) {
	<-m.release
	return m.lines, nil
}

func mustRequest(t *testing.T, q string) request.Request {
	t.Helper()
	req, err := request.New(q)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func named(m mode.Mode, mt Matcher) NamedMatcher {
	return NamedMatcher{Mode: m, Matcher: mt}
}

func TestSearch_FirstNonEmptyByPriority(t *testing.T) {
	svc := New([]NamedMatcher{
		named(mode.Text, &fakeMatcher{}),
		named(mode.Suffix, &fakeMatcher{lines: []string{"x"}}),
		named(mode.Fuzzy, &fakeMatcher{lines: []string{"y"}}),
	}, nil)

	got, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "x" {
		t.Errorf("got %v, want [x]", got)
	}
}

func TestSearch_PriorityBeatsSpeed(t *testing.T) {
	svc := New([]NamedMatcher{
		named(mode.Text, &fakeMatcher{lines: []string{"slow"}, delay: 30 * time.Millisecond}),
		named(mode.Fuzzy, &fakeMatcher{lines: []string{"fast"}}),
	}, nil)

	got, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "slow" {
		t.Errorf("got %v, want [slow]", got)
	}
}

func TestSearch_CancelsLowerPriority(t *testing.T) {
	blocked := newBlockingMatcher()
	svc := New([]NamedMatcher{
		named(mode.Text, &fakeMatcher{lines: []string{"hit"}}),
		named(mode.Bleve, blocked),
	}, nil).WithTimeout(5 * time.Second)

	start := time.Now()
	got, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "hit" {
		t.Errorf("got %v, want [hit]", got)
	}
	if time.Since(start) > time.Second {
		t.Error("search waited for the timeout instead of cancelling")
	}
	select {
	case <-blocked.cancelled:
	case <-time.After(time.Second):
		t.Error("expected lower priority matcher to be cancelled")
	}
}

func TestSearch_FirstDoesNotWaitForSlowerMatchers(t *testing.T) {
	slow := &stubbornMatcher{lines: []string{"late"}, release: make(chan struct{})}
	defer close(slow.release)

	svc := New([]NamedMatcher{
		named(mode.Text, &fakeMatcher{lines: []string{"hit"}}),
		named(mode.Fuzzy, slow),
	}, nil).WithTimeout(5 * time.Second)

	start := time.Now()
	got, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "hit" {
		t.Errorf("got %v, want [hit]", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("search took %v, waited for a lower priority matcher", elapsed)
	}
}

func TestSearch_TimeoutWithMatcherIgnoringContext(t *testing.T) {
	slow := &stubbornMatcher{lines: []string{"late"}, release: make(chan struct{})}
	defer close(slow.release)

	svc := New([]NamedMatcher{
		named(mode.Text, slow),
		named(mode.Fuzzy, &fakeMatcher{lines: []string{"lower"}}),
	}, nil).WithTimeout(50 * time.Millisecond)

	start := time.Now()
	got, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v (result %v)", err, got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("search took %v, deadline was 50ms", elapsed)
	}
}

func TestSearch_FuseTimeoutWithMatcherIgnoringContext(t *testing.T) {
	slow := &stubbornMatcher{lines: []string{"late"}, release: make(chan struct{})}
	defer close(slow.release)

	svc := New([]NamedMatcher{
		named(mode.Text, &fakeMatcher{lines: []string{"a"}}),
		named(mode.Fuzzy, slow),
	}, nil).WithStrategy(StrategyFuse).WithTimeout(50 * time.Millisecond)

	_, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if !IsTimeout(err) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestSearch_FailingMatcherIsEmpty(t *testing.T) {
	before := testutil.ToFloat64(metrics.MatcherErrorsTotal.WithLabelValues(string(mode.Text)))

	svc := New([]NamedMatcher{
		named(mode.Text, &fakeMatcher{err: errors.New("boom")}),
		named(mode.Suffix, &fakeMatcher{lines: []string{"fallback"}}),
	}, nil)

	got, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "fallback" {
		t.Errorf("got %v, want [fallback]", got)
	}

	after := testutil.ToFloat64(metrics.MatcherErrorsTotal.WithLabelValues(string(mode.Text)))
	if after-before != 1 {
		t.Errorf("expected one matcher error, got %v", after-before)
	}
}

func TestSearch_NothingMatched(t *testing.T) {
	before := testutil.ToFloat64(metrics.SearchResultsTotal.WithLabelValues(noMatcher))

	svc := New([]NamedMatcher{
		named(mode.Text, &fakeMatcher{}),
		named(mode.Fuzzy, &fakeMatcher{lines: []string{}}),
	}, nil)

	got, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("result must not be nil")
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}

	after := testutil.ToFloat64(metrics.SearchResultsTotal.WithLabelValues(noMatcher))
	if after-before != 1 {
		t.Errorf("expected %q counter to increase by 1, got %v", noMatcher, after-before)
	}
}

func TestSearch_NoMatchers(t *testing.T) {
	got, err := New(nil, nil).Search(context.Background(), mustRequest(t, "q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty set", got)
	}
}

func TestSearch_MaxResults(t *testing.T) {
	svc := New([]NamedMatcher{
		named(mode.Text, &fakeMatcher{lines: []string{"a", "b", "c", "d"}}),
	}, nil).WithMaxResults(2)

	got, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestSearch_Timeout(t *testing.T) {
	svc := New([]NamedMatcher{
		named(mode.Text, newBlockingMatcher()),
	}, nil).WithTimeout(20 * time.Millisecond)

	_, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTimeout(err) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestSearch_FuseStrategy(t *testing.T) {
	svc := New([]NamedMatcher{
		named(mode.Text, &fakeMatcher{lines: []string{"a", "b"}}),
		named(mode.Fuzzy, &fakeMatcher{lines: []string{"b", "c"}}),
	}, nil).WithStrategy(StrategyFuse)

	got, err := svc.Search(context.Background(), mustRequest(t, "q"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWithStrategy_IgnoresUnknown(t *testing.T) {
	svc := New(nil, nil).WithStrategy("all")
	if svc.strategy != StrategyFirst {
		t.Errorf("strategy = %q, want %q", svc.strategy, StrategyFirst)
	}
}
