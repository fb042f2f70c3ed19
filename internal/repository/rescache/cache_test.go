package rescache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shakesearch/internal/db"
	"github.com/kailas-cloud/shakesearch/internal/domain/search/result"
)

func TestSearch_CacheMiss(t *testing.T) {
	inner := &mockSearcher{result: result.Set{"To be, or not to be"}}
	cs, ms := newTestCachedSearcher(t, inner)

	var (
		setKey   string
		setValue []byte
		setTTL   time.Duration
	)
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		setKey, setValue, setTTL = key, value, ttl
		return nil
	}

	got, err := cs.Search(context.Background(), mustRequest(t, "be"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "To be, or not to be" {
		t.Fatalf("unexpected result: %v", got)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if !strings.HasPrefix(setKey, cacheKeyPrefix) {
		t.Errorf("key %q missing prefix %q", setKey, cacheKeyPrefix)
	}
	if string(setValue) != `["To be, or not to be"]` {
		t.Errorf("unexpected cached value: %s", setValue)
	}
	if setTTL != time.Minute {
		t.Errorf("expected ttl 1m, got %v", setTTL)
	}
}

func TestSearch_CacheHit(t *testing.T) {
	inner := &mockSearcher{result: result.Set{"fresh"}}
	cs, ms := newTestCachedSearcher(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`["cached"]`), nil
	}

	got, err := cs.Search(context.Background(), mustRequest(t, "be"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "cached" {
		t.Fatalf("expected cached result, got %v", got)
	}
	if inner.calls != 0 {
		t.Errorf("inner searcher called on cache hit")
	}
}

func TestSearch_CachedEmptySet(t *testing.T) {
	inner := &mockSearcher{}
	cs, ms := newTestCachedSearcher(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`[]`), nil
	}

	got, err := cs.Search(context.Background(), mustRequest(t, "zzz"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil set, got %#v", got)
	}
	if inner.calls != 0 {
		t.Errorf("inner searcher called on cache hit")
	}
}

func TestSearch_InnerError(t *testing.T) {
	inner := &mockSearcher{err: errors.New("timeout")}
	cs, ms := newTestCachedSearcher(t, inner)

	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		setCalled = true
		return nil
	}

	_, err := cs.Search(context.Background(), mustRequest(t, "be"))
	if err == nil {
		t.Fatal("expected error")
	}
	if setCalled {
		t.Error("errors must not be cached")
	}
}

func TestSearch_StoreErrorsIgnored(t *testing.T) {
	inner := &mockSearcher{result: result.Set{"line"}}
	cs, ms := newTestCachedSearcher(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("connection refused")}
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("connection refused")
	}

	got, err := cs.Search(context.Background(), mustRequest(t, "be"))
	if err != nil {
		t.Fatalf("cache failure must not fail search: %v", err)
	}
	if len(got) != 1 || got[0] != "line" {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestSearch_CorruptEntry(t *testing.T) {
	inner := &mockSearcher{result: result.Set{"line"}}
	cs, ms := newTestCachedSearcher(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`{"not":"an array"}`), nil
	}

	got, err := cs.Search(context.Background(), mustRequest(t, "be"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(got) != 1 {
		t.Errorf("expected fallback to inner searcher, got %v (calls=%d)", got, inner.calls)
	}
}

func TestCacheKey_Scope(t *testing.T) {
	a := New(&mockSearcher{}, &mockKVStore{}, 0, nil, nil).WithScope("first:text")
	b := New(&mockSearcher{}, &mockKVStore{}, 0, nil, nil).WithScope("fuse:text,bleve")

	if a.cacheKey("be") == b.cacheKey("be") {
		t.Error("different scopes must produce different keys")
	}
	if a.cacheKey("be") != a.cacheKey("be") {
		t.Error("cache key must be deterministic")
	}
	if a.cacheKey("be") == a.cacheKey("Be") {
		t.Error("queries are case sensitive")
	}
}

func TestSearch_CacheMetrics(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_result_cache_total",
	}, []string{"result"})

	ms := &mockKVStore{}
	cs := New(&mockSearcher{result: result.Set{"x"}}, ms, time.Minute, counter, zap.NewNop())

	if _, err := cs.Search(context.Background(), mustRequest(t, "x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`["x"]`), nil
	}
	if _, err := cs.Search(context.Background(), mustRequest(t, "x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("miss = %v, want 1", v)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 1 {
		t.Errorf("hit = %v, want 1", v)
	}
}
