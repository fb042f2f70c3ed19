package rescache

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/shakesearch/internal/db"
	"github.com/kailas-cloud/shakesearch/internal/domain/search/request"
	"github.com/kailas-cloud/shakesearch/internal/domain/search/result"
	"go.uber.org/zap"
)

type mockSearcher struct {
	result result.Set
	err    error
	calls  int
}

func (m *mockSearcher) Search(_ context.Context, _ request.Request) (result.Set, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedSearcher(t *testing.T, inner *mockSearcher) (*CachedSearcher, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cs := New(inner, ms, time.Minute, nil, zap.NewNop())
	return cs, ms
}

func mustRequest(t *testing.T, q string) request.Request {
	t.Helper()
	req, err := request.New(q)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}
