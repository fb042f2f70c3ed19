package searchui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/shakesearch/internal/logger"
	"github.com/kailas-cloud/shakesearch/internal/metrics"
)

// maxResponseBytes bounds how much of a /search response is read.
const maxResponseBytes = 32 << 20

// Render outcomes, used as the metrics label.
const (
	OutcomeResults = "results"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
	OutcomeStale   = "stale"
)

var errNotArray = errors.New("response is not an array of strings")

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Controller issues search requests against a backend. Safe for concurrent use.
type Controller struct {
	client Doer
	base   *url.URL
	logger *zap.Logger
}

// NewController creates a controller for the backend at baseURL.
func NewController(baseURL string, client Doer, logger *zap.Logger) (*Controller, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url must be absolute, got %q", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{client: client, base: base, logger: logger}, nil
}

// Search sends one request for the form's query and returns the result lines.
// Every failure yields an empty, non-nil slice.
func (c *Controller) Search(ctx context.Context, form url.Values) []string {
	lines, _ := c.fetch(ctx, form)
	return lines
}

func (c *Controller) fetch(ctx context.Context, form url.Values) ([]string, error) {
	log := logpkg.FromContextOr(ctx, c.logger)

	lines, err := c.do(ctx, form)
	if err != nil {
		log.Warn("search request failed",
			zap.String("query", form.Get(QueryField)),
			zap.Error(err),
		)
		return []string{}, err
	}
	return lines, nil
}

func (c *Controller) do(ctx context.Context, form url.Values) ([]string, error) {
	target, err := c.resolve(BuildQuery(form))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return decodeLines(body)
}

// resolve joins target onto the backend URL, keeping any base path prefix.
func (c *Controller) resolve(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse request target: %w", err)
	}
	u := c.base.JoinPath(ref.Path)
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	u.RawQuery = ref.RawQuery
	return u.String(), nil
}

// decodeLines parses a /search body. null and an empty body mean no results.
func decodeLines(body []byte) ([]string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []string{}, nil
	}

	var lines []string
	if err := json.Unmarshal(body, &lines); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %w", errNotArray, err)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if lines == nil {
		return []string{}, nil
	}
	return lines, nil
}

// Bind attaches the controller to a document.
func (c *Controller) Bind(doc Document) *Session {
	return &Session{controller: c, doc: doc}
}

// Session is a controller bound to one document. Submissions may run
// concurrently; only the most recently issued one is rendered.
type Session struct {
	controller *Controller
	doc        Document

	seq atomic.Uint64
	mu  sync.Mutex
}

// Submit runs one search for form and renders it unless a newer submission
// was issued meanwhile. It returns the render outcome.
func (s *Session) Submit(ctx context.Context, form url.Values) string {
	seq := s.seq.Add(1)

	lines, err := s.controller.fetch(ctx, form)

	outcome := OutcomeResults
	switch {
	case err != nil:
		outcome = OutcomeFailed
	case len(lines) == 0:
		outcome = OutcomeEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq.Load() {
		metrics.RendersTotal.WithLabelValues(OutcomeStale).Inc()
		return OutcomeStale
	}

	Render(s.doc, lines)
	metrics.RendersTotal.WithLabelValues(outcome).Inc()
	return outcome
}
