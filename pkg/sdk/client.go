package shakesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 32 << 20
)

// Client is the shakesearch SDK entry point. Safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	obs       *observer
}

// New creates a client for the server at baseURL, e.g. "http://localhost:3001".
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("shakesearch: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("shakesearch: base url must be absolute, got %q", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		base:      base,
		http:      hc,
		userAgent: cfg.userAgent,
		obs:       obs,
	}, nil
}

// Search returns the corpus lines matching query. No match yields an empty, non-nil slice.
func (c *Client) Search(ctx context.Context, query string) (lines []string, err error) {
	start := time.Now()
	defer func() { c.obs.search(query, start, lines, err) }()

	if query == "" {
		return nil, ErrEmptyQuery
	}

	body, err := c.get(ctx, "/search", url.Values{"q": {query}}, http.StatusOK)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return []string{}, nil
	}
	if err := json.Unmarshal(body, &lines); err != nil {
		return nil, fmt.Errorf("shakesearch: decode search response: %w", err)
	}
	if lines == nil {
		lines = []string{}
	}
	return lines, nil
}

// HealthStatus represents the aggregated server health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}

// Health fetches the server health report. A degraded server is not an error.
func (c *Client) Health(ctx context.Context) (hs HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.health(start, hs, err) }()

	body, err := c.get(ctx, "/health", nil, http.StatusOK, http.StatusServiceUnavailable)
	if err != nil {
		return HealthStatus{}, err
	}
	if err := json.Unmarshal(body, &hs); err != nil {
		return HealthStatus{}, fmt.Errorf("shakesearch: decode health response: %w", err)
	}
	return hs, nil
}

// get issues a GET and returns the body when the status is one of accept.
func (c *Client) get(ctx context.Context, path string, query url.Values, accept ...int) ([]byte, error) {
	u := c.base.JoinPath(path)
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("shakesearch: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shakesearch: %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("shakesearch: read %s response: %w", path, err)
	}

	for _, s := range accept {
		if resp.StatusCode == s {
			return body, nil
		}
	}
	return nil, statusError(resp.StatusCode, body)
}

func statusError(status int, body []byte) error {
	se := &StatusError{StatusCode: status}
	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil {
		se.Code = apiErr.Code
		se.Message = apiErr.Message
	}
	return se
}
