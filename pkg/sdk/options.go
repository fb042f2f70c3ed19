package shakesearch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithHTTPClient sets the HTTP client used for requests.
// Defaults to a client with a 10s timeout.
func WithHTTPClient(c *http.Client) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.httpClient = c
	})
}

// WithTimeout sets the per-request timeout of the default HTTP client.
// Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.timeout = d
	})
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.userAgent = ua
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.metricsReg = reg
	})
}
