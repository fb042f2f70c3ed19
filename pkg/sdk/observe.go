package shakesearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for SDK metrics. API failures are labelled with the server's
// error code instead ("bad_request", "timeout", "internal_error").
const (
	outcomeOK        = "ok"
	outcomeEmpty     = "empty"
	outcomeDegraded  = "degraded"
	outcomeCanceled  = "canceled"
	outcomeHTTPError = "http_error"
	outcomeError     = "error"
)

type sdkMetrics struct {
	searches    *prometheus.CounterVec
	searchTime  prometheus.Histogram
	resultLines prometheus.Histogram
	health      *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shakesearch",
			Subsystem: "sdk",
			Name:      "searches_total",
			Help:      "Searches issued by the SDK, by outcome or API error code.",
		}, []string{"outcome"}),
		searchTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shakesearch",
			Subsystem: "sdk",
			Name:      "search_duration_seconds",
			Help:      "Search round trip time in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		resultLines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shakesearch",
			Subsystem: "sdk",
			Name:      "search_result_lines",
			Help:      "Lines returned per successful search.",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
		health: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shakesearch",
			Subsystem: "sdk",
			Name:      "health_checks_total",
			Help:      "Health checks issued by the SDK, by reported status or failure.",
		}, []string{"outcome"}),
	}
	if err := registerOrReuse(reg, &m.searches); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.searchTime); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.resultLines); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.health); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or points it at the collector already registered
// under the same name so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("shakesearch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("shakesearch: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer logs and counts SDK calls. A nil observer, or one without a logger or
// registry, skips the missing part.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) search(query string, start time.Time, lines []string, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	outcome := searchOutcome(lines, err)

	if o.metrics != nil {
		o.metrics.searches.WithLabelValues(outcome).Inc()
		o.metrics.searchTime.Observe(dur.Seconds())
		if err == nil {
			o.metrics.resultLines.Observe(float64(len(lines)))
		}
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("search failed",
			"query_len", len(query),
			"outcome", outcome,
			"duration", dur,
			"error", err,
		)
		return
	}
	o.logger.Debug("search completed",
		"query_len", len(query),
		"lines", len(lines),
		"duration", dur,
	)
}

func (o *observer) health(start time.Time, hs HealthStatus, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	outcome := hs.Status
	if err != nil {
		outcome = errorOutcome(err)
	}

	if o.metrics != nil {
		o.metrics.health.WithLabelValues(outcome).Inc()
	}

	if o.logger == nil {
		return
	}
	switch {
	case err != nil:
		o.logger.Warn("health check failed", "outcome", outcome, "duration", dur, "error", err)
	case hs.Status == outcomeDegraded:
		o.logger.Warn("server degraded", "checks", hs.Checks, "duration", dur)
	default:
		o.logger.Debug("health check completed", "status", hs.Status, "duration", dur)
	}
}

func searchOutcome(lines []string, err error) string {
	if err != nil {
		return errorOutcome(err)
	}
	if len(lines) == 0 {
		return outcomeEmpty
	}
	return outcomeOK
}

// errorOutcome maps err to a low-cardinality label.
func errorOutcome(err error) string {
	var se *StatusError
	switch {
	case errors.As(err, &se) && se.Code != "":
		return se.Code
	case se != nil:
		return outcomeHTTPError
	case errors.Is(err, ErrEmptyQuery):
		return "bad_request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	default:
		return outcomeError
	}
}
