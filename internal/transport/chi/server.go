package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shakesearch/internal/domain"
	"github.com/kailas-cloud/shakesearch/internal/domain/search/request"
	"github.com/kailas-cloud/shakesearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/shakesearch/internal/logger"
	"github.com/kailas-cloud/shakesearch/internal/searchui"
	gen "github.com/kailas-cloud/shakesearch/internal/transport/generated"
	healthuc "github.com/kailas-cloud/shakesearch/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Searcher runs a line search. Implemented by the search service and its cache.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (result.Set, error)
}

// Server implements generated.ServerInterface for the oapi-codegen chi router.
type Server struct {
	gen.Unimplemented
	search        Searcher
	health        *healthuc.Service
	ui            *searchui.Controller
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ gen.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	health *healthuc.Service,
	ui *searchui.Controller,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		health: health,
		ui:     ui,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrQueryTooLong, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrSearchTimeout, http.StatusGatewayTimeout, gen.ErrorResponseCodeTimeout),
	}
	return s
}

// SearchLines handles GET /search.
func (s *Server) SearchLines(w http.ResponseWriter, r *http.Request, params gen.SearchLinesParams) {
	var q string
	if params.Q != nil {
		q = *params.Q
	}

	req, err := request.New(q)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	res, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, gen.SearchResponse(res.OrEmpty()))
}

// RenderPage handles GET /. With a query it searches through the page
// controller and renders the results state.
func (s *Server) RenderPage(w http.ResponseWriter, r *http.Request, params gen.RenderPageParams) {
	var q string
	if params.Query != nil {
		q = *params.Query
	}

	page := searchui.NewPage(q)
	if q != "" && s.ui != nil {
		s.ui.Bind(page).Submit(r.Context(), url.Values{searchui.QueryField: {q}})
	}

	var buf bytes.Buffer
	if err := page.WriteHTML(&buf); err != nil {
		logpkg.FromContextOr(r.Context(), s.logger).Error("render page", zap.Error(err))
		writeError(w, http.StatusInternalServerError, gen.ErrorResponseCodeInternalError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]gen.HealthResponseChecks)
	for k, v := range report.Checks {
		checks[k] = gen.HealthResponseChecks(v)
	}

	status := gen.HealthResponseStatus(report.Status)
	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, gen.HealthResponse{
		Status: status,
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ParamErrorHandler answers parameter binding failures with a JSON bad_request.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, gen.ErrorResponseCodeBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code gen.ErrorResponseCode, message string) {
	writeJSON(w, status, gen.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrQueryTooLong,
		domain.ErrSearchTimeout,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code gen.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logpkg.FromContextOr(ctx, s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, gen.ErrorResponseCodeInternalError, "internal error")
}
