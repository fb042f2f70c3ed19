package searchui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HandlerDoer is a Doer that serves requests with an in-process handler. A server
// rendering its own page uses it to reach its search API without a loopback
// connection, so one page view produces one request log line and one HTTP metric.
type HandlerDoer struct {
	Handler http.Handler
	// Timeout bounds each request. 0 means no bound beyond the request context.
	Timeout time.Duration
}

// Do runs req through the handler and returns the buffered response.
func (d HandlerDoer) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := &bufferedResponse{header: make(http.Header), status: http.StatusOK}
	d.Handler.ServeHTTP(rec, req)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("serve %s: %w", req.URL.Path, err)
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", rec.status, http.StatusText(rec.status)),
		StatusCode:    rec.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        rec.header,
		Body:          io.NopCloser(&rec.body),
		ContentLength: int64(rec.body.Len()),
		Request:       req,
	}, nil
}

type bufferedResponse struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(code int) {
	if b.wroteHeader {
		return
	}
	b.status = code
	b.wroteHeader = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.WriteHeader(http.StatusOK)
	return b.body.Write(p)
}
