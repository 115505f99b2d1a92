// Package trace tags each request with an id and logs its completion.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	applog "fintrack/internal/log"
)

type ctxKey struct{}

// HeaderRequestID is echoed on every response.
const HeaderRequestID = "X-Request-ID"

// Metrics are the request counters exposed on /metrics.
type Metrics struct {
	TotalRequests int64
	ClientErrors  int64
	ServerErrors  int64
	// LastDurationMicros is the duration of the most recent request.
	LastDurationMicros int64
}

type Middleware struct {
	logger    *applog.Logger
	structLog *applog.StructuredLogger
	extractIP func(*http.Request) string

	total, clientErrs, serverErrs, lastDur atomic.Int64
}

func NewMiddleware(logger *applog.Logger, extractIP func(*http.Request) string) *Middleware {
	return &Middleware{
		logger:    logger,
		structLog: applog.NewStructuredLogger(logger),
		extractIP: extractIP,
	}
}

// Handler assigns the request id, stores a request scoped logger in the
// context and logs the outcome once the handler returns.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = GenerateRequestID()
		}
		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		ctx = applog.NewContext(ctx, m.logger.With(applog.FieldRequestID, id))
		w.Header().Set(HeaderRequestID, id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		m.total.Add(1)
		m.lastDur.Store(dur.Microseconds())
		switch {
		case status >= 500:
			m.serverErrs.Add(1)
		case status >= 400:
			m.clientErrs.Add(1)
		}
		m.structLog.LogHTTPEnd(ctx, r, id, status, dur.Milliseconds(), clientIP)
	})
}

// GenerateRequestID returns a random id, or a timestamp based one if the
// random source fails.
func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// RequestID returns the id assigned by Handler, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

func (m *Middleware) Metrics() Metrics {
	return Metrics{
		TotalRequests:      m.total.Load(),
		ClientErrors:       m.clientErrs.Load(),
		ServerErrors:       m.serverErrs.Load(),
		LastDurationMicros: m.lastDur.Load(),
	}
}
