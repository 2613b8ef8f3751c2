package webdav

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/mwantia/vfs/backend"
	vlog "github.com/mwantia/vfs/log"
)

// NewRouter wraps a Handler for b in request-ID tagging, structured
// request logging, and panic recovery, grounded on the chi router +
// middleware stack seen elsewhere in the retrieved corpus.
func NewRouter(b backend.Backend, logger *vlog.Logger) http.Handler {
	if logger != nil {
		logger = logger.Named("webdav")
	}
	h := &Handler{Backend: b, Logger: logger}

	// A chi.Mux answers methods it does not know (PROPFIND, MKCOL, LOCK, ...)
	// with its own 405 before any handler runs, so the middleware is chained
	// directly around h and Handler.ServeHTTP sees every method.
	return chi.Chain(
		requestIDMiddleware(logger),
		loggingMiddleware(logger),
		middleware.Recoverer,
	).Handler(h)
}

func requestIDMiddleware(logger *vlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			w.Header().Set("X-Request-Id", id)
			if logger != nil {
				logger.Debug("assigned request id %s for %s %s", id, r.Method, r.URL.Path)
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *vlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			if logger != nil {
				logger.Info("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
			}
		})
	}
}
