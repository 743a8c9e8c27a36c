package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sternrassler/bookreview/pkg/metrics"
	"github.com/Sternrassler/bookreview/pkg/review"
)

const requestIDHeader = "X-Request-Id"

type contextKey string

const requestIDKey contextKey = "requestID"

// handlerFunc is a business handler. A returned error is turned into the
// response by instrument.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func recorderFor(w http.ResponseWriter) *statusRecorder {
	if rw, ok := w.(*statusRecorder); ok {
		return rw
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// instrument times h under route and maps its outcome to a response. The
// duration is recorded with the final status code whether h succeeds,
// returns an error or panics. Faults end here; they are logged, not re-raised.
func (s *Server) instrument(route string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := recorderFor(w)

		defer func() {
			if p := recover(); p != nil {
				s.logger.Error().
					Str("route", route).
					Str("request_id", RequestIDFrom(r)).
					Str("stack", string(debug.Stack())).
					Msgf("panic: %v", p)
				if !rw.wroteHeader {
					writeError(rw, http.StatusInternalServerError, fmt.Sprint(p))
				}
			}
			metrics.ObserveRequest(r.Method, route, rw.status, time.Since(start))
		}()

		if err := h(rw, r); err != nil {
			s.handleError(rw, r, route, err)
		}
	}
}

func (s *Server) handleError(rw *statusRecorder, r *http.Request, route string, err error) {
	var ce *clientError
	switch {
	case errors.Is(err, review.ErrNotFound):
		s.logger.Debug().Str("route", route).Str("path", r.URL.Path).Msg("Book not found")
		writeError(rw, http.StatusNotFound, "not found")
	case errors.As(err, &ce):
		s.logger.Warn().Str("route", route).Err(err).Msg("Rejected request")
		writeError(rw, ce.status, ce.message)
	default:
		s.logger.Error().
			Err(err).
			Str("route", route).
			Str("method", r.Method).
			Str("request_id", RequestIDFrom(r)).
			Bool("upstream", review.IsUpstream(err)).
			Msg("Request failed")
		if !rw.wroteHeader {
			writeError(rw, http.StatusInternalServerError, err.Error())
		}
	}
}

// requestIDMiddleware propagates or assigns X-Request-Id.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the request id assigned by the middleware.
func RequestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

func (s *Server) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := recorderFor(w)

		next.ServeHTTP(rw, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Dur("duration", time.Since(start)).
			Str("request_id", RequestIDFrom(r)).
			Msg("access")
	})
}

// corsMiddleware allows the listed origins; "*" (or an empty list) allows
// any origin without credentials.
func corsMiddleware(allowed []string) func(http.Handler) http.Handler {
	anyOrigin := len(allowed) == 0
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			anyOrigin = true
		}
		set[strings.TrimRight(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case anyOrigin:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && set[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
