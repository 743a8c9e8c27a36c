// Package server is the HTTP surface of the bookreview API.
package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/bookreview/pkg/metrics"
	"github.com/Sternrassler/bookreview/pkg/review"
	"github.com/Sternrassler/bookreview/pkg/store"
)

// Route templates used as the "route" metric label.
const (
	RouteBooks   = "/api/books"
	RouteBook    = "/api/books/:id"
	RouteReviews = "/api/books/:id/reviews"
)

// Reviews is the review service as seen by the handlers.
type Reviews interface {
	ListBooks(ctx context.Context) ([]byte, error)
	GetBook(ctx context.Context, id string) (*store.Book, error)
	AddReview(ctx context.Context, bookID, text, author string) (*store.Review, error)
}

// Options tweaks the router.
type Options struct {
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string

	// Metrics serves /metrics. Defaults to metrics.Handler().
	Metrics http.Handler
}

// Server routes requests to the review service.
type Server struct {
	reviews Reviews
	logger  zerolog.Logger
	router  *mux.Router
}

// New builds the router with all routes and middleware attached.
func New(reviews Reviews, logger zerolog.Logger, opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Handler()
	}

	s := &Server{
		reviews: reviews,
		logger:  logger.With().Str("component", "http").Logger(),
		router:  mux.NewRouter(),
	}

	r := s.router
	cors := corsMiddleware(opts.CORSOrigins)
	r.Use(requestIDMiddleware, s.accessLogMiddleware, cors)

	r.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)
	r.HandleFunc("/_healthz", healthHandler).Methods(http.MethodGet)

	// OPTIONS matches so the CORS middleware can answer preflights.
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/books", s.instrument(RouteBooks, s.listBooks)).
		Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/books/{id}", s.instrument(RouteBook, s.getBook)).
		Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/books/{id}/reviews", s.instrument(RouteReviews, s.addReview)).
		Methods(http.MethodPost, http.MethodOptions)

	// mux skips middleware when no route matches.
	unmatched := func(status int, msg string) http.Handler {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, status, msg)
		})
		return requestIDMiddleware(s.accessLogMiddleware(cors(h)))
	}
	r.NotFoundHandler = unmatched(http.StatusNotFound, "not found")
	r.MethodNotAllowedHandler = unmatched(http.StatusMethodNotAllowed, "method not allowed")

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

var _ Reviews = (*review.Service)(nil)
