// Package review implements the book list, book lookup and review append
// operations on top of a document store and a read-through cache.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/bookreview/pkg/cache"
	"github.com/Sternrassler/bookreview/pkg/store"
)

var reviewsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bookreview_reviews_created_total",
	Help: "Total number of reviews appended to books",
})

// Store is the subset of the document store the service uses.
type Store interface {
	FindAll(ctx context.Context) ([]store.Book, error)
	FindByID(ctx context.Context, id string) (*store.Book, error)
	AppendReview(ctx context.Context, id string, review store.Review) error
}

// Cache is the key/value layer memoizing the list payload.
type Cache interface {
	Get(ctx context.Context, key cache.Key) (*cache.Entry, error)
	Set(ctx context.Context, key cache.Key, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key cache.Key) error
}

// Config holds the service settings.
type Config struct {
	// ListTTL is how long a cached list payload may be served.
	ListTTL time.Duration

	// DefaultAuthor replaces a missing review author.
	DefaultAuthor string

	// Now stamps new reviews. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		ListTTL:       30 * time.Second,
		DefaultAuthor: "anon",
		Now:           time.Now,
	}
}

// Service orchestrates reads and writes between the cache and the store.
type Service struct {
	store  Store
	cache  Cache
	config Config
	logger zerolog.Logger
}

// New creates a review service. Zero fields in cfg fall back to DefaultConfig.
func New(s Store, c Cache, logger zerolog.Logger, cfg Config) (*Service, error) {
	if s == nil {
		return nil, fmt.Errorf("store is required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache is required")
	}

	def := DefaultConfig()
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = def.ListTTL
	}
	if cfg.DefaultAuthor == "" {
		cfg.DefaultAuthor = def.DefaultAuthor
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}

	return &Service{
		store:  s,
		cache:  c,
		config: cfg,
		logger: logger.With().Str("component", "review-service").Logger(),
	}, nil
}

// ListBooks returns the JSON array of all books. A cached payload is returned
// byte for byte; on a miss the store is read and the encoded result cached
// for ListTTL. Concurrent misses may each hit the store.
func (s *Service) ListBooks(ctx context.Context) ([]byte, error) {
	entry, err := s.cache.Get(ctx, cache.BookListKey)
	switch {
	case err == nil:
		s.logger.Debug().
			Str("key", entry.Key).
			Dur("ttl", entry.TTL()).
			Bool("cache_hit", true).
			Msg("Serving book list from cache")
		return entry.Data, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		return nil, upstream("cache get", err)
	}

	books, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, upstream("store find all", err)
	}
	if books == nil {
		books = []store.Book{}
	}

	payload, err := json.Marshal(books)
	if err != nil {
		return nil, fmt.Errorf("encode book list: %w", err)
	}

	if err := s.cache.Set(ctx, cache.BookListKey, payload, s.config.ListTTL); err != nil {
		return nil, upstream("cache set", err)
	}

	s.logger.Debug().
		Int("books", len(books)).
		Bool("cache_hit", false).
		Dur("ttl", s.config.ListTTL).
		Msg("Cached book list")

	return payload, nil
}

// GetBook reads one book straight from the store.
func (s *Service) GetBook(ctx context.Context, id string) (*store.Book, error) {
	book, err := s.store.FindByID(ctx, id)
	if err != nil {
		if isMissing(err) {
			return nil, ErrNotFound
		}
		return nil, upstream("store find by id", err)
	}
	return book, nil
}

// AddReview appends a review to the book and drops the cached list so the
// next ListBooks reflects it. An empty author becomes DefaultAuthor; text is
// stored as given. Timestamps are cut to the millisecond precision the
// store keeps. Unknown ids return ErrNotFound and leave the cache alone.
func (s *Service) AddReview(ctx context.Context, bookID, text, author string) (*store.Review, error) {
	if author == "" {
		author = s.config.DefaultAuthor
	}

	review := store.Review{
		Text:      text,
		Author:    author,
		CreatedAt: s.config.Now().UTC().Truncate(time.Millisecond),
	}

	if err := s.store.AppendReview(ctx, bookID, review); err != nil {
		if isMissing(err) {
			return nil, ErrNotFound
		}
		return nil, upstream("store append review", err)
	}

	if err := s.cache.Delete(ctx, cache.BookListKey); err != nil {
		return nil, upstream("cache invalidate", err)
	}

	reviewsCreatedTotal.Inc()
	s.logger.Info().
		Str("book_id", bookID).
		Str("author", review.Author).
		Msg("Review added")

	return &review, nil
}

func isMissing(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID)
}
