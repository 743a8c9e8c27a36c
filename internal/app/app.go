// Package app owns the process resources of the API: it connects to MongoDB
// and Redis at boot, wires them into the review service and HTTP handler,
// and releases them on shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sternrassler/bookreview/internal/config"
	"github.com/Sternrassler/bookreview/internal/server"
	"github.com/Sternrassler/bookreview/pkg/cache"
	"github.com/Sternrassler/bookreview/pkg/review"
	"github.com/Sternrassler/bookreview/pkg/store"
)

const connectTimeout = 10 * time.Second

// App is the explicit context shared by the service and handlers.
type App struct {
	Config  config.Config
	Mongo   *mongo.Client
	Redis   *redis.Client
	Books   *store.BookStore
	Cache   *cache.Manager
	Reviews *review.Service
	Handler http.Handler

	logger zerolog.Logger
}

// Open connects to both backends and builds the handler. Any failure is
// returned after releasing whatever was already acquired.
func Open(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, logger: logger.With().Str("component", "app").Logger()}

	redisOpts, err := cfg.RedisOptions()
	if err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	a.Redis = redis.NewClient(redisOpts)
	a.Cache = cache.NewManager(a.Redis)
	if err := a.Cache.Ping(cctx); err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("connect to redis at %s: %w", redisOpts.Addr, err)
	}

	a.Mongo, err = mongo.Connect(cctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := a.Mongo.Ping(cctx, nil); err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	a.logger.Info().
		Str("redis", redisOpts.Addr).
		Str("mongo_db", cfg.MongoDB).
		Msg("Connected to MongoDB and Redis")

	a.Books = store.Open(a.Mongo, cfg.MongoDB)

	a.Reviews, err = review.New(a.Books, a.Cache, logger, review.DefaultConfig())
	if err != nil {
		a.Close(context.Background())
		return nil, fmt.Errorf("create review service: %w", err)
	}

	a.Handler = server.New(a.Reviews, logger, server.Options{CORSOrigins: cfg.CORSOrigins})

	return a, nil
}

// Close disconnects from MongoDB and Redis. It is safe to call on a
// partially opened App.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongo: %w", err))
		}
		a.Mongo = nil
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		a.Redis = nil
	}
	return errors.Join(errs...)
}
