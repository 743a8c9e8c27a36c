// Command seed replaces the books collection with a JSON data set.
//
// Usage:
//
//	seed [-file books.json] [-timeout 30s]
//
// Without -file the embedded data set is loaded. MONGO_URI defaults to
// mongodb://localhost:27017 and MONGO_DB to bookreview. When REDIS_URL is set
// the cached book list is dropped so a running API picks up the new data.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sternrassler/bookreview/internal/config"
	"github.com/Sternrassler/bookreview/pkg/cache"
	"github.com/Sternrassler/bookreview/pkg/logging"
	"github.com/Sternrassler/bookreview/pkg/store"
)

//go:embed books.json
var defaultBooks []byte

func main() {
	file := flag.String("file", "", "path to a JSON array of books (default: embedded data set)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline for the load")
	flag.Parse()

	logging.Setup(logging.Config{
		Level:   logging.LogLevel(config.Getenv("LOG_LEVEL", "info")),
		Pretty:  true,
		Output:  os.Stderr,
		Service: "bookreview-seed",
	})
	logger := logging.NewLogger("seed")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, logger, *file); err != nil {
		logger.Fatal().Err(err).Msg("Seeding failed")
	}
}

func run(ctx context.Context, logger zerolog.Logger, file string) error {
	books, err := loadBooks(file)
	if err != nil {
		return err
	}

	uri := config.Getenv("MONGO_URI", "mongodb://localhost:27017")
	dbName := config.Getenv("MONGO_DB", config.DefaultMongoDB)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("connect to mongo: %w", err)
	}
	defer client.Disconnect(context.Background())

	ids, err := store.Open(client, dbName).Replace(ctx, books)
	if err != nil {
		return err
	}
	logger.Info().Int("books", len(ids)).Str("db", dbName).Msg("Seeded books")

	if raw := os.Getenv("REDIS_URL"); raw != "" {
		if err := invalidateList(ctx, raw); err != nil {
			logger.Warn().Err(err).Msg("Could not drop cached book list; it expires on its own")
		}
	}
	return nil
}

func loadBooks(file string) ([]store.Book, error) {
	data := defaultBooks
	if file != "" {
		var err error
		if data, err = os.ReadFile(file); err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
	}

	var books []store.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return books, nil
}

func invalidateList(ctx context.Context, rawURL string) error {
	opts, err := config.RedisOptions(rawURL)
	if err != nil {
		return err
	}
	client := redis.NewClient(opts)
	defer client.Close()

	return cache.NewManager(client).Delete(ctx, cache.BookListKey)
}
