package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection holding book documents.
const CollectionName = "books"

var (
	// ErrNotFound is returned when no book matches the id.
	ErrNotFound = errors.New("book not found")

	// ErrInvalidID is returned when an id is not a 24-character hex ObjectID.
	ErrInvalidID = errors.New("invalid book id")
)

var storeOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "bookreview_store_operation_duration_seconds",
	Help:    "MongoDB operation duration in seconds by operation and outcome",
	Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
}, []string{"operation", "outcome"})

// BookStore reads and writes book documents in one collection.
type BookStore struct {
	coll *mongo.Collection
}

// NewBookStore wraps an existing collection handle.
func NewBookStore(coll *mongo.Collection) *BookStore {
	if coll == nil {
		panic("mongo collection cannot be nil")
	}
	return &BookStore{coll: coll}
}

// Open returns a BookStore on the books collection of database dbName.
func Open(client *mongo.Client, dbName string) *BookStore {
	return NewBookStore(client.Database(dbName).Collection(CollectionName))
}

// ParseID converts the hex form used in URLs into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// FindAll returns every book in natural order. An empty collection yields an
// empty, non-nil slice.
func (s *BookStore) FindAll(ctx context.Context) (books []Book, err error) {
	defer observe("find_all", time.Now(), &err)

	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	defer cursor.Close(ctx)

	books = []Book{}
	if err := cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// FindByID returns the book with the given hex id.
func (s *BookStore) FindByID(ctx context.Context, id string) (book *Book, err error) {
	defer observe("find_by_id", time.Now(), &err)

	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	book = &Book{}
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find book %s: %w", id, err)
	}
	return book, nil
}

// AppendReview pushes review onto the end of the book's review array.
// Returns ErrNotFound when no document matches.
func (s *BookStore) AppendReview(ctx context.Context, id string, review Review) (err error) {
	defer observe("append_review", time.Now(), &err)

	oid, err := ParseID(id)
	if err != nil {
		return err
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{"reviews": review}},
	)
	if err != nil {
		return fmt.Errorf("push review to %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Replace deletes every book and inserts books in order. Documents without
// an id get one assigned by the driver; the stored ids are returned.
func (s *BookStore) Replace(ctx context.Context, books []Book) (ids []primitive.ObjectID, err error) {
	defer observe("replace", time.Now(), &err)

	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("clear books: %w", err)
	}
	if len(books) == 0 {
		return nil, nil
	}

	docs := make([]interface{}, len(books))
	for i := range books {
		docs[i] = books[i]
	}

	res, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return nil, fmt.Errorf("insert books: %w", err)
	}

	ids = make([]primitive.ObjectID, 0, len(res.InsertedIDs))
	for _, raw := range res.InsertedIDs {
		if oid, ok := raw.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}

func observe(op string, start time.Time, errp *error) {
	outcome := "ok"
	switch {
	case *errp == nil:
	case errors.Is(*errp, ErrNotFound), errors.Is(*errp, ErrInvalidID):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	storeOpDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}
