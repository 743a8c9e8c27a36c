// Package testutil provides test doubles for the bookreview packages.
package testutil

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Sternrassler/bookreview/pkg/store"
)

// MemoryStore is an in-memory book store with call tracking and injectable
// failures. It mirrors BookStore's error contract.
type MemoryStore struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	books map[primitive.ObjectID]store.Book

	// Injected failures, returned instead of doing the operation.
	FindAllErr      error
	FindByIDErr     error
	AppendReviewErr error

	// Tracking
	FindAllCount      int
	FindByIDCount     int
	AppendReviewCount int
}

// NewMemoryStore creates a store seeded with books. Books without an id get
// a fresh ObjectID.
func NewMemoryStore(books ...store.Book) *MemoryStore {
	m := &MemoryStore{books: make(map[primitive.ObjectID]store.Book)}
	for _, b := range books {
		m.Insert(b)
	}
	return m
}

// Insert adds a book and returns its id.
func (m *MemoryStore) Insert(b store.Book) primitive.ObjectID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.Reviews = append([]store.Review(nil), b.Reviews...)
	if _, exists := m.books[b.ID]; !exists {
		m.order = append(m.order, b.ID)
	}
	m.books[b.ID] = b
	return b.ID
}

// FindAll returns copies of all books in insertion order.
func (m *MemoryStore) FindAll(ctx context.Context) ([]store.Book, error) {
	m.mu.Lock()
	m.FindAllCount++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.FindAllErr != nil {
		return nil, m.FindAllErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]store.Book, 0, len(m.order))
	for _, id := range m.order {
		books = append(books, clone(m.books[id]))
	}
	return books, nil
}

// FindByID returns a copy of one book.
func (m *MemoryStore) FindByID(ctx context.Context, id string) (*store.Book, error) {
	m.mu.Lock()
	m.FindByIDCount++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.FindByIDErr != nil {
		return nil, m.FindByIDErr
	}

	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.books[oid]
	if !ok {
		return nil, store.ErrNotFound
	}
	b = clone(b)
	return &b, nil
}

// AppendReview pushes review onto the book's reviews.
func (m *MemoryStore) AppendReview(ctx context.Context, id string, review store.Review) error {
	m.mu.Lock()
	m.AppendReviewCount++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if m.AppendReviewErr != nil {
		return m.AppendReviewErr
	}

	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[oid]
	if !ok {
		return store.ErrNotFound
	}
	b.Reviews = append(b.Reviews, review)
	m.books[oid] = b
	return nil
}

func clone(b store.Book) store.Book {
	b.Reviews = append([]store.Review(nil), b.Reviews...)
	return b
}
