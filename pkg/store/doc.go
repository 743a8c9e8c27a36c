// Package store is the MongoDB document store adapter for books.
//
// Each book is one document in the "books" collection with its reviews
// embedded as an array in insertion order. The adapter exposes exactly the
// reads and writes the review service needs plus the bulk replace used by
// the seed command.
package store
