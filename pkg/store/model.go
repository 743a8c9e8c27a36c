package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book is a book document. Reviews are kept in insertion order, which is
// also chronological order.
type Book struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Author      string             `json:"author" bson:"author"`
	Description string             `json:"desc,omitempty" bson:"desc,omitempty"`
	Reviews     []Review           `json:"reviews,omitempty" bson:"reviews,omitempty"`
}

// Review is embedded in its Book and has no identity of its own.
type Review struct {
	Text      string    `json:"text" bson:"text"`
	Author    string    `json:"author" bson:"author"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
