package cache

import "strings"

// Key identifies a cached value. Keys render as "namespace:name".
type Key struct {
	// Namespace groups related keys (e.g. "books").
	Namespace string

	// Name is the value within the namespace (e.g. "list").
	Name string
}

// BookListKey holds the serialized snapshot of every book.
var BookListKey = Key{Namespace: "books", Name: "list"}

// String renders the Redis key. Empty segments are skipped and surrounding
// colons are trimmed so "books" + "list" always yields "books:list".
func (k Key) String() string {
	segments := make([]string, 0, 2)
	for _, s := range []string{k.Namespace, k.Name} {
		s = strings.Trim(s, ": ")
		if s != "" {
			segments = append(segments, s)
		}
	}
	return strings.Join(segments, ":")
}
