package cache

import "time"

// Entry is a value read back from the cache together with its remaining
// lifetime as reported by Redis.
type Entry struct {
	// Key is the rendered Redis key.
	Key string

	// Data is the stored payload, returned verbatim.
	Data []byte

	// Expires is when Redis will drop the key. Zero means no expiry.
	Expires time.Time
}

// TTL returns the time until expiration, 0 when expired or unbounded.
func (e *Entry) TTL() time.Duration {
	if e.Expires.IsZero() {
		return 0
	}
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
