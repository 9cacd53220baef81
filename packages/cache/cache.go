// Package cache stores raw responses keyed by a hash of the literal
// request URL. Entries never expire and are never revalidated:
// existence alone is the hit condition.
//
// The directory store is process-wide shared state with no locking.
// Concurrent writers to the same key race and the last writer wins; a
// reader may observe a partially written entry if a writer is
// interrupted mid-write. That weak consistency is an accepted part of
// the contract.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Store is the read-through/write-through cache consumed by the
// executor. Implementations: Dir (on disk) and Memory (tests).
type Store interface {
	// Get returns the stored raw response for url, if any.
	Get(url string) ([]byte, bool)
	// Put stores the raw response for url, replacing any previous entry.
	Put(url string, response []byte) error
}

// Key returns the stable cache key for a literal URL string. The URL
// is not normalized: "http://x/" and "http://x" map to different keys.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
