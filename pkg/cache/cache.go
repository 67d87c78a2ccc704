// Package cache provides a small byte-oriented cache used by the serve
// API to avoid re-rendering unchanged workflow diagrams.
//
// Three backends exist: a file-backed cache for local use, a Redis-backed
// cache for shared deployments, and a null cache that disables caching.
// Keys are derived from content hashes so a changed workflow file never
// serves a stale diagram.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores rendered artifacts keyed by content-derived strings.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with an optional TTL (0 means no expiry).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// RenderKey builds the cache key for a rendered diagram from the document
// content hash and every render option that affects the output.
func RenderKey(docHash, format string, width, height int, seed uint64) string {
	return hashKey("render", docHash, format, width, height, seed)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}
