package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage interface behind the page fetcher. Implementations
// must be safe for concurrent readers.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from a URL.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "prodfact:v1:" + hex.EncodeToString(hash[:24])
}
