package cache

import (
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// BytesCache stores serialized payloads with a TTL. Handlers use it to
// memoize query responses so repeated polling does not recompute
// analytics on every request.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
	Close() error
}
