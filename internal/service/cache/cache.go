package cache

import "time"

// BytesCache is a minimal cache API storing raw response bytes with TTL.
// The insights handlers use it to cache rendered JSON payloads.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
