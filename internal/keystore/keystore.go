// Package keystore persists the small named secrets the session layer
// needs across restarts: the bearer token and the cached user record.
package keystore

import "context"

// Store defines how named entries are stored and retrieved.
// Implementations must treat a missing entry as (nil, nil), not an
// error, and Delete must be idempotent.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, value []byte) error
	Delete(ctx context.Context, name string) error
}

// Entry names used by the session layer. Kept here so both backends
// and tests agree on them.
const (
	EntryToken = "token"
	EntryUser  = "user.json"
)
