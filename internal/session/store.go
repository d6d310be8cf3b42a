package session

import (
	"context"
	"errors"
)

// Storage keys shared by every Store implementation. The bearer token and
// the client-side expiry estimate live beside, not inside, the serialized
// session blob so they can be cleared and rewritten independently.
const (
	KeyToken     = "token"
	KeyExpiresOn = "expiresOn"
	KeySession   = "session"
)

// ErrKeyNotFound indicates the requested key has never been written or was deleted.
var ErrKeyNotFound = errors.New("session key not found")

// Store is the persistent key/value layer holding client-side session state.
// Implementations must make writes durable before returning so that a process
// restart immediately after any operation observes the same logical state.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
