package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned by encrypted KeyValueStore implementations
// when TOWERPANEL_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set TOWERPANEL_SECRET_KEY")

// KeyValueStore defines the driven port for durable key/value persistence.
// It stands in for browser storage: values survive process restarts.
type KeyValueStore interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores or replaces the value under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty string means no token is held.
type TokenSource interface {
	Token() string
}
