// Package kv is the string key-value store that users and sessions are
// persisted to. It mirrors the browser storage contract: a missing key is
// reported as ErrNotFound, values are opaque strings.
package kv

import (
	"context"
	"errors"
)

const (
	// UsersKey holds the JSON array of registered users.
	UsersKey = "smartreads_users"
	// SessionKeyPrefix is the key of the current session; the server scopes
	// it per browser profile.
	SessionKeyPrefix = "smartreads_user"
)

var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Update replaces the value of key with what fn returns, atomically with
	// respect to every other Update on the same key, across processes for
	// the shared backends. An error from fn aborts without writing.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// UpdateFunc receives the current value, or found=false when key is unset.
type UpdateFunc func(current string, found bool) (string, error)

func SessionKey(profileID string) string {
	return SessionKeyPrefix + ":" + profileID
}

// ProfileFromSessionKey is the inverse of SessionKey.
func ProfileFromSessionKey(key string) (string, bool) {
	prefix := SessionKeyPrefix + ":"
	if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
		return "", false
	}
	return key[len(prefix):], true
}
