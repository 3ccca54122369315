package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"smartreads/internal/kv"
	"smartreads/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores one session record per browser profile.
type SessionRepository struct {
	store kv.Store
}

func NewSessionRepository(store kv.Store) *SessionRepository {
	return &SessionRepository{store: store}
}

func (r *SessionRepository) Get(ctx context.Context, profileID string) (models.Session, error) {
	key := kv.SessionKey(profileID)
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, err
	}

	var session models.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return models.Session{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return session, nil
}

// Save overwrites whatever session the profile had.
func (r *SessionRepository) Save(ctx context.Context, profileID string, session models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.store.Set(ctx, kv.SessionKey(profileID), string(payload))
}

func (r *SessionRepository) Delete(ctx context.Context, profileID string) error {
	return r.store.Delete(ctx, kv.SessionKey(profileID))
}

// Profiles lists every profile that currently has a session record.
func (r *SessionRepository) Profiles(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, kv.SessionKeyPrefix+":")
	if err != nil {
		return nil, err
	}

	profiles := make([]string, 0, len(keys))
	for _, key := range keys {
		if id, ok := kv.ProfileFromSessionKey(key); ok {
			profiles = append(profiles, id)
		}
	}
	return profiles, nil
}
