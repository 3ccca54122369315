package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"smartreads/internal/models"
	"smartreads/internal/repository"
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 24 * time.Hour

var ErrUnauthenticated = errors.New("unauthenticated")

type SessionGuard struct {
	sessions *repository.SessionRepository
	ttl      time.Duration
	log      zerolog.Logger
}

func NewSessionGuard(sessions *repository.SessionRepository, ttl time.Duration, log zerolog.Logger) *SessionGuard {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionGuard{sessions: sessions, ttl: ttl, log: log}
}

func (g *SessionGuard) TTL() time.Duration {
	return g.ttl
}

// Fresh reports whether a session opened at loginTime is still valid at now.
// A session exactly ttl old is still valid.
func (g *SessionGuard) Fresh(session models.Session, now time.Time) bool {
	return session.Age(now) <= g.ttl
}

// Check returns the profile's session when it is fresh. A stale session is
// deleted and, like a missing one, yields ErrUnauthenticated.
func (g *SessionGuard) Check(ctx context.Context, profileID string, now time.Time) (models.Session, error) {
	session, err := g.sessions.Get(ctx, profileID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return models.Session{}, ErrUnauthenticated
	}
	if err != nil {
		return models.Session{}, err
	}

	if !g.Fresh(session, now) {
		if err := g.sessions.Delete(ctx, profileID); err != nil {
			g.log.Warn().Err(err).Str("profile", profileID).Msg("delete expired session failed")
		}
		return models.Session{}, ErrUnauthenticated
	}
	return session, nil
}

// Sweep deletes every expired session and returns how many were removed.
// Records that cannot be read are removed as well.
func (g *SessionGuard) Sweep(ctx context.Context, now time.Time) (int, error) {
	profiles, err := g.sessions.Profiles(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, profileID := range profiles {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		session, err := g.sessions.Get(ctx, profileID)
		if errors.Is(err, repository.ErrSessionNotFound) {
			continue
		}
		if err == nil && g.Fresh(session, now) {
			continue
		}
		if err != nil {
			g.log.Warn().Err(err).Str("profile", profileID).Msg("unreadable session removed")
		}
		if err := g.sessions.Delete(ctx, profileID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
