package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"smartreads/internal/catalog"
	"smartreads/internal/queue"
	"smartreads/internal/security"
	"smartreads/internal/service"
)

var ErrBadSignature = errors.New("snapshot signature mismatch")

// SnapshotStore is implemented by storage.SnapshotStore.
type SnapshotStore interface {
	Put(ctx context.Context, takenAt time.Time, body []byte, signature string) (string, error)
	Latest(ctx context.Context) ([]byte, string, error)
}

type Processor struct {
	catalog   *catalog.Catalog
	guard     *service.SessionGuard
	snapshots SnapshotStore
	secret    string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProcessor wires the background task handlers. snapshots may be nil,
// in which case snapshot tasks are skipped.
func NewProcessor(cat *catalog.Catalog, guard *service.SessionGuard, snapshots SnapshotStore, secret string, logger zerolog.Logger) *Processor {
	return &Processor{
		catalog:   cat,
		guard:     guard,
		snapshots: snapshots,
		secret:    secret,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *Processor) HandleTask(ctx context.Context, task queue.Task) error {
	switch task.Type {
	case queue.TaskSnapshot:
		_, err := p.Snapshot(ctx)
		return err
	case queue.TaskSweep:
		return p.handleSweep(ctx)
	default:
		p.logger.Warn().Str("type", task.Type).Msg("unknown task type")
		return nil
	}
}

// Snapshot exports the catalog to object storage and returns the object name.
func (p *Processor) Snapshot(ctx context.Context) (string, error) {
	if p.snapshots == nil {
		p.logger.Debug().Msg("snapshot storage not configured, skipping")
		return "", nil
	}

	body, err := p.catalog.MarshalSnapshot()
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	key, err := p.snapshots.Put(ctx, p.now(), body, security.SignSnapshot(p.secret, body))
	if err != nil {
		return "", err
	}

	p.logger.Info().Str("object", key).Int("bytes", len(body)).Msg("catalog snapshot stored")
	return key, nil
}

// RestoreLatest loads the newest stored snapshot into the catalog. A
// snapshot whose signature does not match is refused.
func (p *Processor) RestoreLatest(ctx context.Context) error {
	if p.snapshots == nil {
		return nil
	}
	body, signature, err := p.snapshots.Latest(ctx)
	if err != nil {
		return err
	}
	if !security.VerifySnapshot(p.secret, body, signature) {
		return ErrBadSignature
	}
	if err := p.catalog.Restore(body); err != nil {
		return err
	}
	p.logger.Info().Int("books", p.catalog.Stats().Books).Msg("catalog restored from snapshot")
	return nil
}

func (p *Processor) handleSweep(ctx context.Context) error {
	removed, err := p.guard.Sweep(ctx, p.now())
	if err != nil {
		return fmt.Errorf("sweep sessions: %w", err)
	}
	if removed > 0 {
		p.logger.Info().Int("removed", removed).Msg("expired sessions swept")
	}
	return nil
}
