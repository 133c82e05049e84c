package remote

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mhugentobler/jasstafel/internal/models"
)

// SnapshotPublisher fans a freshly written aggregate out to other
// devices. Implemented by the NATS Publisher; nil disables fan-out.
type SnapshotPublisher interface {
	PublishSummary(ctx context.Context, sum models.GameSummary) error
}

// WriterConfig holds the write-path policy knobs.
type WriterConfig struct {
	// MinWriteInterval throttles round writes. A write arriving inside
	// the window is dropped, not queued.
	MinWriteInterval time.Duration
	DeviceID         string
}

// DefaultWriterConfig returns the standard one-write-per-second policy.
func DefaultWriterConfig(deviceID string) WriterConfig {
	return WriterConfig{
		MinWriteInterval: time.Second,
		DeviceID:         deviceID,
	}
}

// Writer persists one game's rounds and aggregate to the remote
// mirror. Each game gets its own writer with its own last-write
// timestamp, so concurrently processed games never share debounce
// state. Local state stays authoritative regardless of dropped or
// failed remote writes.
type Writer struct {
	store     Store
	pub       SnapshotPublisher
	clock     clockwork.Clock
	cfg       WriterConfig
	sessionID uuid.UUID
	gameID    uuid.UUID

	mu         sync.Mutex
	lastWrite  time.Time
	suppressed bool
}

// NewWriter creates a writer bound to one game.
func NewWriter(store Store, pub SnapshotPublisher, clock clockwork.Clock, cfg WriterConfig, sessionID, gameID uuid.UUID) *Writer {
	return &Writer{
		store:     store,
		pub:       pub,
		clock:     clock,
		cfg:       cfg,
		sessionID: sessionID,
		gameID:    gameID,
	}
}

// Suspend blocks the write path while a remote snapshot is being
// applied, preventing feedback loops.
func (w *Writer) Suspend() {
	w.mu.Lock()
	w.suppressed = true
	w.mu.Unlock()
}

// Resume re-enables the write path.
func (w *Writer) Resume() {
	w.mu.Lock()
	w.suppressed = false
	w.mu.Unlock()
}

// WriteRound persists a completed round and then the aggregate
// summary. The two phases are deliberately not atomic: if phase 2
// fails after phase 1 succeeded, the round record is durable and
// correct and only the aggregate cache is stale, which is recoverable
// by replaying active rounds. Returns ErrStaleWriteSkipped when the
// debounce window or the re-entrancy guard drops the write.
func (w *Writer) WriteRound(ctx context.Context, entry models.RoundEntry, sum models.GameSummary) error {
	now := w.clock.Now()

	w.mu.Lock()
	if w.suppressed {
		w.mu.Unlock()
		log.Debug().
			Str("game_id", w.gameID.String()).
			Int64("round_id", entry.RoundID).
			Msg("write suppressed while applying remote snapshot")
		return ErrStaleWriteSkipped
	}
	if !w.lastWrite.IsZero() && now.Sub(w.lastWrite) < w.cfg.MinWriteInterval {
		w.mu.Unlock()
		log.Debug().
			Str("game_id", w.gameID.String()).
			Int64("round_id", entry.RoundID).
			Msg("write dropped inside debounce window")
		return ErrStaleWriteSkipped
	}
	w.lastWrite = now
	w.mu.Unlock()

	rec := models.RemoteRoundRecord{
		SessionID:  w.sessionID,
		GameID:     w.gameID,
		RoundEntry: entry,
		IsActive:   true,
		SavedAt:    now,
	}
	if err := w.store.SaveRound(ctx, rec); err != nil {
		return &RemoteWriteError{Phase: 1, Err: err}
	}

	sum.SessionID = w.sessionID
	sum.GameID = w.gameID
	sum.DeviceID = w.cfg.DeviceID
	sum.SavedAt = now
	if err := w.store.UpsertSummary(ctx, sum); err != nil {
		// The round record is persisted; only the aggregate cache is
		// stale and can be rebuilt from active rounds.
		log.Warn().
			Err(err).
			Str("game_id", w.gameID.String()).
			Int64("round_id", entry.RoundID).
			Msg("aggregate summary write failed after round record was saved")
		return nil
	}

	if w.pub != nil {
		if err := w.pub.PublishSummary(ctx, sum); err != nil {
			log.Warn().
				Err(err).
				Str("game_id", w.gameID.String()).
				Msg("failed to publish summary snapshot")
		}
	}
	return nil
}

// DeactivateRounds soft-deletes discarded rounds in the remote mirror.
// Records are never physically deleted; the reason and timestamp are
// kept for auditability. Not debounced.
func (w *Writer) DeactivateRounds(ctx context.Context, roundIDs []int64, reason string) error {
	if len(roundIDs) == 0 {
		return nil
	}
	if err := w.store.DeactivateRounds(ctx, w.sessionID, w.gameID, roundIDs, reason); err != nil {
		return &RemoteWriteError{Phase: 1, Err: err}
	}
	log.Info().
		Str("game_id", w.gameID.String()).
		Int("count", len(roundIDs)).
		Str("reason", reason).
		Msg("deactivated remote rounds")
	return nil
}

// ReactivateRounds flips soft-deleted rounds back to active, used when
// navigation re-enters a previously discarded branch before it is
// overwritten. Last writer wins if two devices race.
func (w *Writer) ReactivateRounds(ctx context.Context, roundIDs []int64) error {
	if len(roundIDs) == 0 {
		return nil
	}
	if err := w.store.ReactivateRounds(ctx, w.sessionID, w.gameID, roundIDs); err != nil {
		return &RemoteWriteError{Phase: 1, Err: err}
	}
	return nil
}
