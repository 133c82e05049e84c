package remote

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mhugentobler/jasstafel/internal/ledger"
	"github.com/mhugentobler/jasstafel/internal/models"
)

// Reconciler merges incoming remote aggregate snapshots into local
// state. A snapshot is adopted only when the remote round number is
// strictly ahead of the local one; otherwise the local device is
// assumed to be the live writer and the snapshot is ignored. This is a
// heuristic, not a causal version check: two devices correcting
// history concurrently can diverge.
type Reconciler struct {
	store     Store
	led       *ledger.Ledger
	writer    *Writer
	sessionID uuid.UUID
	gameID    uuid.UUID
	deviceID  string

	applying atomic.Bool
}

// NewReconciler creates a reconciler bound to one game's ledger and
// writer.
func NewReconciler(store Store, led *ledger.Ledger, writer *Writer, sessionID, gameID uuid.UUID, deviceID string) *Reconciler {
	return &Reconciler{
		store:     store,
		led:       led,
		writer:    writer,
		sessionID: sessionID,
		gameID:    gameID,
		deviceID:  deviceID,
	}
}

// Applying reports whether a snapshot is currently being adopted.
func (r *Reconciler) Applying() bool { return r.applying.Load() }

// ApplySnapshot decides whether to adopt a remote aggregate snapshot.
// On adoption the active round records are loaded from the store and
// replace the local ledger contents. Returns whether the snapshot was
// adopted.
func (r *Reconciler) ApplySnapshot(ctx context.Context, sum models.GameSummary) (bool, error) {
	if sum.DeviceID == r.deviceID {
		// Echo of our own write.
		return false, nil
	}
	if sum.SessionID != r.sessionID || sum.GameID != r.gameID {
		log.Debug().
			Str("game_id", sum.GameID.String()).
			Msg("snapshot for a different game ignored")
		return false, nil
	}

	localRound := 0
	if latest := r.led.Latest(); latest != nil {
		localRound = latest.RoundNumber
	}
	if sum.RoundNumber <= localRound {
		log.Debug().
			Int("remote_round", sum.RoundNumber).
			Int("local_round", localRound).
			Msg("remote snapshot not ahead of local state, ignored")
		return false, nil
	}

	if !r.applying.CompareAndSwap(false, true) {
		return false, nil
	}
	defer r.applying.Store(false)

	// Block the write path before touching local state so the adoption
	// cannot feed back into the remote mirror.
	r.writer.Suspend()
	defer r.writer.Resume()

	recs, err := r.store.ActiveRounds(ctx, r.sessionID, r.gameID)
	if err != nil {
		return false, &RemoteReadError{Op: "active rounds", Err: err}
	}

	entries := make([]models.RoundEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, rec.RoundEntry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].RoundID < entries[j].RoundID })
	r.led.ReplaceAll(entries)

	log.Info().
		Str("game_id", r.gameID.String()).
		Str("source_device", sum.DeviceID).
		Int("remote_round", sum.RoundNumber).
		Int("rounds_loaded", len(entries)).
		Msg("adopted remote snapshot")
	return true, nil
}
