package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mhugentobler/jasstafel/internal/ledger"
	"github.com/mhugentobler/jasstafel/internal/models"
	"github.com/mhugentobler/jasstafel/internal/remote"
	"github.com/mhugentobler/jasstafel/internal/scoring"
)

const remoteOpTimeout = 5 * time.Second

// Config holds the per-session settings.
type Config struct {
	Teams            models.TeamConfig
	Thresholds       scoring.Thresholds
	DeviceID         string
	MinWriteInterval time.Duration
	// Confirm gates corrections that would discard later rounds. Nil
	// means corrections proceed without asking.
	Confirm ledger.ConfirmFunc
}

// Game couples one game's metadata with its round ledger.
type Game struct {
	Meta   models.GameEntry
	Ledger *ledger.Ledger
}

// Session is the local authoritative owner of the in-memory game
// state. Local input arrives on one logical thread, but remote
// snapshots are delivered on the listener goroutine, so every state
// mutation and projection is serialized by the session mutex. Remote
// failures never roll local state back.
type Session struct {
	id    uuid.UUID
	cfg   Config
	clock clockwork.Clock
	store remote.Store
	pub   remote.SnapshotPublisher

	mu      sync.Mutex
	games   []*Game
	current *Game
	writer  *remote.Writer
	recon   *remote.Reconciler
}

// New creates a session. A nil store runs the session fully offline.
func New(id uuid.UUID, cfg Config, clock clockwork.Clock, store remote.Store, pub remote.SnapshotPublisher) *Session {
	if cfg.MinWriteInterval <= 0 {
		cfg.MinWriteInterval = remote.DefaultWriterConfig(cfg.DeviceID).MinWriteInterval
	}
	return &Session{
		id:    id,
		cfg:   cfg,
		clock: clock,
		store: store,
		pub:   pub,
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// CurrentGame returns the active game, nil before the first
// StartNewGame call.
func (s *Session) CurrentGame() *Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Reconciler returns the active game's reconciler, nil when offline or
// before the first game. Remote snapshots must flow through
// ApplyRemoteSnapshot, which serializes them against local input.
func (s *Session) Reconciler() *remote.Reconciler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recon
}

// StartNewGame finalizes the running game, if any, and opens the next
// one.
func (s *Session) StartNewGame(startingPlayer int) (*Game, error) {
	if startingPlayer < 0 || startingPlayer >= models.NumSeats {
		return nil, &ledger.ValidationError{Field: "starting_player", Reason: "seat out of range"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Meta.IsCompleted = true
	}

	game := &Game{
		Meta: models.GameEntry{
			ID:             uuid.New(),
			GameNumber:     len(s.games) + 1,
			StartingPlayer: startingPlayer,
		},
		Ledger: ledger.New(s.clock, s.cfg.Confirm),
	}
	game.Meta.SetStand(models.TeamTop, zeroStand())
	game.Meta.SetStand(models.TeamBottom, zeroStand())

	s.games = append(s.games, game)
	s.current = game

	if s.store != nil {
		wcfg := remote.WriterConfig{MinWriteInterval: s.cfg.MinWriteInterval, DeviceID: s.cfg.DeviceID}
		s.writer = remote.NewWriter(s.store, s.pub, s.clock, wcfg, s.id, game.Meta.ID)
		s.recon = remote.NewReconciler(s.store, game.Ledger, s.writer, s.id, game.Meta.ID, s.cfg.DeviceID)
	}

	log.Info().
		Str("session_id", s.id.String()).
		Int("game_number", game.Meta.GameNumber).
		Int("starting_player", startingPlayer).
		Msg("started new game")
	return game, nil
}

// ResetSession archives all games and clears the session.
func (s *Session) ResetSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Meta.IsCompleted = true
	}
	s.games = nil
	s.current = nil
	s.writer = nil
	s.recon = nil
	log.Info().Str("session_id", s.id.String()).Msg("session reset")
}

// RecordRound records a completed round with its trump and optional
// stroke award. Recording from a past history position is a correction
// and runs the branch-overwrite protocol.
func (s *Session) RecordRound(jass models.TeamValues, weis models.TeamValues, trump models.TrumpColor, award *models.StrokeAward) (*models.RoundEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record(ledger.Delta{
		Jass:           jass,
		Weis:           weis,
		Trump:          &trump,
		StrokeAward:    award,
		StartingPlayer: s.nextStartingPlayer(),
	})
}

// RecordWeisOnly records declared weis points without a played trump.
func (s *Session) RecordWeisOnly(points int, team models.Team) (*models.RoundEntry, error) {
	var weis models.TeamValues
	if team == models.TeamTop {
		weis.Top = points
	} else {
		weis.Bottom = points
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record(ledger.Delta{
		Weis:           weis,
		StartingPlayer: s.nextStartingPlayer(),
	})
}

// record appends a delta and mirrors it to the remote store. The
// caller holds the session mutex.
func (s *Session) record(delta ledger.Delta) (*models.RoundEntry, error) {
	if s.current == nil {
		return nil, fmt.Errorf("no active game")
	}

	entry, discarded, err := s.current.Ledger.Append(delta)
	if err != nil {
		if errors.Is(err, ledger.ErrCorrectionDeclined) {
			log.Info().
				Str("session_id", s.id.String()).
				Msg("correction declined, history pointer back at tip")
		}
		return nil, err
	}

	s.refreshStands()

	if s.writer != nil {
		// Copy the entry before handing it to the goroutine so a
		// correction recorded in the meantime cannot alter what gets
		// persisted for this round.
		e := *entry
		sum := s.buildSummary(e)
		w := s.writer
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), remoteOpTimeout)
			defer cancel()
			if len(discarded) > 0 {
				if derr := w.DeactivateRounds(ctx, discarded, "branch overwrite"); derr != nil {
					log.Warn().Err(derr).Msg("failed to deactivate overwritten rounds")
				}
			}
			if werr := w.WriteRound(ctx, e, sum); werr != nil && !errors.Is(werr, remote.ErrStaleWriteSkipped) {
				log.Warn().Err(werr).Msg("failed to persist round")
			}
		}()
	}

	return entry, nil
}

// Navigate moves the history pointer and mirrors the move to the
// remote store: stepping backward shadows the entry we leave, stepping
// forward re-enters it before it can be overwritten.
func (s *Session) Navigate(dir ledger.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false
	}

	led := s.current.Ledger
	before := led.Pointer()
	if !led.Navigate(dir) {
		return false
	}
	s.refreshStands()

	if s.writer != nil {
		var ids []int64
		reactivate := false
		switch dir {
		case ledger.Backward:
			ids = []int64{led.EntryAt(before).RoundID}
		case ledger.Forward:
			ids = []int64{led.EntryAt(led.Pointer()).RoundID}
			reactivate = true
		}
		w := s.writer
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), remoteOpTimeout)
			defer cancel()
			var err error
			if reactivate {
				err = w.ReactivateRounds(ctx, ids)
			} else {
				err = w.DeactivateRounds(ctx, ids, "history rewind")
			}
			if err != nil {
				log.Warn().Err(err).Msg("failed to mirror navigation to remote store")
			}
		}()
	}
	return true
}

// ApplyRemoteSnapshot feeds an incoming aggregate snapshot to the
// reconciler and refreshes the cached stands when it was adopted. It
// runs on the listener goroutine, so it takes the session mutex:
// adoption replaces ledger memory, which must not interleave with
// local appends.
func (s *Session) ApplyRemoteSnapshot(ctx context.Context, sum models.GameSummary) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recon == nil {
		return false, nil
	}
	adopted, err := s.recon.ApplySnapshot(ctx, sum)
	if adopted {
		s.refreshStands()
	}
	return adopted, err
}

func (s *Session) nextStartingPlayer() int {
	if s.current == nil {
		return 0
	}
	if cur := s.current.Ledger.Current(); cur != nil {
		return (cur.StartingPlayer + 1) % models.NumSeats
	}
	return s.current.Meta.StartingPlayer
}

func (s *Session) refreshStands() {
	led := s.current.Ledger
	ptr := led.Pointer()
	s.current.Meta.SetStand(models.TeamTop, led.TeamStandAt(ptr, models.TeamTop))
	s.current.Meta.SetStand(models.TeamBottom, led.TeamStandAt(ptr, models.TeamBottom))
}

func (s *Session) buildSummary(entry models.RoundEntry) models.GameSummary {
	return models.GameSummary{
		SessionID:      s.id,
		GameID:         s.current.Meta.ID,
		GameNumber:     s.current.Meta.GameNumber,
		RoundNumber:    entry.RoundNumber,
		StartingPlayer: entry.StartingPlayer,
		Scores:         entry.CumulativeScores,
		Weis:           entry.CumulativeWeis,
		Striche:        entry.CumulativeStriche.Clone(),
		DeviceID:       s.cfg.DeviceID,
	}
}

func zeroStand() models.TeamStand {
	return models.TeamStand{Strikes: models.StrikeCounts{}}
}
