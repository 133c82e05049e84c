package tournament

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mhugentobler/jasstafel/internal/models"
)

// PassRepository is what the app layer needs from the pass store.
type PassRepository interface {
	PassReader
	CreatePass(ctx context.Context, pass models.Pass) error
	CompletePass(ctx context.Context, id uuid.UUID) error
}

// App handles tournament pass business logic.
type App struct {
	repo PassRepository
	seq  *Sequencer
}

// NewApp creates a tournament App.
func NewApp(repo PassRepository) *App {
	return &App{
		repo: repo,
		seq:  NewSequencer(repo),
	}
}

// CreatePass assigns a sequence label and persists a new pass for four
// of the tournament's participants. The label is fixed at creation and
// never renumbered, even if later passes change how complete earlier
// rounds appear.
func (a *App) CreatePass(ctx context.Context, tournamentID uuid.UUID, players []uuid.UUID) (*models.Pass, error) {
	if err := validatePlayers(players); err != nil {
		return nil, err
	}

	label := a.seq.NextLabel(ctx, tournamentID, players)
	pass := models.Pass{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Players:      append([]uuid.UUID(nil), players...),
		Label:        label,
		CreatedAt:    time.Now(),
	}

	if err := a.repo.CreatePass(ctx, pass); err != nil {
		return nil, fmt.Errorf("failed to create pass: %w", err)
	}

	log.Info().
		Str("tournament_id", tournamentID.String()).
		Str("pass_id", pass.ID.String()).
		Str("label", label.String()).
		Msg("created tournament pass")
	return &pass, nil
}

// CompletePass marks a pass as played, which advances its
// participants' pass counts for future label assignments.
func (a *App) CompletePass(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.CompletePass(ctx, id); err != nil {
		return fmt.Errorf("failed to complete pass: %w", err)
	}
	return nil
}

func validatePlayers(players []uuid.UUID) error {
	if len(players) != models.NumSeats {
		return fmt.Errorf("a pass needs exactly %d players, got %d", models.NumSeats, len(players))
	}
	seen := make(map[uuid.UUID]bool, len(players))
	for _, p := range players {
		if p == uuid.Nil {
			return fmt.Errorf("player id is required")
		}
		if seen[p] {
			return fmt.Errorf("duplicate player %s", p)
		}
		seen[p] = true
	}
	return nil
}
