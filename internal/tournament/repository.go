package tournament

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mhugentobler/jasstafel/internal/models"
)

// Repository is the Postgres implementation of PassRepository.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository wraps a pgx pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ PassRepository = (*Repository)(nil)

// CompletedPassCounts counts completed passes per requested player.
// Players with no completed passes are absent from the result.
func (r *Repository) CompletedPassCounts(ctx context.Context, tournamentID uuid.UUID, players []uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.player_id, COUNT(*)
		FROM passes, UNNEST(players) AS p(player_id)
		WHERE tournament_id = $1 AND completed AND p.player_id = ANY($2)
		GROUP BY p.player_id`,
		tournamentID, players)
	if err != nil {
		return nil, fmt.Errorf("query pass counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int, len(players))
	for rows.Next() {
		var id uuid.UUID
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan pass count: %w", err)
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

// LettersInRound returns the letters of all currently recorded passes
// for the given tournament round, completed or not.
func (r *Repository) LettersInRound(ctx context.Context, tournamentID uuid.UUID, round int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT letter
		FROM passes
		WHERE tournament_id = $1 AND round = $2`,
		tournamentID, round)
	if err != nil {
		return nil, fmt.Errorf("query round letters: %w", err)
	}
	defer rows.Close()

	var letters []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("scan letter: %w", err)
		}
		letters = append(letters, l)
	}
	return letters, rows.Err()
}

// CreatePass inserts a new pass with its assigned label.
func (r *Repository) CreatePass(ctx context.Context, pass models.Pass) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO passes (id, tournament_id, round, letter, players, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
		pass.ID, pass.TournamentID, pass.Label.TournamentRound, pass.Label.Letter, pass.Players, pass.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert pass: %w", err)
	}
	return nil
}

// CompletePass marks a pass as played.
func (r *Repository) CompletePass(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE passes SET completed = TRUE WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("complete pass: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pass %s not found", id)
	}
	return nil
}
