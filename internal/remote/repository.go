package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mhugentobler/jasstafel/internal/models"
)

// Repository is the Postgres implementation of Store. Round entries
// and summaries are kept as JSONB payloads next to their key columns,
// so the schema stays stable while the entry shape evolves.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository wraps a pgx pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// SaveRound upserts a round record and marks it active. Resaving a
// corrected round for the same (session, game, round) key reactivates
// and replaces the previous record.
func (r *Repository) SaveRound(ctx context.Context, rec models.RemoteRoundRecord) error {
	payload, err := json.Marshal(rec.RoundEntry)
	if err != nil {
		return fmt.Errorf("marshal round entry: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO rounds (session_id, game_id, round_id, round_number, entry, is_active, saved_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		ON CONFLICT (session_id, game_id, round_id) DO UPDATE
		SET round_number = EXCLUDED.round_number,
		    entry = EXCLUDED.entry,
		    is_active = TRUE,
		    saved_at = EXCLUDED.saved_at,
		    deactivated_reason = NULL,
		    deactivated_at = NULL`,
		rec.SessionID, rec.GameID, rec.RoundEntry.RoundID, rec.RoundEntry.RoundNumber, payload, rec.SavedAt)
	if err != nil {
		return fmt.Errorf("save round: %w", err)
	}
	return nil
}

// UpsertSummary writes the aggregate document for a game.
func (r *Repository) UpsertSummary(ctx context.Context, sum models.GameSummary) error {
	payload, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO game_summaries (session_id, game_id, round_number, device_id, summary, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id, game_id) DO UPDATE
		SET round_number = EXCLUDED.round_number,
		    device_id = EXCLUDED.device_id,
		    summary = EXCLUDED.summary,
		    saved_at = EXCLUDED.saved_at`,
		sum.SessionID, sum.GameID, sum.RoundNumber, sum.DeviceID, payload, sum.SavedAt)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

// DeactivateRounds soft-deletes the given rounds, recording reason and
// timestamp. Already-inactive rounds are left untouched.
func (r *Repository) DeactivateRounds(ctx context.Context, sessionID, gameID uuid.UUID, roundIDs []int64, reason string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE rounds
		SET is_active = FALSE,
		    deactivated_reason = $4,
		    deactivated_at = NOW()
		WHERE session_id = $1 AND game_id = $2 AND round_id = ANY($3) AND is_active`,
		sessionID, gameID, roundIDs, reason)
	if err != nil {
		return fmt.Errorf("deactivate rounds: %w", err)
	}
	return nil
}

// ReactivateRounds flips soft-deleted rounds back to active without
// asserting single-writer ownership.
func (r *Repository) ReactivateRounds(ctx context.Context, sessionID, gameID uuid.UUID, roundIDs []int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE rounds
		SET is_active = TRUE,
		    deactivated_reason = NULL,
		    deactivated_at = NULL
		WHERE session_id = $1 AND game_id = $2 AND round_id = ANY($3)`,
		sessionID, gameID, roundIDs)
	if err != nil {
		return fmt.Errorf("reactivate rounds: %w", err)
	}
	return nil
}

// ActiveRounds loads the active branch of a game ordered by round id.
func (r *Repository) ActiveRounds(ctx context.Context, sessionID, gameID uuid.UUID) ([]models.RemoteRoundRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT entry, saved_at
		FROM rounds
		WHERE session_id = $1 AND game_id = $2 AND is_active
		ORDER BY round_id`,
		sessionID, gameID)
	if err != nil {
		return nil, fmt.Errorf("query active rounds: %w", err)
	}
	defer rows.Close()

	var recs []models.RemoteRoundRecord
	for rows.Next() {
		rec := models.RemoteRoundRecord{
			SessionID: sessionID,
			GameID:    gameID,
			IsActive:  true,
		}
		var payload []byte
		if err := rows.Scan(&payload, &rec.SavedAt); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.RoundEntry); err != nil {
			return nil, fmt.Errorf("unmarshal round entry: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Summary loads the aggregate document, nil when none exists yet.
func (r *Repository) Summary(ctx context.Context, sessionID, gameID uuid.UUID) (*models.GameSummary, error) {
	var payload []byte
	err := r.db.QueryRow(ctx, `
		SELECT summary
		FROM game_summaries
		WHERE session_id = $1 AND game_id = $2`,
		sessionID, gameID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}

	var sum models.GameSummary
	if err := json.Unmarshal(payload, &sum); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	return &sum, nil
}
