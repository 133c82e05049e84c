package models

import (
	"time"

	"github.com/google/uuid"
)

// RemoteRoundRecord is the wire copy of a RoundEntry. Several records
// may exist for the same round id over time as corrections are saved;
// at most one is active per branch position. Discarded records are
// soft-deleted via IsActive, never physically removed.
type RemoteRoundRecord struct {
	SessionID         uuid.UUID  `json:"session_id"`
	GameID            uuid.UUID  `json:"game_id"`
	RoundEntry        RoundEntry `json:"round_entry"`
	IsActive          bool       `json:"is_active"`
	SavedAt           time.Time  `json:"saved_at"`
	DeactivatedReason *string    `json:"deactivated_reason,omitempty"`
	DeactivatedAt     *time.Time `json:"deactivated_at,omitempty"`
}

// GameSummary is the remote aggregate document for one game. It caches
// cumulative totals and the current round/player pointers; it can
// always be rebuilt by replaying the active round records, so a stale
// summary is a recoverable inconsistency.
type GameSummary struct {
	SessionID      uuid.UUID   `json:"session_id"`
	GameID         uuid.UUID   `json:"game_id"`
	GameNumber     int         `json:"game_number"`
	RoundNumber    int         `json:"round_number"`
	StartingPlayer int         `json:"starting_player"`
	Scores         TeamValues  `json:"scores"`
	Weis           TeamValues  `json:"weis"`
	Striche        TeamStrikes `json:"striche"`
	DeviceID       string      `json:"device_id"`
	SavedAt        time.Time   `json:"saved_at"`
}
