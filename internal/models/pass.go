package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PassSequenceLabel is the human-readable sequence label of a
// tournament pass: round number plus sub-letter, e.g. "2B". Assigned
// once at pass creation and never renumbered.
type PassSequenceLabel struct {
	TournamentRound int    `json:"tournament_round"`
	Letter          string `json:"letter"`
}

// String renders the label, e.g. "2B".
func (l PassSequenceLabel) String() string {
	return fmt.Sprintf("%d%s", l.TournamentRound, l.Letter)
}

// Pass is one sub-game within a tournament, played by four of the
// tournament's participants.
type Pass struct {
	ID           uuid.UUID         `json:"id"`
	TournamentID uuid.UUID         `json:"tournament_id"`
	Players      []uuid.UUID       `json:"players"`
	Label        PassSequenceLabel `json:"label"`
	Completed    bool              `json:"completed"`
	CreatedAt    time.Time         `json:"created_at"`
}
