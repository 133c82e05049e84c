package remote

import (
	"context"

	"github.com/google/uuid"

	"github.com/mhugentobler/jasstafel/internal/models"
)

// Store is the document-oriented interface to the shared remote
// mirror. Aggregates are keyed by (sessionID, gameID), round records
// by (sessionID, gameID, roundID). Any persistent document or row
// store satisfying these keys works; the bundled implementation is
// Postgres.
type Store interface {
	SaveRound(ctx context.Context, rec models.RemoteRoundRecord) error
	UpsertSummary(ctx context.Context, sum models.GameSummary) error
	DeactivateRounds(ctx context.Context, sessionID, gameID uuid.UUID, roundIDs []int64, reason string) error
	ReactivateRounds(ctx context.Context, sessionID, gameID uuid.UUID, roundIDs []int64) error
	ActiveRounds(ctx context.Context, sessionID, gameID uuid.UUID) ([]models.RemoteRoundRecord, error)
	Summary(ctx context.Context, sessionID, gameID uuid.UUID) (*models.GameSummary, error)
}
