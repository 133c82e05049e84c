package tournament

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mhugentobler/jasstafel/internal/models"
)

// PassReader is what the sequencer needs to inspect already-recorded
// passes. Counts are read-recomputed on each assignment rather than
// kept as a shared counter, so no central lock is needed; two devices
// creating passes concurrently can compute the same letter (known
// gap).
type PassReader interface {
	CompletedPassCounts(ctx context.Context, tournamentID uuid.UUID, players []uuid.UUID) (map[uuid.UUID]int, error)
	LettersInRound(ctx context.Context, tournamentID uuid.UUID, round int) ([]string, error)
}

// Sequencer assigns durable sequence labels to tournament passes.
type Sequencer struct {
	reader PassReader
}

// NewSequencer creates a sequencer over the given pass reader.
func NewSequencer(reader PassReader) *Sequencer {
	return &Sequencer{reader: reader}
}

// NextLabel computes the label for a new pass. The round number is one
// more than the least-advanced participant's completed-pass count, so
// a round only counts as complete once every participant has played.
// The letter is the first one not used by any recorded pass in that
// round. On a read failure the sequencer degrades to round 1 letter A:
// a possibly-duplicate label beats a blocked game start.
func (s *Sequencer) NextLabel(ctx context.Context, tournamentID uuid.UUID, players []uuid.UUID) models.PassSequenceLabel {
	fallback := models.PassSequenceLabel{TournamentRound: 1, Letter: "A"}

	counts, err := s.reader.CompletedPassCounts(ctx, tournamentID, players)
	if err != nil {
		log.Warn().
			Err(err).
			Str("tournament_id", tournamentID.String()).
			Msg("pass count lookup failed, falling back to label 1A")
		return fallback
	}

	minCount := -1
	for _, p := range players {
		c := counts[p]
		if minCount == -1 || c < minCount {
			minCount = c
		}
	}
	if minCount == -1 {
		minCount = 0
	}
	round := 1 + minCount

	letters, err := s.reader.LettersInRound(ctx, tournamentID, round)
	if err != nil {
		log.Warn().
			Err(err).
			Str("tournament_id", tournamentID.String()).
			Int("round", round).
			Msg("letter lookup failed, falling back to letter A")
		return models.PassSequenceLabel{TournamentRound: round, Letter: "A"}
	}

	used := make(map[string]bool, len(letters))
	for _, l := range letters {
		used[strings.ToUpper(l)] = true
	}

	return models.PassSequenceLabel{TournamentRound: round, Letter: firstFreeLetter(used)}
}

// firstFreeLetter walks A..Z, then AA, BB, ... for very long rounds.
func firstFreeLetter(used map[string]bool) string {
	for i := 0; ; i++ {
		letter := strings.Repeat(string(rune('A'+i%26)), i/26+1)
		if !used[letter] {
			return letter
		}
	}
}
