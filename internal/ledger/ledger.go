package ledger

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mhugentobler/jasstafel/internal/models"
	"github.com/mhugentobler/jasstafel/internal/scoring"
)

const (
	// navCooldown suppresses gesture double-fire on history navigation.
	navCooldown = 300 * time.Millisecond

	// defaultMaxEntries bounds local ledger growth. Once exceeded the
	// oldest entries are trimmed from the front.
	defaultMaxEntries = 500
)

// Direction moves the history pointer through the ledger.
type Direction string

const (
	Forward  Direction = "FORWARD"
	Backward Direction = "BACKWARD"
)

// Delta is the input recorded for one completed round.
type Delta struct {
	Jass           models.TeamValues
	Weis           models.TeamValues
	Trump          *models.TrumpColor
	StrokeAward    *models.StrokeAward
	StartingPlayer int
}

// ConfirmFunc gates corrections that would discard later rounds. It
// returns true to proceed with the overwrite.
type ConfirmFunc func() bool

// Ledger owns the ordered round entries of one game together with the
// history pointer. All mutation happens on the device's single logical
// thread of control, so the ledger itself carries no locking.
type Ledger struct {
	clock      clockwork.Clock
	confirm    ConfirmFunc
	maxEntries int

	entries []models.RoundEntry
	pointer int
	lastNav time.Time
}

// New creates an empty ledger. A nil confirm func means corrections
// proceed without gating.
func New(clock clockwork.Clock, confirm ConfirmFunc) *Ledger {
	return &Ledger{
		clock:      clock,
		confirm:    confirm,
		maxEntries: defaultMaxEntries,
		pointer:    -1,
	}
}

// SetMaxEntries overrides the retained-entry cap.
func (l *Ledger) SetMaxEntries(n int) {
	if n > 0 {
		l.maxEntries = n
	}
}

// Len returns the number of retained entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Pointer returns the current history pointer, -1 meaning "before the
// first round".
func (l *Ledger) Pointer() int { return l.pointer }

// RoundNumber returns the logical round number at the pointer, zero
// when no round is selected.
func (l *Ledger) RoundNumber() int { return l.pointer + 1 }

// AtTip reports whether the pointer sits on the newest entry.
func (l *Ledger) AtTip() bool { return l.pointer == len(l.entries)-1 }

// Append records a completed round. When the pointer is not at the tip
// this is a correction: the shadowed suffix is discarded (behind the
// confirmation gate) and its round ids are returned so the caller can
// request their remote deactivation.
func (l *Ledger) Append(delta Delta) (*models.RoundEntry, []int64, error) {
	if err := validateDelta(delta); err != nil {
		return nil, nil, err
	}

	var discarded []int64
	if l.pointer < len(l.entries)-1 {
		if l.confirm != nil && !l.confirm() {
			l.pointer = len(l.entries) - 1
			return nil, nil, ErrCorrectionDeclined
		}
		for _, e := range l.entries[l.pointer+1:] {
			discarded = append(discarded, e.RoundID)
		}
		l.entries = l.entries[:l.pointer+1]
	}

	entry := l.buildEntry(delta)
	l.entries = append(l.entries, entry)
	l.pointer = len(l.entries) - 1
	l.trim()

	// A genuine round completion is exempt from the navigation
	// cooldown; reset it so the user can navigate right away.
	l.lastNav = time.Time{}

	// Return a detached copy: a later correction overwrites the slot in
	// the backing array, and callers hand entries to goroutines.
	out := l.entries[l.pointer]
	return &out, discarded, nil
}

func (l *Ledger) buildEntry(delta Delta) models.RoundEntry {
	var prev *models.RoundEntry
	if l.pointer >= 0 {
		prev = &l.entries[l.pointer]
	}

	entry := models.RoundEntry{
		RoundID:         l.clock.Now().UnixMilli(),
		RoundNumber:     len(l.entries) + 1,
		StartingPlayer:  delta.StartingPlayer,
		DeltaJassPoints: delta.Jass,
		DeltaWeisPoints: delta.Weis,
		TrumpColor:      delta.Trump,
		StrokeAward:     delta.StrokeAward,
	}

	if prev != nil {
		if entry.RoundID <= prev.RoundID {
			entry.RoundID = prev.RoundID + 1
		}
		id := prev.RoundID
		entry.PreviousRoundID = &id
		entry.CumulativeScores = scoring.ClampValues(prev.CumulativeScores.Plus(delta.Jass))
		entry.CumulativeWeis = scoring.ClampValues(prev.CumulativeWeis.Plus(delta.Weis))
		entry.CumulativeStriche = prev.CumulativeStriche.Clone()
	} else {
		entry.CumulativeScores = scoring.ClampValues(delta.Jass)
		entry.CumulativeWeis = scoring.ClampValues(delta.Weis)
		entry.CumulativeStriche = models.NewTeamStrikes()
	}

	if delta.StrokeAward != nil {
		entry.CumulativeStriche.CountsFor(delta.StrokeAward.Team)[delta.StrokeAward.Kind]++
	}

	return entry
}

func (l *Ledger) trim() {
	if len(l.entries) <= l.maxEntries {
		return
	}
	overflow := len(l.entries) - l.maxEntries
	l.entries = append([]models.RoundEntry(nil), l.entries[overflow:]...)
	l.pointer -= overflow
}

// Navigate moves the history pointer, clamped to [-1, len-1]. Repeated
// calls within the cooldown window are ignored. Returns whether the
// pointer moved.
func (l *Ledger) Navigate(dir Direction) bool {
	now := l.clock.Now()
	if !l.lastNav.IsZero() && now.Sub(l.lastNav) < navCooldown {
		return false
	}
	l.lastNav = now

	switch dir {
	case Forward:
		if l.pointer < len(l.entries)-1 {
			l.pointer++
			return true
		}
	case Backward:
		if l.pointer > -1 {
			l.pointer--
			return true
		}
	}
	return false
}

// EntryAt returns the entry at the given index. An index outside
// [0, len-1] is a programming error and panics.
func (l *Ledger) EntryAt(index int) models.RoundEntry {
	if index < 0 || index >= len(l.entries) {
		panic(fmt.Sprintf("ledger: entry index %d out of bounds [0, %d)", index, len(l.entries)))
	}
	return l.entries[index]
}

// Latest returns the newest entry, nil when the ledger is empty.
func (l *Ledger) Latest() *models.RoundEntry {
	if len(l.entries) == 0 {
		return nil
	}
	e := l.entries[len(l.entries)-1]
	return &e
}

// Current returns the entry at the history pointer, nil when the
// pointer sits before the first round.
func (l *Ledger) Current() *models.RoundEntry {
	if l.pointer == -1 {
		return nil
	}
	e := l.EntryAt(l.pointer)
	return &e
}

// TeamStandAt derives the stand for one team at the given index.
// Entries are pre-aggregated, so this is O(1). Index -1 yields the
// zero stand; anything below -1 or past the tip panics.
func (l *Ledger) TeamStandAt(index int, team models.Team) models.TeamStand {
	if index == -1 {
		return models.TeamStand{Strikes: models.StrikeCounts{}}
	}
	e := l.EntryAt(index)
	jass := e.CumulativeScores.ValueFor(team)
	weis := e.CumulativeWeis.ValueFor(team)
	return models.TeamStand{
		Strikes:    e.CumulativeStriche.CountsFor(team).Clone(),
		JassPoints: jass,
		WeisPoints: weis,
		Total:      jass + weis,
	}
}

// Entries returns a copy of the retained entries.
func (l *Ledger) Entries() []models.RoundEntry {
	return append([]models.RoundEntry(nil), l.entries...)
}

// ReplaceAll swaps the ledger contents for a remote-loaded branch and
// moves the pointer to the new tip. Used when a remote snapshot is
// adopted.
func (l *Ledger) ReplaceAll(entries []models.RoundEntry) {
	l.entries = append([]models.RoundEntry(nil), entries...)
	l.pointer = len(l.entries) - 1
	l.lastNav = time.Time{}
}

func validateDelta(delta Delta) error {
	if delta.Jass.Top < 0 || delta.Jass.Bottom < 0 {
		return &ValidationError{Field: "jass_points", Reason: "must not be negative"}
	}
	if delta.Weis.Top < 0 || delta.Weis.Bottom < 0 {
		return &ValidationError{Field: "weis_points", Reason: "must not be negative"}
	}
	if delta.StartingPlayer < 0 || delta.StartingPlayer >= models.NumSeats {
		return &ValidationError{Field: "starting_player", Reason: "seat out of range"}
	}
	if delta.Trump != nil && !models.ValidTrumpColor(*delta.Trump) {
		return &ValidationError{Field: "trump_color", Reason: fmt.Sprintf("unknown color %q", *delta.Trump)}
	}
	if delta.StrokeAward != nil {
		if !models.ValidStrokeKind(delta.StrokeAward.Kind) {
			return &ValidationError{Field: "stroke_award", Reason: fmt.Sprintf("unknown kind %q", delta.StrokeAward.Kind)}
		}
		if delta.StrokeAward.Team != models.TeamTop && delta.StrokeAward.Team != models.TeamBottom {
			return &ValidationError{Field: "stroke_award", Reason: fmt.Sprintf("unknown team %q", delta.StrokeAward.Team)}
		}
	}
	return nil
}
