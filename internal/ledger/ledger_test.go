package ledger

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhugentobler/jasstafel/internal/models"
)

func testDelta(top, bottom int) Delta {
	trump := models.TrumpEicheln
	return Delta{
		Jass:           models.TeamValues{Top: top, Bottom: bottom},
		Trump:          &trump,
		StartingPlayer: 0,
	}
}

func appendN(t *testing.T, l *Ledger, clock *clockwork.FakeClock, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		clock.Advance(time.Second)
		_, _, err := l.Append(testDelta(100+i, 57))
		require.NoError(t, err)
	}
}

func TestAppendMonotonicity(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)

	var prevID int64
	for i := 0; i < 10; i++ {
		clock.Advance(time.Second)
		entry, discarded, err := l.Append(testDelta(120, 37))
		require.NoError(t, err)
		assert.Empty(t, discarded)
		assert.Greater(t, entry.RoundID, prevID)
		assert.Equal(t, i+1, entry.RoundNumber)
		assert.Equal(t, l.Len()-1, l.Pointer())
		prevID = entry.RoundID
	}
}

func TestAppendRoundIDCollisionBumps(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)

	first, _, err := l.Append(testDelta(50, 30))
	require.NoError(t, err)

	// Clock did not advance: same millisecond, id must still increase.
	second, _, err := l.Append(testDelta(60, 40))
	require.NoError(t, err)
	assert.Equal(t, first.RoundID+1, second.RoundID)
	require.NotNil(t, second.PreviousRoundID)
	assert.Equal(t, first.RoundID, *second.PreviousRoundID)
}

func TestAppendAccumulates(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)

	_, _, err := l.Append(testDelta(100, 57))
	require.NoError(t, err)
	clock.Advance(time.Second)

	award := &models.StrokeAward{Team: models.TeamTop, Kind: models.StrokeMatch}
	delta := testDelta(157, 0)
	delta.StrokeAward = award
	delta.Weis = models.TeamValues{Bottom: 20}
	entry, _, err := l.Append(delta)
	require.NoError(t, err)

	assert.Equal(t, models.TeamValues{Top: 257, Bottom: 57}, entry.CumulativeScores)
	assert.Equal(t, models.TeamValues{Top: 0, Bottom: 20}, entry.CumulativeWeis)
	assert.Equal(t, 1, entry.CumulativeStriche.Top[models.StrokeMatch])

	// Earlier entries stay untouched by the later stroke award.
	assert.Equal(t, 0, l.EntryAt(0).CumulativeStriche.Top[models.StrokeMatch])
}

func TestAppendValidation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)

	_, _, err := l.Append(Delta{Jass: models.TeamValues{Top: -5}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "jass_points", verr.Field)
	assert.Equal(t, 0, l.Len())

	bad := models.TrumpColor("HEARTS")
	_, _, err = l.Append(Delta{Trump: &bad})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "trump_color", verr.Field)

	_, _, err = l.Append(Delta{StartingPlayer: 7})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "starting_player", verr.Field)
}

func TestBranchOverwrite(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)
	appendN(t, l, clock, 6)

	// Navigate back to index 2 (pointer k=2, N=6).
	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		require.True(t, l.Navigate(Backward))
	}
	require.Equal(t, 2, l.Pointer())
	shadowed := []int64{l.EntryAt(3).RoundID, l.EntryAt(4).RoundID, l.EntryAt(5).RoundID}

	clock.Advance(time.Second)
	entry, discarded, err := l.Append(testDelta(80, 20))
	require.NoError(t, err)

	assert.Equal(t, 4, l.Len())
	assert.Equal(t, 3, l.Pointer())
	assert.Equal(t, 4, entry.RoundNumber)
	assert.Equal(t, shadowed, discarded)

	// Cumulative fields continue from the retained prefix.
	base := l.EntryAt(2)
	assert.Equal(t, base.CumulativeScores.Plus(models.TeamValues{Top: 80, Bottom: 20}), entry.CumulativeScores)
}

func TestBranchOverwriteConfirmationDeclined(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, func() bool { return false })
	appendN(t, l, clock, 4)

	clock.Advance(time.Second)
	require.True(t, l.Navigate(Backward))
	require.Equal(t, 2, l.Pointer())

	clock.Advance(time.Second)
	entry, discarded, err := l.Append(testDelta(10, 10))
	assert.ErrorIs(t, err, ErrCorrectionDeclined)
	assert.Nil(t, entry)
	assert.Empty(t, discarded)

	// Declining jumps the pointer back to the tip without mutating.
	assert.Equal(t, 4, l.Len())
	assert.Equal(t, 3, l.Pointer())
}

func TestBranchOverwriteConfirmationAccepted(t *testing.T) {
	clock := clockwork.NewFakeClock()
	asked := 0
	l := New(clock, func() bool { asked++; return true })
	appendN(t, l, clock, 4)

	clock.Advance(time.Second)
	require.True(t, l.Navigate(Backward))

	clock.Advance(time.Second)
	_, discarded, err := l.Append(testDelta(10, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, asked)
	assert.Len(t, discarded, 1)

	// Appending at the tip never consults the gate.
	clock.Advance(time.Second)
	_, _, err = l.Append(testDelta(10, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, asked)
}

func TestAppendReturnsDetachedCopy(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)

	first, _, err := l.Append(testDelta(100, 57))
	require.NoError(t, err)
	firstID := first.RoundID

	// A correction reuses the slot in the backing array; the entry
	// handed out earlier must not change underneath its holder.
	clock.Advance(time.Second)
	require.True(t, l.Navigate(Backward))
	clock.Advance(time.Second)
	corrected, _, err := l.Append(testDelta(9, 9))
	require.NoError(t, err)

	assert.Equal(t, firstID, first.RoundID)
	assert.Equal(t, models.TeamValues{Top: 100, Bottom: 57}, first.CumulativeScores)
	assert.NotEqual(t, first.RoundID, corrected.RoundID)
	assert.Equal(t, models.TeamValues{Top: 9, Bottom: 9}, l.EntryAt(0).CumulativeScores)
}

func TestNavigateCooldown(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)
	appendN(t, l, clock, 3)

	clock.Advance(time.Second)
	require.True(t, l.Navigate(Backward))
	require.Equal(t, 1, l.Pointer())

	// Double-fire within 300ms is ignored.
	clock.Advance(100 * time.Millisecond)
	assert.False(t, l.Navigate(Backward))
	assert.Equal(t, 1, l.Pointer())

	clock.Advance(navCooldown)
	assert.True(t, l.Navigate(Backward))
	assert.Equal(t, 0, l.Pointer())
}

func TestNavigateCooldownExemptAfterAppend(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)
	appendN(t, l, clock, 2)

	clock.Advance(time.Second)
	require.True(t, l.Navigate(Backward))

	// A genuine round completion resets the cooldown.
	_, _, err := l.Append(testDelta(30, 30))
	require.NoError(t, err)
	assert.True(t, l.Navigate(Backward))
}

func TestNavigateClampsAtBounds(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)

	assert.False(t, l.Navigate(Backward))
	assert.Equal(t, -1, l.Pointer())

	appendN(t, l, clock, 1)
	clock.Advance(time.Second)
	assert.False(t, l.Navigate(Forward))
	assert.Equal(t, 0, l.Pointer())

	clock.Advance(time.Second)
	require.True(t, l.Navigate(Backward))
	clock.Advance(time.Second)
	assert.False(t, l.Navigate(Backward))
	assert.Equal(t, -1, l.Pointer())
}

func TestTeamStandAt(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)

	zero := l.TeamStandAt(-1, models.TeamTop)
	assert.Equal(t, 0, zero.Total)

	delta := testDelta(100, 57)
	delta.Weis = models.TeamValues{Top: 20}
	delta.StrokeAward = &models.StrokeAward{Team: models.TeamTop, Kind: models.StrokeBerg}
	_, _, err := l.Append(delta)
	require.NoError(t, err)

	stand := l.TeamStandAt(0, models.TeamTop)
	assert.Equal(t, 100, stand.JassPoints)
	assert.Equal(t, 20, stand.WeisPoints)
	assert.Equal(t, 120, stand.Total)
	assert.Equal(t, 1, stand.Strikes[models.StrokeBerg])
}

func TestEntryAtOutOfBoundsPanics(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)
	appendN(t, l, clock, 1)

	assert.Panics(t, func() { l.EntryAt(5) })
	assert.Panics(t, func() { l.EntryAt(-1) })
	assert.Panics(t, func() { l.TeamStandAt(-2, models.TeamTop) })
}

func TestFrontTrim(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)
	l.SetMaxEntries(5)

	appendN(t, l, clock, 8)

	assert.Equal(t, 5, l.Len())
	assert.Equal(t, 4, l.Pointer())
	// The oldest entries were trimmed; the tip keeps the highest round number.
	assert.Equal(t, 8, l.Latest().RoundNumber)
	assert.Equal(t, 4, l.EntryAt(0).RoundNumber)
}

func TestReplaceAll(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock, nil)
	appendN(t, l, clock, 2)

	replacement := []models.RoundEntry{
		{RoundID: 1000, RoundNumber: 1, CumulativeStriche: models.NewTeamStrikes()},
		{RoundID: 1001, RoundNumber: 2, CumulativeStriche: models.NewTeamStrikes()},
		{RoundID: 1002, RoundNumber: 3, CumulativeStriche: models.NewTeamStrikes()},
	}
	l.ReplaceAll(replacement)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 2, l.Pointer())
	assert.Equal(t, int64(1002), l.Latest().RoundID)
}
