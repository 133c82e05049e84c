package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mhugentobler/jasstafel/internal/models"
)

func TestTargetPrecedence(t *testing.T) {
	th := Thresholds{First: 2500, Second: 3750, Final: 5000, FirstEnabled: true}

	tests := []struct {
		name          string
		totals        models.TeamValues
		team          models.Team
		secondEnabled bool
		wantLabel     TargetLabel
		wantRemaining int
	}{
		{
			name:          "nobody reached first",
			totals:        models.TeamValues{Top: 1200, Bottom: 900},
			team:          models.TeamTop,
			wantLabel:     TargetFirst,
			wantRemaining: 1300,
		},
		{
			name:          "queried team past first plays toward final",
			totals:        models.TeamValues{Top: 2600, Bottom: 1000},
			team:          models.TeamTop,
			wantLabel:     TargetFinal,
			wantRemaining: 2400,
		},
		{
			name:          "opponent past first, second disabled",
			totals:        models.TeamValues{Top: 2600, Bottom: 1000},
			team:          models.TeamBottom,
			wantLabel:     TargetFirst,
			wantRemaining: 1500,
		},
		{
			name:          "opponent past first, second enabled",
			totals:        models.TeamValues{Top: 2600, Bottom: 1000},
			team:          models.TeamBottom,
			secondEnabled: true,
			wantLabel:     TargetSecond,
			wantRemaining: 2750,
		},
		{
			name:          "opponent past first, second enabled but already reached",
			totals:        models.TeamValues{Top: 2600, Bottom: 3800},
			team:          models.TeamBottom,
			secondEnabled: true,
			wantLabel:     TargetFinal,
			wantRemaining: 1200,
		},
		{
			name:          "both past first play toward final",
			totals:        models.TeamValues{Top: 2600, Bottom: 2700},
			team:          models.TeamBottom,
			wantLabel:     TargetFinal,
			wantRemaining: 2300,
		},
		{
			name:          "remaining never negative",
			totals:        models.TeamValues{Top: 5400, Bottom: 2700},
			team:          models.TeamTop,
			wantLabel:     TargetFinal,
			wantRemaining: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := th
			cfg.SecondEnabled = tt.secondEnabled
			label, remaining := Target(tt.totals, tt.team, cfg)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.wantRemaining, remaining)
		})
	}
}

func TestTargetFirstMilestoneDisabled(t *testing.T) {
	th := Thresholds{First: 2500, Final: 5000}

	label, remaining := Target(models.TeamValues{Top: 100, Bottom: 4000}, models.TeamTop, th)
	assert.Equal(t, TargetFinal, label)
	assert.Equal(t, 4900, remaining)

	label, _ = Target(models.TeamValues{Top: 100, Bottom: 4000}, models.TeamBottom, th)
	assert.Equal(t, TargetFinal, label)
}

func TestTargetOpponentPrecedenceExample(t *testing.T) {
	// Team A at 2600, team B at 1000: B still plays toward the Berg.
	th := Thresholds{First: 2500, Final: 5000, FirstEnabled: true}
	totals := models.TeamValues{Top: 2600, Bottom: 1000}

	label, remaining := Target(totals, models.TeamBottom, th)
	assert.Equal(t, TargetFirst, label)
	assert.Equal(t, 1500, remaining)

	// Once B also crosses 2500, both play toward the final milestone.
	totals.Bottom = 2550
	label, _ = Target(totals, models.TeamBottom, th)
	assert.Equal(t, TargetFinal, label)
	label, _ = Target(totals, models.TeamTop, th)
	assert.Equal(t, TargetFinal, label)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-10))
	assert.Equal(t, 0, ClampScore(0))
	assert.Equal(t, 42, ClampScore(42))

	clamped := ClampValues(models.TeamValues{Top: -5, Bottom: 17})
	assert.Equal(t, models.TeamValues{Top: 0, Bottom: 17}, clamped)
}
