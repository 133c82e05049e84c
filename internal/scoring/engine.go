package scoring

import (
	"github.com/mhugentobler/jasstafel/internal/models"
)

// Thresholds holds the configurable milestones a team plays toward.
// First is the "Berg", Final the winning score. Second only matters
// once the opposing team has already reached the first milestone.
type Thresholds struct {
	First         int  `json:"first" yaml:"first"`
	Second        int  `json:"second" yaml:"second"`
	Final         int  `json:"final" yaml:"final"`
	FirstEnabled  bool `json:"first_enabled" yaml:"first_enabled"`
	SecondEnabled bool `json:"second_enabled" yaml:"second_enabled"`
}

// DefaultThresholds returns the classic 2500/5000 configuration with
// the intermediate milestone disabled.
func DefaultThresholds() Thresholds {
	return Thresholds{
		First:        2500,
		Second:       3750,
		Final:        5000,
		FirstEnabled: true,
	}
}

// TargetLabel names the milestone a team is currently playing toward.
type TargetLabel string

const (
	TargetFirst  TargetLabel = "FIRST_MILESTONE"
	TargetSecond TargetLabel = "SECOND_MILESTONE"
	TargetFinal  TargetLabel = "FINAL_MILESTONE"
)

// Target computes the active milestone and remaining points for the
// queried team, given the cumulative totals of both teams.
//
// Precedence:
//  1. first milestone disabled entirely: target is the final milestone
//  2. queried team already reached the first milestone: final
//  3. opposing team reached the first milestone: second when enabled
//     and not yet reached; final when enabled and already reached;
//     still the first milestone when no second milestone is configured
//  4. otherwise: first
func Target(totals models.TeamValues, team models.Team, th Thresholds) (TargetLabel, int) {
	mine := totals.ValueFor(team)
	theirs := totals.ValueFor(team.Opponent())

	label := TargetFinal
	switch {
	case !th.FirstEnabled:
	case mine >= th.First:
	case theirs >= th.First:
		switch {
		case !th.SecondEnabled:
			label = TargetFirst
		case mine < th.Second:
			label = TargetSecond
		}
	default:
		label = TargetFirst
	}

	var goal int
	switch label {
	case TargetFirst:
		goal = th.First
	case TargetSecond:
		goal = th.Second
	default:
		goal = th.Final
	}

	remaining := goal - mine
	if remaining < 0 {
		remaining = 0
	}
	return label, remaining
}

// ClampScore clamps a cumulative total to zero. The ledger never
// stores negative cumulative totals.
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// ClampValues clamps both teams' totals to zero.
func ClampValues(v models.TeamValues) models.TeamValues {
	return models.TeamValues{Top: ClampScore(v.Top), Bottom: ClampScore(v.Bottom)}
}
