package models

import "fmt"

// Team identifies one of the two partnerships at the table.
type Team string

const (
	TeamTop    Team = "TOP"
	TeamBottom Team = "BOTTOM"
)

// Opponent returns the other partnership.
func (t Team) Opponent() Team {
	if t == TeamTop {
		return TeamBottom
	}
	return TeamTop
}

// NumSeats is the number of players at a Jass table.
const NumSeats = 4

// TeamConfig maps the four seats to their partnership. It is an
// immutable value passed into every scoring computation; there is no
// process-wide team lookup.
type TeamConfig struct {
	seats [NumSeats]Team
}

// NewTeamConfig builds a seat assignment. Exactly two seats must
// belong to each team.
func NewTeamConfig(seats [NumSeats]Team) (TeamConfig, error) {
	var top, bottom int
	for i, t := range seats {
		switch t {
		case TeamTop:
			top++
		case TeamBottom:
			bottom++
		default:
			return TeamConfig{}, fmt.Errorf("seat %d has invalid team: %s", i, t)
		}
	}
	if top != 2 || bottom != 2 {
		return TeamConfig{}, fmt.Errorf("teams must have two seats each, got %d/%d", top, bottom)
	}
	return TeamConfig{seats: seats}, nil
}

// DefaultTeamConfig seats partners across from each other: seats 0 and
// 2 form the top team, seats 1 and 3 the bottom team.
func DefaultTeamConfig() TeamConfig {
	return TeamConfig{seats: [NumSeats]Team{TeamTop, TeamBottom, TeamTop, TeamBottom}}
}

// TeamOf returns the team the given seat belongs to.
func (c TeamConfig) TeamOf(seat int) (Team, error) {
	if seat < 0 || seat >= NumSeats {
		return "", fmt.Errorf("seat %d out of range", seat)
	}
	return c.seats[seat], nil
}

// TeamValues holds one integer per partnership, used for scores, weis
// points and point deltas.
type TeamValues struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// ValueFor returns the value for the given team.
func (v TeamValues) ValueFor(team Team) int {
	if team == TeamTop {
		return v.Top
	}
	return v.Bottom
}

// Plus returns the element-wise sum of two value pairs.
func (v TeamValues) Plus(other TeamValues) TeamValues {
	return TeamValues{Top: v.Top + other.Top, Bottom: v.Bottom + other.Bottom}
}
