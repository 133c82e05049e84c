package models

import (
	"github.com/google/uuid"
)

// GameEntry is the metadata of one played game within a session. The
// round ledger itself is owned by the ledger package; the cached team
// stands here are derived and refreshed after every ledger mutation.
type GameEntry struct {
	ID              uuid.UUID `json:"id"`
	GameNumber      int       `json:"game_number"`
	StartingPlayer  int       `json:"starting_player"`
	TeamStandTop    TeamStand `json:"team_stand_top"`
	TeamStandBottom TeamStand `json:"team_stand_bottom"`
	IsCompleted     bool      `json:"is_completed"`
}

// StandFor returns the cached stand for the given team.
func (g *GameEntry) StandFor(team Team) TeamStand {
	if team == TeamTop {
		return g.TeamStandTop
	}
	return g.TeamStandBottom
}

// SetStand caches the derived stand for the given team.
func (g *GameEntry) SetStand(team Team, stand TeamStand) {
	if team == TeamTop {
		g.TeamStandTop = stand
	} else {
		g.TeamStandBottom = stand
	}
}

// TeamStand is the derived standing of one team. It is never
// independently authoritative; it is recomputed from the round ledger.
type TeamStand struct {
	Strikes    StrikeCounts `json:"strikes"`
	JassPoints int          `json:"jass_points"`
	WeisPoints int          `json:"weis_points"`
	Total      int          `json:"total"`
}
