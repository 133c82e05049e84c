package models

// TrumpColor defines the trump announced for a round. A weis-only
// entry carries no trump color.
type TrumpColor string

const (
	TrumpSchellen TrumpColor = "SCHELLEN"
	TrumpSchilten TrumpColor = "SCHILTEN"
	TrumpEicheln  TrumpColor = "EICHELN"
	TrumpRosen    TrumpColor = "ROSEN"
	TrumpObenabe  TrumpColor = "OBENABE"
	TrumpUndenufe TrumpColor = "UNDENUFE"
)

// ValidTrumpColor reports whether the color is a known trump.
func ValidTrumpColor(c TrumpColor) bool {
	switch c {
	case TrumpSchellen, TrumpSchilten, TrumpEicheln, TrumpRosen, TrumpObenabe, TrumpUndenufe:
		return true
	default:
		return false
	}
}

// StrokeKind defines the tally-mark categories a team can collect.
type StrokeKind string

const (
	StrokeBerg        StrokeKind = "BERG"
	StrokeSieg        StrokeKind = "SIEG"
	StrokeMatch       StrokeKind = "MATCH"
	StrokeKonterMatch StrokeKind = "KONTER_MATCH"
)

// ValidStrokeKind reports whether the kind is a known category.
func ValidStrokeKind(k StrokeKind) bool {
	switch k {
	case StrokeBerg, StrokeSieg, StrokeMatch, StrokeKonterMatch:
		return true
	default:
		return false
	}
}

// StrokeAward records a tally mark granted alongside a round.
type StrokeAward struct {
	Team Team       `json:"team"`
	Kind StrokeKind `json:"kind"`
}

// StrikeCounts holds raw tally counts per category.
type StrikeCounts map[StrokeKind]int

// Clone returns an independent copy of the counts.
func (s StrikeCounts) Clone() StrikeCounts {
	out := make(StrikeCounts, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// TeamStrikes holds per-team tally counts.
type TeamStrikes struct {
	Top    StrikeCounts `json:"top"`
	Bottom StrikeCounts `json:"bottom"`
}

// Clone returns an independent copy of both teams' counts.
func (t TeamStrikes) Clone() TeamStrikes {
	return TeamStrikes{Top: t.Top.Clone(), Bottom: t.Bottom.Clone()}
}

// CountsFor returns the counts for the given team.
func (t TeamStrikes) CountsFor(team Team) StrikeCounts {
	if team == TeamTop {
		return t.Top
	}
	return t.Bottom
}

// NewTeamStrikes returns empty counts for both teams.
func NewTeamStrikes() TeamStrikes {
	return TeamStrikes{Top: StrikeCounts{}, Bottom: StrikeCounts{}}
}

// RoundEntry is an immutable snapshot taken at round completion.
// Cumulative fields are pre-aggregated so reading a team stand at any
// ledger position never requires replaying deltas.
type RoundEntry struct {
	RoundID           int64        `json:"round_id"`
	RoundNumber       int          `json:"round_number"`
	StartingPlayer    int          `json:"starting_player"`
	CumulativeScores  TeamValues   `json:"cumulative_scores"`
	CumulativeWeis    TeamValues   `json:"cumulative_weis"`
	CumulativeStriche TeamStrikes  `json:"cumulative_striche"`
	DeltaJassPoints   TeamValues   `json:"delta_jass_points"`
	DeltaWeisPoints   TeamValues   `json:"delta_weis_points"`
	TrumpColor        *TrumpColor  `json:"trump_color,omitempty"`
	StrokeAward       *StrokeAward `json:"stroke_award,omitempty"`
	PreviousRoundID   *int64       `json:"previous_round_id,omitempty"`
}

// TotalFor returns jass plus weis points for the given team.
func (e RoundEntry) TotalFor(team Team) int {
	return e.CumulativeScores.ValueFor(team) + e.CumulativeWeis.ValueFor(team)
}
