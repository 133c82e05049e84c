package session

import (
	"github.com/mhugentobler/jasstafel/internal/models"
	"github.com/mhugentobler/jasstafel/internal/scoring"
)

// CurrentTeamStand returns the given team's stand at the history
// pointer. Before the first game or round it is the zero stand.
func (s *Session) CurrentTeamStand(team models.Team) models.TeamStand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teamStand(team)
}

// teamStand reads the stand at the pointer. The caller holds the
// session mutex.
func (s *Session) teamStand(team models.Team) models.TeamStand {
	if s.current == nil {
		return zeroStand()
	}
	led := s.current.Ledger
	return led.TeamStandAt(led.Pointer(), team)
}

// TallyView groups the given team's strikes into five-unit tally
// bundles per stroke kind, the shape the score board renders.
func (s *Session) TallyView(team models.Team) map[models.StrokeKind]scoring.TallyGroup {
	s.mu.Lock()
	counts := s.teamStand(team).Strikes
	s.mu.Unlock()

	view := make(map[models.StrokeKind]scoring.TallyGroup, len(counts))
	for kind, count := range counts {
		view[kind] = scoring.Group(count)
	}
	return view
}

// Target returns the milestone the given team is currently chasing and
// the points still missing, evaluated at the history pointer.
func (s *Session) Target(team models.Team) (scoring.TargetLabel, int) {
	s.mu.Lock()
	totals := models.TeamValues{
		Top:    s.teamStand(models.TeamTop).Total,
		Bottom: s.teamStand(models.TeamBottom).Total,
	}
	s.mu.Unlock()

	return scoring.Target(totals, team, s.cfg.Thresholds)
}

// TeamOf resolves a seat to its team under the session's seating.
func (s *Session) TeamOf(seat int) (models.Team, error) {
	return s.cfg.Teams.TeamOf(seat)
}
