package schedule

import (
	"sort"

	"github.com/aminebarka/7oumaligue-engine/internal/model"
)

// Standing is a team's accumulated record within its group, recomputed
// on demand from match results. It is a projection, never a source of
// truth.
type Standing struct {
	TeamID         string
	Played         int
	Wins           int
	Draws          int
	Losses         int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
}

// GroupStandings computes the ordered table of a group from the given
// matches. Both sides of every completed match are credited: a win is
// worth 3 points, a draw 1, a loss 0. Ordering is points, then goal
// difference, then goals for, with team ID as the final tiebreak so
// the result is deterministic.
func GroupStandings(group *model.Group, matches []model.Match) []Standing {
	index := make(map[string]*Standing, len(group.Teams))
	table := make([]Standing, len(group.Teams))
	for i, gt := range group.Teams {
		table[i] = Standing{TeamID: gt.TeamID}
		index[gt.TeamID] = &table[i]
	}

	for _, m := range matches {
		if m.GroupID != group.ID || !m.HasResult() {
			continue
		}
		home, okHome := index[m.HomeTeamID]
		away, okAway := index[m.AwayTeamID]
		if !okHome || !okAway {
			continue // match references a team outside the group
		}
		credit(home, *m.HomeScore, *m.AwayScore)
		credit(away, *m.AwayScore, *m.HomeScore)
	}

	sort.SliceStable(table, func(i, j int) bool {
		return standingLess(table[i], table[j])
	})
	return table
}

func credit(s *Standing, scored, conceded int) {
	s.Played++
	s.GoalsFor += scored
	s.GoalsAgainst += conceded
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst
	switch {
	case scored > conceded:
		s.Wins++
		s.Points += 3
	case scored == conceded:
		s.Draws++
		s.Points++
	default:
		s.Losses++
	}
}

func standingLess(a, b Standing) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDifference != b.GoalDifference {
		return a.GoalDifference > b.GoalDifference
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	return a.TeamID < b.TeamID
}

// QualifiedTeams returns the team IDs advancing to the knockout phase:
// the top two of every group, then the two best third-placed teams
// across all groups, compared by the same points, goal difference,
// goals-for ordering.
//
// Fewer than 8 qualifiers is a normal outcome, not an error; the
// caller checks the length before seeding an 8-team bracket.
func QualifiedTeams(t *model.Tournament, matches []model.Match) []string {
	qualified := make([]string, 0, 2*len(t.Groups)+2)
	thirds := make([]Standing, 0, len(t.Groups))

	for i := range t.Groups {
		table := GroupStandings(&t.Groups[i], matches)
		for j := 0; j < 2 && j < len(table); j++ {
			qualified = append(qualified, table[j].TeamID)
		}
		if len(table) > 2 {
			thirds = append(thirds, table[2])
		}
	}

	sort.SliceStable(thirds, func(i, j int) bool {
		return standingLess(thirds[i], thirds[j])
	})
	for i := 0; i < 2 && i < len(thirds); i++ {
		qualified = append(qualified, thirds[i].TeamID)
	}

	return qualified
}
