// Package schedule builds the full match calendar of a tournament: a
// round-robin group phase with one match per calendar day rotating
// across groups, followed by a single-elimination knockout phase after
// a rest day. It also computes group standings and knockout
// qualification from recorded results.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/aminebarka/7oumaligue-engine/internal/bracket"
	"github.com/aminebarka/7oumaligue-engine/internal/model"
)

var (
	ErrNoGroups      = errors.New("tournament has no groups")
	ErrGroupTooSmall = errors.New("group needs at least 2 teams")
)

// Config holds the calendar parameters.
type Config struct {
	StartDate time.Time
	Kickoff   string // "20:00" when empty
	Venue     string
	RestDays  int // gap between group and knockout phase
}

// MatchSpec is one planned fixture. It is plain data: the caller
// realizes specs into persisted match rows.
type MatchSpec struct {
	GroupID    string // empty for knockout matches
	Day        int    // 1-based calendar day
	Date       time.Time
	Kickoff    string
	Venue      string
	Round      model.Round
	HomeTeamID string
	AwayTeamID string
}

// Schedule is the generated calendar of both phases.
type Schedule struct {
	GroupPhase []MatchSpec
	FinalPhase []MatchSpec
	TotalDays  int
}

// Generate produces the complete calendar for the tournament's groups:
// every group plays a full round robin, interleaved one match per day
// with a rotating group cursor, then seven knockout placeholder
// matches (4 quarterfinals, 2 semifinals, the final) follow after the
// configured rest days.
func Generate(t *model.Tournament, cfg Config) (*Schedule, error) {
	if len(t.Groups) == 0 {
		return nil, ErrNoGroups
	}

	kickoff := cfg.Kickoff
	if kickoff == "" {
		kickoff = "20:00"
	}

	// One pairing queue per group, in round order.
	queues := make([][][2]string, len(t.Groups))
	total := 0
	for i, g := range t.Groups {
		if len(g.Teams) < 2 {
			return nil, fmt.Errorf("%w: group %q has %d", ErrGroupTooSmall, g.Name, len(g.Teams))
		}
		ids := make([]string, len(g.Teams))
		for j, gt := range g.Teams {
			ids[j] = gt.TeamID
		}
		queues[i] = roundRobinPairings(ids)
		total += len(queues[i])
	}

	sched := &Schedule{GroupPhase: make([]MatchSpec, 0, total)}

	day := 0
	cursor := 0
	for len(sched.GroupPhase) < total {
		// Rotate to the next group that still has pairings left.
		for len(queues[cursor]) == 0 {
			cursor = (cursor + 1) % len(queues)
		}
		pair := queues[cursor][0]
		queues[cursor] = queues[cursor][1:]

		day++
		sched.GroupPhase = append(sched.GroupPhase, MatchSpec{
			GroupID:    t.Groups[cursor].ID,
			Day:        day,
			Date:       cfg.StartDate.AddDate(0, 0, day-1),
			Kickoff:    kickoff,
			Venue:      cfg.Venue,
			Round:      model.RoundGroups,
			HomeTeamID: pair[0],
			AwayTeamID: pair[1],
		})
		cursor = (cursor + 1) % len(queues)
	}

	// Knockout phase: one placeholder match per day after the rest gap.
	knockoutStart := day + cfg.RestDays
	codes := bracket.SlotCodes()
	sched.FinalPhase = make([]MatchSpec, 0, len(codes))
	for i, code := range codes {
		koDay := knockoutStart + i + 1
		sched.FinalPhase = append(sched.FinalPhase, MatchSpec{
			Day:        koDay,
			Date:       cfg.StartDate.AddDate(0, 0, koDay-1),
			Kickoff:    kickoff,
			Venue:      cfg.Venue,
			Round:      bracket.RoundOf(code),
			HomeTeamID: bracket.PlaceholderHome(code),
			AwayTeamID: bracket.PlaceholderAway(code),
		})
	}

	sched.TotalDays = knockoutStart + len(codes)
	return sched, nil
}

// roundRobinPairings returns every unordered pair of the given teams
// exactly once, ordered by the circle method so no team plays twice in
// the same round. An odd team count gets a rotating bye.
func roundRobinPairings(ids []string) [][2]string {
	work := ids
	if len(work)%2 != 0 {
		work = append(append([]string(nil), ids...), "") // bye slot
	}

	n := len(work)
	pairs := make([][2]string, 0, len(ids)*(len(ids)-1)/2)
	for round := 0; round < n-1; round++ {
		for m := 0; m < n/2; m++ {
			home := work[circleIndex(m, n, round)]
			away := work[circleIndex(n-1-m, n, round)]
			if home == "" || away == "" {
				continue // bye
			}
			// Even out the share of first-named matches.
			if m == 0 && round%2 != 0 {
				home, away = away, home
			}
			pairs = append(pairs, [2]string{home, away})
		}
	}
	return pairs
}

// circleIndex rotates an index per the round-robin circle method: the
// first position stays fixed while the rest rotate each round.
func circleIndex(index, length, round int) int {
	if index == 0 {
		return 0
	}
	index -= 1
	index -= round
	index += length - 1
	index %= length - 1
	return index + 1
}
