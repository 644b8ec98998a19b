// Package model holds the plain data types shared by the engine packages.
// The engine only transforms snapshots of these values; it never owns
// their storage.
package model

import "time"

// Round labels a match's stage in the tournament.
type Round string

const (
	RoundGroups  Round = "Groupes"
	RoundQuarter Round = "1/4 de Finale"
	RoundSemi    Round = "1/2 Finale"
	RoundFinal   Round = "Finale"
)

// MatchStatus tracks the lifecycle of a match.
type MatchStatus string

const (
	StatusScheduled  MatchStatus = "scheduled"
	StatusInProgress MatchStatus = "in_progress"
	StatusCompleted  MatchStatus = "completed"
)

// Player is a registered player with an externally supplied skill level
// between 1 and 5. A player belongs to at most one team.
type Player struct {
	ID     string
	Name   string
	Level  int
	TeamID string
}

// Team is a squad with an ordered list of players.
type Team struct {
	ID      string
	Name    string
	Players []Player
}

// GroupTeam is the join record between a group and a member team,
// carrying the team's running statistics within that group.
type GroupTeam struct {
	TeamID       string
	Played       int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

// Group is a pool of teams that play a round robin among themselves.
// Within one tournament a team belongs to at most one group.
type Group struct {
	ID    string
	Name  string
	Teams []GroupTeam
}

// Match is a single fixture. GroupID is empty for knockout-phase
// matches. Scores are nil until a result has been recorded.
type Match struct {
	ID           string
	TournamentID string
	GroupID      string
	Day          int
	Date         time.Time
	Kickoff      string
	Venue        string
	Round        Round
	Status       MatchStatus
	HomeTeamID   string
	AwayTeamID   string
	HomeScore    *int
	AwayScore    *int
}

// HasResult reports whether both scores have been recorded.
func (m *Match) HasResult() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// Tournament is the aggregate the engine operates on.
type Tournament struct {
	ID        string
	Name      string
	StartDate time.Time
	Venue     string
	Teams     []Team
	Groups    []Group
}

// TeamByID returns the team with the given ID, if registered.
func (t *Tournament) TeamByID(id string) (Team, bool) {
	for _, team := range t.Teams {
		if team.ID == id {
			return team, true
		}
	}
	return Team{}, false
}

// GroupOf returns the group a team belongs to, if any.
func (t *Tournament) GroupOf(teamID string) (Group, bool) {
	for _, g := range t.Groups {
		for _, gt := range g.Teams {
			if gt.TeamID == teamID {
				return g, true
			}
		}
	}
	return Group{}, false
}
