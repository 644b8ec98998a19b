// Package draw balances teams into groups and distributes free-agent
// players across teams so that average skill levels come out as equal
// as possible. Both algorithms are greedy heuristics, not optimal
// partitions: truly balanced partitioning is NP-hard for arbitrary
// weights and the greedy pass is adequate for league-sized inputs.
package draw

import (
	"errors"
	"math"
	"sort"

	"github.com/aminebarka/7oumaligue-engine/internal/model"
)

var (
	ErrNoGroups = errors.New("group count must be at least 1")
	ErrNoTeams  = errors.New("no teams to assign")
)

// Config holds the balancing weights and threshold.
type Config struct {
	// AvgLevelWeight and SquadSizeWeight combine into the balance
	// score: avgLevel*AvgLevelWeight + playerCount*SquadSizeWeight.
	AvgLevelWeight  float64
	SquadSizeWeight float64

	// BalancedStdDev is the standard deviation of group average
	// levels under which a draw is considered balanced.
	BalancedStdDev float64
}

// DefaultConfig returns the historical weights: skill-dominant scoring
// with squad size as a secondary factor.
func DefaultConfig() Config {
	return Config{AvgLevelWeight: 0.7, SquadSizeWeight: 0.3, BalancedStdDev: 1.0}
}

// TeamStrength is the derived aggregate of a team's current players.
type TeamStrength struct {
	PlayerCount int
	TotalLevel  int
	AvgLevel    float64
}

// BalanceScore orders teams for greedy assignment.
func (s TeamStrength) BalanceScore(cfg Config) float64 {
	return s.AvgLevel*cfg.AvgLevelWeight + float64(s.PlayerCount)*cfg.SquadSizeWeight
}

// ComputeTeamStrength aggregates player levels. A team without players
// has an average level of zero.
func ComputeTeamStrength(players []model.Player) TeamStrength {
	strength := TeamStrength{PlayerCount: len(players)}
	for _, p := range players {
		strength.TotalLevel += p.Level
	}
	if strength.PlayerCount > 0 {
		strength.AvgLevel = float64(strength.TotalLevel) / float64(strength.PlayerCount)
	}
	return strength
}

// RankTeamsByStrength returns the teams ordered by descending balance
// score. Ties break on team ID so repeated calls are deterministic.
func RankTeamsByStrength(teams []model.Team, cfg Config) []model.Team {
	ranked := make([]model.Team, len(teams))
	copy(ranked, teams)

	scores := make(map[string]float64, len(ranked))
	for _, t := range ranked {
		scores[t.ID] = ComputeTeamStrength(t.Players).BalanceScore(cfg)
	}

	sort.Slice(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i].ID], scores[ranked[j].ID]
		if si != sj {
			return si > sj
		}
		return ranked[i].ID < ranked[j].ID
	})

	return ranked
}

// AssignTeamsToGroups partitions teams into groupCount groups with a
// serpentine draft: the draft direction flips every pass over the
// groups so consecutively ranked teams spread across groups instead of
// stacking in the first one. The input order is taken as the ranking;
// callers sort with RankTeamsByStrength first.
//
// The output is always a partition of the input with group sizes
// differing by at most one.
func AssignTeamsToGroups(teams []model.Team, groupCount int) ([][]model.Team, error) {
	if groupCount < 1 {
		return nil, ErrNoGroups
	}
	if len(teams) == 0 {
		return nil, ErrNoTeams
	}

	groups := make([][]model.Team, groupCount)
	for i, team := range teams {
		round := i / groupCount
		pos := i % groupCount
		if round%2 != 0 {
			pos = groupCount - 1 - pos
		}
		groups[pos] = append(groups[pos], team)
	}

	return groups, nil
}

// Balance is the result of measuring a draw.
type Balance struct {
	StdDev     float64
	IsBalanced bool
}

// MeasureGroupBalance computes the population standard deviation of the
// groups' aggregate average levels and compares it against the
// configured threshold. Empty groups count with an average of zero.
func MeasureGroupBalance(groups [][]model.Team, cfg Config) Balance {
	if len(groups) == 0 {
		return Balance{IsBalanced: true}
	}

	averages := make([]float64, len(groups))
	for i, group := range groups {
		totalLevel, totalPlayers := 0, 0
		for _, team := range group {
			s := ComputeTeamStrength(team.Players)
			totalLevel += s.TotalLevel
			totalPlayers += s.PlayerCount
		}
		if totalPlayers > 0 {
			averages[i] = float64(totalLevel) / float64(totalPlayers)
		}
	}

	mean := 0.0
	for _, a := range averages {
		mean += a
	}
	mean /= float64(len(averages))

	variance := 0.0
	for _, a := range averages {
		variance += (a - mean) * (a - mean)
	}
	variance /= float64(len(averages))

	stdDev := math.Sqrt(variance)
	return Balance{StdDev: stdDev, IsBalanced: stdDev < cfg.BalancedStdDev}
}

// Assignment attaches a free-agent player to a team.
type Assignment struct {
	PlayerID string
	TeamID   string
}

// tally tracks a team's running strength during distribution.
type tally struct {
	teamID      string
	playerCount int
	totalLevel  int
}

func (t *tally) score(cfg Config) float64 {
	avg := 0.0
	if t.playerCount > 0 {
		avg = float64(t.totalLevel) / float64(t.playerCount)
	}
	return avg*cfg.AvgLevelWeight + float64(t.playerCount)*cfg.SquadSizeWeight
}

// DistributePlayers spreads free-agent players across the given teams
// so squads end up near-equal in size and average level.
//
// The pass works in rounds of one player per team. Within a round the
// teams are ordered ascending by current balance score (weakest first
// receives next); the direction reverses every other round so repeated
// score ties do not systematically favor the same team. Remainder
// players go one each to the weakest teams. Every assignment updates
// the receiving team's running tally immediately, so later ordering
// decisions see the latest state.
//
// Empty player or team input is a no-op returning nil.
func DistributePlayers(players []model.Player, teams []model.Team, cfg Config) []Assignment {
	if len(players) == 0 || len(teams) == 0 {
		return nil
	}

	tallies := make([]*tally, len(teams))
	for i, team := range teams {
		s := ComputeTeamStrength(team.Players)
		tallies[i] = &tally{teamID: team.ID, playerCount: s.PlayerCount, totalLevel: s.TotalLevel}
	}

	assignments := make([]Assignment, 0, len(players))
	next := 0
	assign := func(t *tally) {
		p := players[next]
		next++
		assignments = append(assignments, Assignment{PlayerID: p.ID, TeamID: t.teamID})
		t.playerCount++
		t.totalLevel += p.Level
	}

	fullRounds := len(players) / len(teams)
	remainder := len(players) % len(teams)

	for round := 0; round < fullRounds; round++ {
		order := sortedTallies(tallies, cfg)
		if round%2 != 0 {
			reverse(order)
		}
		for _, t := range order {
			assign(t)
		}
	}

	for _, t := range sortedTallies(tallies, cfg)[:remainder] {
		assign(t)
	}

	return assignments
}

// sortedTallies returns the tallies ascending by score, ties broken on
// team ID for determinism.
func sortedTallies(tallies []*tally, cfg Config) []*tally {
	order := make([]*tally, len(tallies))
	copy(order, tallies)
	sort.Slice(order, func(i, j int) bool {
		si, sj := order[i].score(cfg), order[j].score(cfg)
		if si != sj {
			return si < sj
		}
		return order[i].teamID < order[j].teamID
	})
	return order
}

func reverse(tallies []*tally) {
	for i, j := 0, len(tallies)-1; i < j; i, j = i+1, j-1 {
		tallies[i], tallies[j] = tallies[j], tallies[i]
	}
}
