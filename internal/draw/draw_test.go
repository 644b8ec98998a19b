package draw

import (
	"fmt"
	"math"
	"testing"

	"github.com/aminebarka/7oumaligue-engine/internal/model"
)

func makeTeam(id string, levels ...int) model.Team {
	t := model.Team{ID: id, Name: "Team " + id}
	for i, lvl := range levels {
		t.Players = append(t.Players, model.Player{
			ID:     fmt.Sprintf("%s-p%d", id, i),
			Name:   fmt.Sprintf("Player %s-%d", id, i),
			Level:  lvl,
			TeamID: id,
		})
	}
	return t
}

func TestComputeTeamStrength(t *testing.T) {
	t.Run("averages player levels", func(t *testing.T) {
		s := ComputeTeamStrength(makeTeam("a", 2, 3, 4).Players)
		if s.PlayerCount != 3 {
			t.Errorf("PlayerCount = %d, want 3", s.PlayerCount)
		}
		if s.TotalLevel != 9 {
			t.Errorf("TotalLevel = %d, want 9", s.TotalLevel)
		}
		if s.AvgLevel != 3.0 {
			t.Errorf("AvgLevel = %f, want 3.0", s.AvgLevel)
		}
	})

	t.Run("empty squad has zero strength", func(t *testing.T) {
		s := ComputeTeamStrength(nil)
		if s.AvgLevel != 0 || s.PlayerCount != 0 {
			t.Errorf("got %+v, want zero strength", s)
		}
	})
}

func TestBalanceScore(t *testing.T) {
	cfg := DefaultConfig()
	s := TeamStrength{PlayerCount: 5, TotalLevel: 15, AvgLevel: 3.0}

	got := s.BalanceScore(cfg)
	want := 3.0*0.7 + 5*0.3
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("BalanceScore = %f, want %f", got, want)
	}
}

func TestRankTeamsByStrength(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("orders strongest first", func(t *testing.T) {
		teams := []model.Team{
			makeTeam("weak", 1, 1, 1),
			makeTeam("strong", 5, 5, 5),
			makeTeam("mid", 3, 3, 3),
		}
		ranked := RankTeamsByStrength(teams, cfg)
		got := []string{ranked[0].ID, ranked[1].ID, ranked[2].ID}
		want := []string{"strong", "mid", "weak"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("rank %d = %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("breaks score ties on team ID", func(t *testing.T) {
		teams := []model.Team{
			makeTeam("b", 3, 3),
			makeTeam("a", 3, 3),
		}
		ranked := RankTeamsByStrength(teams, cfg)
		if ranked[0].ID != "a" || ranked[1].ID != "b" {
			t.Errorf("tied teams ordered %s, %s; want a, b", ranked[0].ID, ranked[1].ID)
		}
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		teams := []model.Team{
			makeTeam("weak", 1),
			makeTeam("strong", 5),
		}
		RankTeamsByStrength(teams, cfg)
		if teams[0].ID != "weak" {
			t.Errorf("input slice reordered, first team is now %s", teams[0].ID)
		}
	})
}

func TestAssignTeamsToGroups(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("serpentine over two groups", func(t *testing.T) {
		teams := []model.Team{
			makeTeam("t1", 5), makeTeam("t2", 4),
			makeTeam("t3", 3), makeTeam("t4", 2),
		}
		ranked := RankTeamsByStrength(teams, cfg)
		groups, err := AssignTeamsToGroups(ranked, 2)
		if err != nil {
			t.Fatalf("AssignTeamsToGroups: %v", err)
		}

		// 1st and 4th strongest share a group, 2nd and 3rd share the other.
		if groups[0][0].ID != "t1" || groups[0][1].ID != "t4" {
			t.Errorf("group 0 = %s, %s; want t1, t4", groups[0][0].ID, groups[0][1].ID)
		}
		if groups[1][0].ID != "t2" || groups[1][1].ID != "t3" {
			t.Errorf("group 1 = %s, %s; want t2, t3", groups[1][0].ID, groups[1][1].ID)
		}
	})

	t.Run("every team lands in exactly one group", func(t *testing.T) {
		for _, tc := range []struct {
			teams  int
			groups int
		}{
			{4, 2}, {12, 3}, {13, 3}, {16, 4}, {7, 2},
		} {
			name := fmt.Sprintf("%d teams %d groups", tc.teams, tc.groups)
			t.Run(name, func(t *testing.T) {
				var teams []model.Team
				for i := 0; i < tc.teams; i++ {
					teams = append(teams, makeTeam(fmt.Sprintf("t%02d", i), i%5+1))
				}
				groups, err := AssignTeamsToGroups(teams, tc.groups)
				if err != nil {
					t.Fatalf("AssignTeamsToGroups: %v", err)
				}
				seen := make(map[string]int)
				total := 0
				for _, g := range groups {
					for _, team := range g {
						seen[team.ID]++
						total++
					}
				}
				if total != tc.teams {
					t.Errorf("placed %d teams, want %d", total, tc.teams)
				}
				for id, n := range seen {
					if n != 1 {
						t.Errorf("team %s placed %d times", id, n)
					}
				}
			})
		}
	})

	t.Run("rejects zero groups", func(t *testing.T) {
		_, err := AssignTeamsToGroups([]model.Team{makeTeam("a", 3)}, 0)
		if err == nil {
			t.Fatal("expected error for zero groups")
		}
	})

	t.Run("rejects empty team list", func(t *testing.T) {
		_, err := AssignTeamsToGroups(nil, 2)
		if err == nil {
			t.Fatal("expected error for empty team list")
		}
	})
}

func TestMeasureGroupBalance(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("identical groups are balanced", func(t *testing.T) {
		groups := [][]model.Team{
			{makeTeam("a", 3, 3), makeTeam("b", 3, 3)},
			{makeTeam("c", 3, 3), makeTeam("d", 3, 3)},
		}
		b := MeasureGroupBalance(groups, cfg)
		if !b.IsBalanced {
			t.Errorf("IsBalanced = false, StdDev = %f", b.StdDev)
		}
		if b.StdDev != 0 {
			t.Errorf("StdDev = %f, want 0", b.StdDev)
		}
	})

	t.Run("lopsided groups are not balanced", func(t *testing.T) {
		groups := [][]model.Team{
			{makeTeam("a", 5, 5), makeTeam("b", 5, 5)},
			{makeTeam("c", 1, 1), makeTeam("d", 1, 1)},
		}
		b := MeasureGroupBalance(groups, cfg)
		if b.IsBalanced {
			t.Errorf("IsBalanced = true with StdDev %f", b.StdDev)
		}
		if b.StdDev != 2.0 {
			t.Errorf("StdDev = %f, want 2.0", b.StdDev)
		}
	})
}

func TestDistributePlayers(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("spreads levels across teams", func(t *testing.T) {
		// 12 free agents over 4 empty teams: 3 players each, with
		// the average levels kept close together.
		var players []model.Player
		levels := []int{5, 5, 5, 1, 1, 1, 3, 3, 3, 2, 2, 2}
		for i, lvl := range levels {
			players = append(players, model.Player{
				ID:    fmt.Sprintf("p%02d", i),
				Name:  fmt.Sprintf("Player %d", i),
				Level: lvl,
			})
		}
		teams := []model.Team{
			{ID: "t1", Name: "Team 1"},
			{ID: "t2", Name: "Team 2"},
			{ID: "t3", Name: "Team 3"},
			{ID: "t4", Name: "Team 4"},
		}

		assignments := DistributePlayers(players, teams, cfg)
		if len(assignments) != len(players) {
			t.Fatalf("assigned %d players, want %d", len(assignments), len(players))
		}

		levelByPlayer := make(map[string]int, len(players))
		for _, p := range players {
			levelByPlayer[p.ID] = p.Level
		}

		count := make(map[string]int)
		sum := make(map[string]int)
		for _, a := range assignments {
			count[a.TeamID]++
			sum[a.TeamID] += levelByPlayer[a.PlayerID]
		}

		var minAvg, maxAvg float64 = math.MaxFloat64, 0
		for _, team := range teams {
			if count[team.ID] != 3 {
				t.Errorf("team %s got %d players, want 3", team.ID, count[team.ID])
			}
			avg := float64(sum[team.ID]) / float64(count[team.ID])
			minAvg = math.Min(minAvg, avg)
			maxAvg = math.Max(maxAvg, avg)
		}
		if spread := maxAvg - minAvg; spread > 1.01 {
			t.Errorf("average level spread = %f, want <= 1.01", spread)
		}
	})

	t.Run("remainder goes to the weakest teams", func(t *testing.T) {
		players := []model.Player{
			{ID: "p1", Level: 3},
			{ID: "p2", Level: 3},
			{ID: "p3", Level: 3},
		}
		teams := []model.Team{
			makeTeam("strong", 5, 5),
			{ID: "empty", Name: "Empty"},
		}

		assignments := DistributePlayers(players, teams, cfg)
		count := make(map[string]int)
		for _, a := range assignments {
			count[a.TeamID]++
		}
		if count["empty"] != 2 || count["strong"] != 1 {
			t.Errorf("distribution = %v, want empty:2 strong:1", count)
		}
	})

	t.Run("no players yields no assignments", func(t *testing.T) {
		if got := DistributePlayers(nil, []model.Team{makeTeam("a", 3)}, cfg); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})

	t.Run("no teams yields no assignments", func(t *testing.T) {
		players := []model.Player{{ID: "p1", Level: 3}}
		if got := DistributePlayers(players, nil, cfg); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})
}
