package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aminebarka/7oumaligue-engine/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTournament() *model.Tournament {
	return &model.Tournament{
		ID:        "t1",
		Name:      "Tournoi test",
		StartDate: time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Venue:     "Terrain municipal",
		Teams: []model.Team{
			{ID: "team-a", Name: "Les Aigles", Players: []model.Player{
				{ID: "p1", Name: "Amine", Level: 4, TeamID: "team-a"},
				{ID: "p2", Name: "Karim", Level: 2, TeamID: "team-a"},
			}},
			{ID: "team-b", Name: "Les Lions", Players: []model.Player{
				{ID: "p3", Name: "Sofien", Level: 3, TeamID: "team-b"},
			}},
		},
		Groups: []model.Group{
			{ID: "g1", Name: "Groupe A", Teams: []model.GroupTeam{
				{TeamID: "team-a"}, {TeamID: "team-b"},
			}},
		},
	}
}

func sampleMatch(id, groupID string, day int) model.Match {
	return model.Match{
		ID:           id,
		TournamentID: "t1",
		GroupID:      groupID,
		Day:          day,
		Date:         time.Date(2026, 9, 4+day, 0, 0, 0, 0, time.UTC),
		Kickoff:      "20:00",
		Venue:        "Terrain municipal",
		Round:        model.RoundGroups,
		Status:       model.StatusScheduled,
		HomeTeamID:   "team-a",
		AwayTeamID:   "team-b",
	}
}

func TestSaveLoadTournament(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	want := sampleTournament()
	if err := s.SaveTournament(ctx, want); err != nil {
		t.Fatalf("SaveTournament: %v", err)
	}

	got, err := s.LoadTournament(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadTournament: %v", err)
	}

	if got.Name != want.Name || got.Venue != want.Venue {
		t.Errorf("loaded %q at %q, want %q at %q", got.Name, got.Venue, want.Name, want.Venue)
	}
	if !got.StartDate.Equal(want.StartDate) {
		t.Errorf("StartDate = %v, want %v", got.StartDate, want.StartDate)
	}
	if len(got.Teams) != 2 {
		t.Fatalf("loaded %d teams, want 2", len(got.Teams))
	}
	if got.Teams[0].ID != "team-a" || len(got.Teams[0].Players) != 2 {
		t.Errorf("team order or players lost: %+v", got.Teams[0])
	}
	if got.Teams[0].Players[0].Name != "Amine" {
		t.Errorf("player order lost: %+v", got.Teams[0].Players)
	}
	if len(got.Groups) != 1 || len(got.Groups[0].Teams) != 2 {
		t.Fatalf("groups lost: %+v", got.Groups)
	}
	if got.Groups[0].Teams[0].TeamID != "team-a" {
		t.Errorf("group member order lost: %+v", got.Groups[0].Teams)
	}
}

func TestSaveTournamentOverwrites(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := sampleTournament()
	if err := s.SaveTournament(ctx, first); err != nil {
		t.Fatalf("SaveTournament: %v", err)
	}

	second := sampleTournament()
	second.Name = "Tournoi v2"
	second.Teams = second.Teams[:1]
	second.Teams[0].Players = []model.Player{
		{ID: "p9", Name: "Youssef", Level: 5, TeamID: "team-a"},
	}
	second.Groups[0].Teams = second.Groups[0].Teams[:1]
	if err := s.SaveTournament(ctx, second); err != nil {
		t.Fatalf("SaveTournament again: %v", err)
	}

	got, err := s.LoadTournament(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadTournament: %v", err)
	}
	if got.Name != "Tournoi v2" {
		t.Errorf("Name = %q, want Tournoi v2", got.Name)
	}
	if len(got.Teams) != 1 {
		t.Fatalf("loaded %d teams after shrink, want 1", len(got.Teams))
	}
	if len(got.Teams[0].Players) != 1 || got.Teams[0].Players[0].ID != "p9" {
		t.Errorf("team-a players = %+v, want only p9", got.Teams[0].Players)
	}
	if len(got.Groups[0].Teams) != 1 || got.Groups[0].Teams[0].TeamID != "team-a" {
		t.Errorf("group members = %+v, want only team-a", got.Groups[0].Teams)
	}
}

func TestSaveTournamentIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.SaveTournament(ctx, sampleTournament()); err != nil {
			t.Fatalf("SaveTournament run %d: %v", i+1, err)
		}
	}

	got, err := s.LoadTournament(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadTournament: %v", err)
	}
	if len(got.Teams) != 2 || len(got.Teams[0].Players) != 2 {
		t.Errorf("re-save duplicated or lost rows: %d teams, %d players on the first",
			len(got.Teams), len(got.Teams[0].Players))
	}
	if len(got.Groups) != 1 || len(got.Groups[0].Teams) != 2 {
		t.Errorf("re-save corrupted groups: %+v", got.Groups)
	}
}

func TestLoadTournamentNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.LoadTournament(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReplacePhaseMatches(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveTournament(ctx, sampleTournament()); err != nil {
		t.Fatalf("SaveTournament: %v", err)
	}

	group := []model.Match{sampleMatch("m1", "g1", 1)}
	knockout := []model.Match{
		{
			ID: "k1", TournamentID: "t1", Day: 3,
			Date:    time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
			Kickoff: "20:00", Round: model.RoundFinal, Status: model.StatusScheduled,
			HomeTeamID: "FINAL_HOME", AwayTeamID: "FINAL_AWAY",
		},
	}
	if err := s.ReplacePhaseMatches(ctx, "t1", false, group); err != nil {
		t.Fatalf("ReplacePhaseMatches group: %v", err)
	}
	if err := s.ReplacePhaseMatches(ctx, "t1", true, knockout); err != nil {
		t.Fatalf("ReplacePhaseMatches knockout: %v", err)
	}

	t.Run("both phases persisted", func(t *testing.T) {
		matches, err := s.ListMatches(ctx, "t1")
		if err != nil {
			t.Fatalf("ListMatches: %v", err)
		}
		if len(matches) != 2 {
			t.Fatalf("got %d matches, want 2", len(matches))
		}
		if matches[0].ID != "m1" || matches[1].ID != "k1" {
			t.Errorf("matches out of day order: %s, %s", matches[0].ID, matches[1].ID)
		}
	})

	t.Run("regenerating one phase keeps the other", func(t *testing.T) {
		replacement := []model.Match{
			sampleMatch("m2", "g1", 1),
			sampleMatch("m3", "g1", 2),
		}
		if err := s.ReplacePhaseMatches(ctx, "t1", false, replacement); err != nil {
			t.Fatalf("ReplacePhaseMatches: %v", err)
		}

		matches, err := s.ListMatches(ctx, "t1")
		if err != nil {
			t.Fatalf("ListMatches: %v", err)
		}
		if len(matches) != 3 {
			t.Fatalf("got %d matches, want 3", len(matches))
		}
		ids := map[string]bool{}
		for _, m := range matches {
			ids[m.ID] = true
		}
		if ids["m1"] || !ids["m2"] || !ids["m3"] || !ids["k1"] {
			t.Errorf("unexpected match set: %v", ids)
		}
	})
}

func TestRecordResult(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveTournament(ctx, sampleTournament()); err != nil {
		t.Fatalf("SaveTournament: %v", err)
	}
	if err := s.ReplacePhaseMatches(ctx, "t1", false,
		[]model.Match{sampleMatch("m1", "g1", 1)}); err != nil {
		t.Fatalf("ReplacePhaseMatches: %v", err)
	}

	if err := s.RecordResult(ctx, "m1", 2, 1); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}

	m, err := s.GetMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if !m.HasResult() {
		t.Fatal("match has no result after RecordResult")
	}
	if *m.HomeScore != 2 || *m.AwayScore != 1 {
		t.Errorf("score = %d:%d, want 2:1", *m.HomeScore, *m.AwayScore)
	}
	if m.Status != model.StatusCompleted {
		t.Errorf("Status = %q, want completed", m.Status)
	}

	t.Run("unknown match", func(t *testing.T) {
		if err := s.RecordResult(ctx, "nope", 1, 0); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestResolvePlaceholders(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveTournament(ctx, sampleTournament()); err != nil {
		t.Fatalf("SaveTournament: %v", err)
	}
	knockout := []model.Match{
		{
			ID: "qf1", TournamentID: "t1", Day: 3,
			Date:    time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
			Kickoff: "20:00", Round: model.RoundQuarter, Status: model.StatusScheduled,
			HomeTeamID: "QF1_HOME", AwayTeamID: "QF1_AWAY",
		},
		{
			ID: "sf1", TournamentID: "t1", Day: 4,
			Date:    time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
			Kickoff: "20:00", Round: model.RoundSemi, Status: model.StatusScheduled,
			HomeTeamID: "QF1_WINNER", AwayTeamID: "QF2_WINNER",
		},
	}
	if err := s.ReplacePhaseMatches(ctx, "t1", true, knockout); err != nil {
		t.Fatalf("ReplacePhaseMatches: %v", err)
	}

	mapping := map[string]string{
		"QF1_HOME": "team-a",
		"QF1_AWAY": "team-b",
	}
	if err := s.ResolvePlaceholders(ctx, "t1", mapping); err != nil {
		t.Fatalf("ResolvePlaceholders: %v", err)
	}

	m, err := s.GetMatch(ctx, "qf1")
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if m.HomeTeamID != "team-a" || m.AwayTeamID != "team-b" {
		t.Errorf("qf1 = %s vs %s, want team-a vs team-b", m.HomeTeamID, m.AwayTeamID)
	}

	untouched, err := s.GetMatch(ctx, "sf1")
	if err != nil {
		t.Fatalf("GetMatch sf1: %v", err)
	}
	if untouched.HomeTeamID != "QF1_WINNER" {
		t.Errorf("sf1 home = %s, want the placeholder left alone", untouched.HomeTeamID)
	}
}
