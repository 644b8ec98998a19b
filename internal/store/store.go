// Package store persists tournament snapshots in sqlite. The engine
// packages never touch it: the CLI loads a snapshot, runs the pure
// engine functions, and writes results back through this package.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"

	"github.com/aminebarka/7oumaligue-engine/internal/model"
)

// ErrNotFound indicates that the entity hasn't been found in the database.
var ErrNotFound = errors.New("not found")

const dateFormat = time.RFC3339

// Store provides methods to store/load tournament data.
type Store struct {
	db *sqlx.DB
}

// New opens the database and prepares the schema.
func New(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS tournaments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			start_date TEXT NOT NULL,
			venue TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS teams (
			id TEXT PRIMARY KEY,
			tournament_id TEXT NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			team_id TEXT NOT NULL,
			name TEXT NOT NULL,
			level INTEGER NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS groups (
			id TEXT PRIMARY KEY,
			tournament_id TEXT NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS group_teams (
			group_id TEXT NOT NULL,
			team_id TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			played INTEGER NOT NULL DEFAULT 0,
			wins INTEGER NOT NULL DEFAULT 0,
			draws INTEGER NOT NULL DEFAULT 0,
			losses INTEGER NOT NULL DEFAULT 0,
			goals_for INTEGER NOT NULL DEFAULT 0,
			goals_against INTEGER NOT NULL DEFAULT 0,
			points INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (group_id, team_id)
		);
		CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			tournament_id TEXT NOT NULL,
			group_id TEXT NOT NULL DEFAULT '',
			day INTEGER NOT NULL,
			date TEXT NOT NULL,
			kickoff TEXT NOT NULL,
			venue TEXT NOT NULL DEFAULT '',
			round TEXT NOT NULL,
			status TEXT NOT NULL,
			home_team_id TEXT NOT NULL,
			away_team_id TEXT NOT NULL,
			home_score INTEGER,
			away_score INTEGER
		);
	`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type tournamentRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	StartDate string `db:"start_date"`
	Venue     string `db:"venue"`
}

type teamRow struct {
	ID           string `db:"id"`
	TournamentID string `db:"tournament_id"`
	Name         string `db:"name"`
	Position     int    `db:"position"`
}

type playerRow struct {
	ID       string `db:"id"`
	TeamID   string `db:"team_id"`
	Name     string `db:"name"`
	Level    int    `db:"level"`
	Position int    `db:"position"`
}

type groupRow struct {
	ID           string `db:"id"`
	TournamentID string `db:"tournament_id"`
	Name         string `db:"name"`
	Position     int    `db:"position"`
}

type groupTeamRow struct {
	GroupID      string `db:"group_id"`
	TeamID       string `db:"team_id"`
	Position     int    `db:"position"`
	Played       int    `db:"played"`
	Wins         int    `db:"wins"`
	Draws        int    `db:"draws"`
	Losses       int    `db:"losses"`
	GoalsFor     int    `db:"goals_for"`
	GoalsAgainst int    `db:"goals_against"`
	Points       int    `db:"points"`
}

type matchRow struct {
	ID           string `db:"id"`
	TournamentID string `db:"tournament_id"`
	GroupID      string `db:"group_id"`
	Day          int    `db:"day"`
	Date         string `db:"date"`
	Kickoff      string `db:"kickoff"`
	Venue        string `db:"venue"`
	Round        string `db:"round"`
	Status       string `db:"status"`
	HomeTeamID   string `db:"home_team_id"`
	AwayTeamID   string `db:"away_team_id"`
	HomeScore    *int   `db:"home_score"`
	AwayScore    *int   `db:"away_score"`
}

// SaveTournament replaces the stored snapshot of the tournament's
// teams, players and groups in one transaction.
func (s *Store) SaveTournament(ctx context.Context, t *model.Tournament) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO tournaments (id, name, start_date, venue) VALUES (:id, :name, :start_date, :venue)
		 ON CONFLICT (id) DO UPDATE SET name = :name, start_date = :start_date, venue = :venue`,
		tournamentRow{ID: t.ID, Name: t.Name, StartDate: t.StartDate.Format(dateFormat), Venue: t.Venue},
	); err != nil {
		return fmt.Errorf("upsert tournament: %w", err)
	}

	// Child rows first: their subqueries resolve through the parent
	// rows, which must still exist.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM players WHERE team_id IN (SELECT id FROM teams WHERE tournament_id = ?)`, t.ID); err != nil {
		return fmt.Errorf("clear players: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM group_teams WHERE group_id IN (SELECT id FROM groups WHERE tournament_id = ?)`, t.ID); err != nil {
		return fmt.Errorf("clear group teams: %w", err)
	}
	for _, table := range []string{"teams", "groups"} {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE tournament_id = ?`, table), t.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, team := range t.Teams {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO teams (id, tournament_id, name, position) VALUES (:id, :tournament_id, :name, :position)`,
			teamRow{ID: team.ID, TournamentID: t.ID, Name: team.Name, Position: i},
		); err != nil {
			return fmt.Errorf("insert team: %w", err)
		}
		for j, p := range team.Players {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO players (id, team_id, name, level, position) VALUES (:id, :team_id, :name, :level, :position)`,
				playerRow{ID: p.ID, TeamID: team.ID, Name: p.Name, Level: p.Level, Position: j},
			); err != nil {
				return fmt.Errorf("insert player: %w", err)
			}
		}
	}

	for i, g := range t.Groups {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO groups (id, tournament_id, name, position) VALUES (:id, :tournament_id, :name, :position)`,
			groupRow{ID: g.ID, TournamentID: t.ID, Name: g.Name, Position: i},
		); err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		for j, gt := range g.Teams {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO group_teams
					(group_id, team_id, position, played, wins, draws, losses, goals_for, goals_against, points)
				 VALUES
					(:group_id, :team_id, :position, :played, :wins, :draws, :losses, :goals_for, :goals_against, :points)`,
				groupTeamRow{
					GroupID: g.ID, TeamID: gt.TeamID, Position: j,
					Played: gt.Played, Wins: gt.Wins, Draws: gt.Draws, Losses: gt.Losses,
					GoalsFor: gt.GoalsFor, GoalsAgainst: gt.GoalsAgainst, Points: gt.Points,
				},
			); err != nil {
				return fmt.Errorf("insert group team: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LoadTournament reads a full tournament snapshot.
func (s *Store) LoadTournament(ctx context.Context, id string) (*model.Tournament, error) {
	var tr tournamentRow
	if err := s.db.GetContext(ctx, &tr, `SELECT * FROM tournaments WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tournament %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get tournament: %w", err)
	}

	startDate, err := time.Parse(dateFormat, tr.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	t := &model.Tournament{ID: tr.ID, Name: tr.Name, StartDate: startDate, Venue: tr.Venue}

	var teams []teamRow
	if err := s.db.SelectContext(ctx, &teams,
		`SELECT * FROM teams WHERE tournament_id = ? ORDER BY position`, id); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}
	for _, team := range teams {
		var players []playerRow
		if err := s.db.SelectContext(ctx, &players,
			`SELECT * FROM players WHERE team_id = ? ORDER BY position`, team.ID); err != nil {
			return nil, fmt.Errorf("select players: %w", err)
		}
		mt := model.Team{ID: team.ID, Name: team.Name}
		for _, p := range players {
			mt.Players = append(mt.Players, model.Player{ID: p.ID, Name: p.Name, Level: p.Level, TeamID: team.ID})
		}
		t.Teams = append(t.Teams, mt)
	}

	var groups []groupRow
	if err := s.db.SelectContext(ctx, &groups,
		`SELECT * FROM groups WHERE tournament_id = ? ORDER BY position`, id); err != nil {
		return nil, fmt.Errorf("select groups: %w", err)
	}
	for _, g := range groups {
		var members []groupTeamRow
		if err := s.db.SelectContext(ctx, &members,
			`SELECT * FROM group_teams WHERE group_id = ? ORDER BY position`, g.ID); err != nil {
			return nil, fmt.Errorf("select group teams: %w", err)
		}
		mg := model.Group{ID: g.ID, Name: g.Name}
		for _, gt := range members {
			mg.Teams = append(mg.Teams, model.GroupTeam{
				TeamID: gt.TeamID, Played: gt.Played,
				Wins: gt.Wins, Draws: gt.Draws, Losses: gt.Losses,
				GoalsFor: gt.GoalsFor, GoalsAgainst: gt.GoalsAgainst, Points: gt.Points,
			})
		}
		t.Groups = append(t.Groups, mg)
	}

	return t, nil
}

// ReplacePhaseMatches atomically swaps all matches of one phase of a
// tournament: group-phase matches carry a group ID, knockout matches
// do not. Regeneration deletes the old phase before inserting the new
// one so concurrent readers never observe a partial calendar.
func (s *Store) ReplacePhaseMatches(ctx context.Context, tournamentID string, knockout bool, matches []model.Match) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	phaseFilter := `group_id != ''`
	if knockout {
		phaseFilter = `group_id = ''`
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM matches WHERE tournament_id = ? AND `+phaseFilter, tournamentID); err != nil {
		return fmt.Errorf("delete phase matches: %w", err)
	}

	const insert = `INSERT INTO matches
		(id, tournament_id, group_id, day, date, kickoff, venue, round, status, home_team_id, away_team_id, home_score, away_score)
	 VALUES
		(:id, :tournament_id, :group_id, :day, :date, :kickoff, :venue, :round, :status, :home_team_id, :away_team_id, :home_score, :away_score)`

	for _, m := range matches {
		if _, err := tx.NamedExecContext(ctx, insert, toMatchRow(m)); err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListMatches returns all matches of a tournament ordered by day.
func (s *Store) ListMatches(ctx context.Context, tournamentID string) ([]model.Match, error) {
	var rows []matchRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM matches WHERE tournament_id = ? ORDER BY day`, tournamentID); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	matches := make([]model.Match, 0, len(rows))
	for _, r := range rows {
		m, err := fromMatchRow(r)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// GetMatch returns a single match by ID.
func (s *Store) GetMatch(ctx context.Context, id string) (model.Match, error) {
	var r matchRow
	if err := s.db.GetContext(ctx, &r, `SELECT * FROM matches WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Match{}, fmt.Errorf("match %q: %w", id, ErrNotFound)
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}
	return fromMatchRow(r)
}

// RecordResult stores the final score of a match and marks it
// completed.
func (s *Store) RecordResult(ctx context.Context, matchID string, homeScore, awayScore int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE matches SET home_score = ?, away_score = ?, status = ? WHERE id = ?`,
		homeScore, awayScore, string(model.StatusCompleted), matchID)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("match %q: %w", matchID, ErrNotFound)
	}
	return nil
}

// ResolvePlaceholders swaps synthetic knockout team identifiers for
// real team IDs across a tournament's matches.
func (s *Store) ResolvePlaceholders(ctx context.Context, tournamentID string, mapping map[string]string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for placeholder, teamID := range mapping {
		if _, err := tx.ExecContext(ctx,
			`UPDATE matches SET home_team_id = ? WHERE tournament_id = ? AND home_team_id = ?`,
			teamID, tournamentID, placeholder); err != nil {
			return fmt.Errorf("resolve home placeholder: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE matches SET away_team_id = ? WHERE tournament_id = ? AND away_team_id = ?`,
			teamID, tournamentID, placeholder); err != nil {
			return fmt.Errorf("resolve away placeholder: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func toMatchRow(m model.Match) matchRow {
	return matchRow{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		GroupID:      m.GroupID,
		Day:          m.Day,
		Date:         m.Date.Format(dateFormat),
		Kickoff:      m.Kickoff,
		Venue:        m.Venue,
		Round:        string(m.Round),
		Status:       string(m.Status),
		HomeTeamID:   m.HomeTeamID,
		AwayTeamID:   m.AwayTeamID,
		HomeScore:    m.HomeScore,
		AwayScore:    m.AwayScore,
	}
}

func fromMatchRow(r matchRow) (model.Match, error) {
	date, err := time.Parse(dateFormat, r.Date)
	if err != nil {
		return model.Match{}, fmt.Errorf("parse match date: %w", err)
	}
	return model.Match{
		ID:           r.ID,
		TournamentID: r.TournamentID,
		GroupID:      r.GroupID,
		Day:          r.Day,
		Date:         date,
		Kickoff:      r.Kickoff,
		Venue:        r.Venue,
		Round:        model.Round(r.Round),
		Status:       model.MatchStatus(r.Status),
		HomeTeamID:   r.HomeTeamID,
		AwayTeamID:   r.AwayTeamID,
		HomeScore:    r.HomeScore,
		AwayScore:    r.AwayScore,
	}, nil
}
