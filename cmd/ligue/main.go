package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/hashicorp/logutils"
	"github.com/spf13/cobra"
	"github.com/syohex/go-texttable"

	"github.com/aminebarka/7oumaligue-engine/internal/advisor"
	"github.com/aminebarka/7oumaligue-engine/internal/bracket"
	"github.com/aminebarka/7oumaligue-engine/internal/config"
	"github.com/aminebarka/7oumaligue-engine/internal/draw"
	"github.com/aminebarka/7oumaligue-engine/internal/excel"
	"github.com/aminebarka/7oumaligue-engine/internal/model"
	"github.com/aminebarka/7oumaligue-engine/internal/schedule"
	"github.com/aminebarka/7oumaligue-engine/internal/store"
)

const defaultConfigFile = "config.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func setupLog(debug bool) {
	minLevel := logutils.LogLevel("INFO")
	if debug {
		minLevel = "DEBUG"
	}
	log.SetOutput(&logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"},
		MinLevel: minLevel,
		Writer:   os.Stderr,
	})
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "ligue",
		Short: "Neighborhood-league tournament engine: draw, schedule, standings",
	}

	var debug bool
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: config.yaml in current directory)")

	loadConfig := func() (*config.Config, error) {
		setupLog(debug)
		path, err := resolveConfigPath(configFile)
		if err != nil {
			return nil, err
		}
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	var suggestTeams int
	var suggestVenue, suggestTimeSlot, suggestBudget string
	suggestCmd := &cobra.Command{
		Use:          "suggest",
		Short:        "Recommend a tournament format for a team count",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runSuggest(cfg, suggestTeams, suggestVenue, suggestTimeSlot, suggestBudget)
		},
	}
	suggestCmd.Flags().IntVar(&suggestTeams, "teams", 0, "Number of participating teams (required)")
	suggestCmd.Flags().StringVar(&suggestVenue, "venue", "", "Venue name for a personalized recommendation")
	suggestCmd.Flags().StringVar(&suggestTimeSlot, "timeslot", "", "Time slot description (e.g. \"week-end\", \"soir\")")
	suggestCmd.Flags().StringVar(&suggestBudget, "budget", "", "Budget note for a personalized recommendation")
	suggestCmd.MarkFlagRequired("teams")

	var rosterPath string
	var groupCount int
	var drawTournamentID string
	drawCmd := &cobra.Command{
		Use:          "draw",
		Short:        "Balance a roster into teams and groups",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runDraw(cfg, rosterPath, groupCount, drawTournamentID)
		},
	}
	drawCmd.Flags().StringVar(&rosterPath, "roster", "", "CSV roster file: player,level,team (required)")
	drawCmd.Flags().IntVar(&groupCount, "groups", 3, "Number of groups to draw")
	drawCmd.Flags().StringVar(&drawTournamentID, "id", "", "Tournament ID (generated when omitted)")
	drawCmd.MarkFlagRequired("roster")

	var scheduleTournamentID, scheduleOutput string
	scheduleCmd := &cobra.Command{
		Use:          "schedule",
		Short:        "Generate and persist the full match calendar",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runSchedule(cfg, scheduleTournamentID, scheduleOutput)
		},
	}
	scheduleCmd.Flags().StringVar(&scheduleTournamentID, "id", "", "Tournament ID (required)")
	scheduleCmd.Flags().StringVarP(&scheduleOutput, "output", "o", "calendrier.xlsx", "Output Excel file path")
	scheduleCmd.MarkFlagRequired("id")

	var standingsTournamentID string
	standingsCmd := &cobra.Command{
		Use:          "standings",
		Short:        "Print the current group standings",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runStandings(cfg, standingsTournamentID)
		},
	}
	standingsCmd.Flags().StringVar(&standingsTournamentID, "id", "", "Tournament ID (required)")
	standingsCmd.MarkFlagRequired("id")

	var qualifyTournamentID string
	qualifyCmd := &cobra.Command{
		Use:          "qualify",
		Short:        "Compute qualifiers and seed the knockout bracket",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runQualify(cfg, qualifyTournamentID)
		},
	}
	qualifyCmd.Flags().StringVar(&qualifyTournamentID, "id", "", "Tournament ID (required)")
	qualifyCmd.MarkFlagRequired("id")

	var resultTournamentID, resultMatchID string
	var homeScore, awayScore int
	resultCmd := &cobra.Command{
		Use:          "result",
		Short:        "Record a match result and advance the bracket",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runResult(cfg, resultTournamentID, resultMatchID, homeScore, awayScore)
		},
	}
	resultCmd.Flags().StringVar(&resultTournamentID, "id", "", "Tournament ID (required)")
	resultCmd.Flags().StringVar(&resultMatchID, "match", "", "Match ID (required)")
	resultCmd.Flags().IntVar(&homeScore, "home", 0, "Home team score")
	resultCmd.Flags().IntVar(&awayScore, "away", 0, "Away team score")
	resultCmd.MarkFlagRequired("id")
	resultCmd.MarkFlagRequired("match")

	rootCmd.AddCommand(initCmd, suggestCmd, drawCmd, scheduleCmd, standingsCmd, qualifyCmd, resultCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# Ligue Tournament Configuration
# ==============================

tournament:
  name: "Tournoi du quartier"
  start_date: "2026-09-05"
  venue: "Terrain municipal"

  # Kickoff time for every match, 24-hour format.
  kickoff: "20:00"

  # Rest days between the last group match and the first quarterfinal.
  rest_days: 1

# Balancing weights for the draw. The balance score of a team is
# avg_level * avg_level_weight + player_count * squad_size_weight.
# A draw counts as balanced when the standard deviation of group
# average levels is below balanced_std_dev.
draw:
  avg_level_weight: 0.7
  squad_size_weight: 0.3
  balanced_std_dev: 1.0

# Defaults for the format advisor.
advisor:
  max_duration: 7
  available_fields: 1
  max_matches_per_day: 4
  include_third_place: false

storage:
  path: "ligue.db"
`

func runSuggest(cfg *config.Config, teams int, venue, timeSlot, budget string) error {
	if timeSlot != "" || venue != "" || budget != "" {
		suggestion, err := advisor.PersonalizedRecommendation(teams, venue, timeSlot, budget)
		if err != nil {
			return err
		}
		printSuggestion(suggestion)
		return nil
	}

	suggestions, err := advisor.Suggest(advisor.Constraints{
		NumberOfTeams:     teams,
		MaxDuration:       cfg.Advisor.MaxDuration,
		AvailableFields:   cfg.Advisor.AvailableFields,
		MaxMatchesPerDay:  cfg.Advisor.MaxMatchesPerDay,
		IncludeThirdPlace: cfg.Advisor.IncludeThirdPlace,
	})
	if err != nil {
		return err
	}

	for _, s := range suggestions {
		printSuggestion(s)
	}
	return nil
}

func printSuggestion(s advisor.Suggestion) {
	marker := " "
	if s.Recommended {
		marker = "★"
	}
	fmt.Printf("%s %-8s %s\n", marker, s.Format, s.Description)
	fmt.Printf("    %d matchs, %s\n", s.TotalMatches, s.EstimatedDuration)
	for _, a := range s.Advantages {
		fmt.Printf("    + %s\n", a)
	}
	for _, d := range s.Disadvantages {
		fmt.Printf("    - %s\n", d)
	}
}

// rosterRow is one line of the roster CSV. Rows without a team name
// are free agents distributed across the teams by the balancer.
type rosterRow struct {
	Player string `csv:"player"`
	Level  int    `csv:"level"`
	Team   string `csv:"team"`
}

func runDraw(cfg *config.Config, rosterPath string, groupCount int, tournamentID string) error {
	f, err := os.Open(rosterPath)
	if err != nil {
		return fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	var rows []rosterRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return fmt.Errorf("parsing roster: %w", err)
	}

	var teams []model.Team
	teamIndex := make(map[string]int)
	var freeAgents []model.Player

	for _, row := range rows {
		player := model.Player{ID: uuid.NewString(), Name: row.Player, Level: row.Level}
		if row.Level < 1 || row.Level > 5 {
			return fmt.Errorf("player %q has level %d, want 1-5", row.Player, row.Level)
		}
		if row.Team == "" {
			freeAgents = append(freeAgents, player)
			continue
		}
		idx, ok := teamIndex[row.Team]
		if !ok {
			idx = len(teams)
			teamIndex[row.Team] = idx
			teams = append(teams, model.Team{ID: uuid.NewString(), Name: row.Team})
		}
		player.TeamID = teams[idx].ID
		teams[idx].Players = append(teams[idx].Players, player)
	}

	if len(teams) == 0 {
		return fmt.Errorf("roster has no teams")
	}

	drawCfg := draw.Config{
		AvgLevelWeight:  cfg.Draw.AvgLevelWeight,
		SquadSizeWeight: cfg.Draw.SquadSizeWeight,
		BalancedStdDev:  cfg.Draw.BalancedStdDev,
	}

	if len(freeAgents) > 0 {
		log.Printf("[INFO] distributing %d free agents across %d teams", len(freeAgents), len(teams))
		byID := make(map[string]int, len(teams))
		for i, t := range teams {
			byID[t.ID] = i
		}
		agents := make(map[string]model.Player, len(freeAgents))
		for _, p := range freeAgents {
			agents[p.ID] = p
		}
		for _, a := range draw.DistributePlayers(freeAgents, teams, drawCfg) {
			p := agents[a.PlayerID]
			p.TeamID = a.TeamID
			i := byID[a.TeamID]
			teams[i].Players = append(teams[i].Players, p)
		}
	}

	ranked := draw.RankTeamsByStrength(teams, drawCfg)
	groups, err := draw.AssignTeamsToGroups(ranked, groupCount)
	if err != nil {
		return err
	}

	balance := draw.MeasureGroupBalance(groups, drawCfg)

	t := &model.Tournament{
		ID:        tournamentID,
		Name:      cfg.Tournament.Name,
		StartDate: cfg.Tournament.StartDate.Time,
		Venue:     cfg.Tournament.Venue,
		Teams:     ranked,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	for i, group := range groups {
		g := model.Group{
			ID:   uuid.NewString(),
			Name: fmt.Sprintf("Groupe %c", 'A'+i),
		}
		fmt.Printf("%s:\n", g.Name)
		for _, team := range group {
			g.Teams = append(g.Teams, model.GroupTeam{TeamID: team.ID})
			s := draw.ComputeTeamStrength(team.Players)
			fmt.Printf("  %-20s %d joueurs, niveau moyen %.2f\n", team.Name, s.PlayerCount, s.AvgLevel)
		}
		t.Groups = append(t.Groups, g)
	}

	if balance.IsBalanced {
		fmt.Printf("\n✓ Tirage équilibré (écart-type %.2f)\n", balance.StdDev)
	} else {
		fmt.Printf("\n⚠ Tirage déséquilibré (écart-type %.2f, seuil %.2f)\n", balance.StdDev, cfg.Draw.BalancedStdDev)
	}

	st, err := store.New(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveTournament(context.Background(), t); err != nil {
		return fmt.Errorf("saving tournament: %w", err)
	}

	fmt.Printf("✓ Tournament saved with ID %s\n", t.ID)
	return nil
}

func runSchedule(cfg *config.Config, tournamentID, outputPath string) error {
	st, err := store.New(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	t, err := st.LoadTournament(ctx, tournamentID)
	if err != nil {
		return err
	}

	sched, err := schedule.Generate(t, schedule.Config{
		StartDate: t.StartDate,
		Kickoff:   cfg.Tournament.Kickoff,
		Venue:     t.Venue,
		RestDays:  cfg.Tournament.RestDaysOrDefault(),
	})
	if err != nil {
		return fmt.Errorf("generating schedule: %w", err)
	}

	violations := schedule.Verify(t, sched)
	for _, v := range violations {
		log.Printf("[WARN] %s", v.Message)
	}
	if len(violations) > 0 {
		return fmt.Errorf("generated schedule has %d violations", len(violations))
	}

	realize := func(specs []schedule.MatchSpec) []model.Match {
		matches := make([]model.Match, 0, len(specs))
		for _, spec := range specs {
			matches = append(matches, model.Match{
				ID:           uuid.NewString(),
				TournamentID: t.ID,
				GroupID:      spec.GroupID,
				Day:          spec.Day,
				Date:         spec.Date,
				Kickoff:      spec.Kickoff,
				Venue:        spec.Venue,
				Round:        spec.Round,
				Status:       model.StatusScheduled,
				HomeTeamID:   spec.HomeTeamID,
				AwayTeamID:   spec.AwayTeamID,
			})
		}
		return matches
	}

	if err := st.ReplacePhaseMatches(ctx, t.ID, false, realize(sched.GroupPhase)); err != nil {
		return fmt.Errorf("persisting group phase: %w", err)
	}
	if err := st.ReplacePhaseMatches(ctx, t.ID, true, realize(sched.FinalPhase)); err != nil {
		return fmt.Errorf("persisting knockout phase: %w", err)
	}

	fmt.Printf("✓ %d group matches and %d knockout matches over %d days\n",
		len(sched.GroupPhase), len(sched.FinalPhase), sched.TotalDays)

	matches, err := st.ListMatches(ctx, t.ID)
	if err != nil {
		return err
	}
	workbook, err := excel.Generate(t, sched, standingsTables(t, matches))
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := workbook.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}

	fmt.Printf("✓ Calendar saved to %s\n", outputPath)
	return nil
}

func standingsTables(t *model.Tournament, matches []model.Match) map[string][]schedule.Standing {
	tables := make(map[string][]schedule.Standing, len(t.Groups))
	for i := range t.Groups {
		tables[t.Groups[i].ID] = schedule.GroupStandings(&t.Groups[i], matches)
	}
	return tables
}

func runStandings(cfg *config.Config, tournamentID string) error {
	st, err := store.New(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	t, err := st.LoadTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	matches, err := st.ListMatches(ctx, t.ID)
	if err != nil {
		return err
	}

	for i := range t.Groups {
		g := &t.Groups[i]
		fmt.Printf("%s\n", g.Name)

		tbl := &texttable.TextTable{}
		_ = tbl.SetHeader("Équipe", "J", "G", "N", "P", "BP", "BC", "Diff", "Pts")
		for _, s := range schedule.GroupStandings(g, matches) {
			name := s.TeamID
			if team, ok := t.TeamByID(s.TeamID); ok {
				name = team.Name
			}
			_ = tbl.AddRow(
				name,
				strconv.Itoa(s.Played),
				strconv.Itoa(s.Wins),
				strconv.Itoa(s.Draws),
				strconv.Itoa(s.Losses),
				strconv.Itoa(s.GoalsFor),
				strconv.Itoa(s.GoalsAgainst),
				strconv.Itoa(s.GoalDifference),
				strconv.Itoa(s.Points),
			)
		}
		fmt.Println(tbl.Draw())
	}

	return nil
}

func runQualify(cfg *config.Config, tournamentID string) error {
	st, err := store.New(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	t, err := st.LoadTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	matches, err := st.ListMatches(ctx, t.ID)
	if err != nil {
		return err
	}

	qualified := schedule.QualifiedTeams(t, matches)

	b := bracket.New()
	if err := b.Seed(qualified); err != nil {
		return fmt.Errorf("seeding bracket: %w", err)
	}

	mapping := make(map[string]string)
	for _, code := range []string{"QF1", "QF2", "QF3", "QF4"} {
		slot, _ := b.Slot(code)
		mapping[bracket.PlaceholderHome(code)] = slot.Home
		mapping[bracket.PlaceholderAway(code)] = slot.Away
	}
	if err := st.ResolvePlaceholders(ctx, t.ID, mapping); err != nil {
		return fmt.Errorf("assigning qualified teams: %w", err)
	}

	fmt.Println("Équipes qualifiées :")
	for i, teamID := range qualified {
		name := teamID
		if team, ok := t.TeamByID(teamID); ok {
			name = team.Name
		}
		fmt.Printf("  %d. %s\n", i+1, name)
	}
	fmt.Println("✓ Quarterfinal slots assigned")
	return nil
}

func runResult(cfg *config.Config, tournamentID, matchID string, homeScore, awayScore int) error {
	st, err := store.New(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	m, err := st.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if m.TournamentID != tournamentID {
		return fmt.Errorf("match %q does not belong to tournament %q", matchID, tournamentID)
	}

	if m.GroupID == "" {
		if bracket.IsPlaceholder(m.HomeTeamID) || bracket.IsPlaceholder(m.AwayTeamID) {
			return fmt.Errorf("knockout pairing not decided yet; run qualify or record earlier rounds first")
		}
		if homeScore == awayScore {
			return bracket.ErrDrawnKnockout
		}
	}

	if err := st.RecordResult(ctx, matchID, homeScore, awayScore); err != nil {
		return err
	}
	fmt.Printf("✓ Result recorded: %d - %d\n", homeScore, awayScore)

	if m.GroupID != "" {
		return nil
	}
	return advanceBracket(ctx, st, tournamentID)
}

// advanceBracket rebuilds the knockout bracket from the persisted
// matches, replays completed results, and writes newly decided
// pairings back into the placeholder slots.
func advanceBracket(ctx context.Context, st *store.Store, tournamentID string) error {
	matches, err := st.ListMatches(ctx, tournamentID)
	if err != nil {
		return err
	}

	var knockout []model.Match
	for _, m := range matches {
		if m.GroupID == "" {
			knockout = append(knockout, m)
		}
	}
	sort.Slice(knockout, func(i, j int) bool { return knockout[i].Day < knockout[j].Day })

	codes := bracket.SlotCodes()
	if len(knockout) != len(codes) {
		return fmt.Errorf("found %d knockout matches, want %d", len(knockout), len(codes))
	}

	b := bracket.New()
	for i, code := range codes {
		if !bracket.IsPlaceholder(knockout[i].HomeTeamID) || !bracket.IsPlaceholder(knockout[i].AwayTeamID) {
			if err := b.SetTeams(code, knockout[i].HomeTeamID, knockout[i].AwayTeamID); err != nil {
				return err
			}
		}
	}
	for i, code := range codes {
		m := knockout[i]
		if !m.HasResult() {
			continue
		}
		if err := b.ReportResult(code, *m.HomeScore, *m.AwayScore); err != nil {
			return fmt.Errorf("advancing %s: %w", code, err)
		}
	}

	mapping := make(map[string]string)
	for _, slot := range b.Slots() {
		if !bracket.IsPlaceholder(slot.Home) {
			mapping[bracket.PlaceholderHome(slot.Code)] = slot.Home
		}
		if !bracket.IsPlaceholder(slot.Away) {
			mapping[bracket.PlaceholderAway(slot.Code)] = slot.Away
		}
	}
	if err := st.ResolvePlaceholders(ctx, tournamentID, mapping); err != nil {
		return fmt.Errorf("propagating winners: %w", err)
	}

	if champion, ok := b.Champion(); ok {
		fmt.Printf("🏆 Champion : %s\n", champion)
	}
	return nil
}
