// Package advisor enumerates feasible tournament formats for a team
// count and scheduling constraints, and recommends the best candidate
// by a fixed scoring heuristic.
package advisor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrNoSuggestion = errors.New("no feasible format for this team count")

// Format identifies a tournament shape.
type Format string

const (
	FormatGroups   Format = "groups"
	FormatKnockout Format = "knockout"
	FormatLeague   Format = "league"
	FormatMixed    Format = "mixed"
)

// Constraints bound the suggestion run.
type Constraints struct {
	NumberOfTeams     int
	MaxDuration       int // days
	AvailableFields   int
	MaxMatchesPerDay  int
	IncludeThirdPlace bool
}

// Suggestion is one candidate format with its cost estimate and fixed
// prose describing trade-offs.
type Suggestion struct {
	Format            Format
	Description       string
	NumberOfGroups    int
	TeamsPerGroup     int
	TotalMatches      int
	Byes              int
	EstimatedDuration string
	Advantages        []string
	Disadvantages     []string
	Recommended       bool
}

// Suggest enumerates the candidate formats for the given constraints.
// The generation rules are independent; several may fire for the same
// team count. Exactly one candidate comes back flagged as recommended
// (the highest scoring, first on ties), sorted first.
func Suggest(c Constraints) ([]Suggestion, error) {
	n := c.NumberOfTeams
	var suggestions []Suggestion

	if n >= 8 && n%4 == 0 {
		groups := n / 4
		total := groups*6 + knockoutMatches(groups*2)
		suggestions = append(suggestions, Suggestion{
			Format:            FormatGroups,
			Description:       fmt.Sprintf("%d groupes de 4 équipes, puis phase à élimination directe", groups),
			NumberOfGroups:    groups,
			TeamsPerGroup:     4,
			TotalMatches:      total,
			EstimatedDuration: formatDuration(total, c.MaxMatchesPerDay),
			Advantages: []string{
				"Chaque équipe joue plusieurs matchs",
				"Phase finale à suspense",
			},
			Disadvantages: []string{
				"Durée plus longue",
				"Demande plus de créneaux",
			},
		})
	}

	if n >= 8 && n%3 == 0 {
		groups := n / 3
		total := groups*3 + knockoutMatches(groups*2)
		suggestions = append(suggestions, Suggestion{
			Format:            FormatGroups,
			Description:       fmt.Sprintf("%d groupes de 3 équipes, puis phase à élimination directe", groups),
			NumberOfGroups:    groups,
			TeamsPerGroup:     3,
			TotalMatches:      total,
			EstimatedDuration: formatDuration(total, c.MaxMatchesPerDay),
			Advantages: []string{
				"Groupes courts et rythmés",
				"Qualification rapide",
			},
			Disadvantages: []string{
				"Peu de matchs de groupe par équipe",
			},
		})
	}

	if n >= 4 && n <= 16 {
		suggestions = append(suggestions, Suggestion{
			Format:            FormatKnockout,
			Description:       fmt.Sprintf("Élimination directe à %d équipes", n),
			TotalMatches:      n - 1,
			Byes:              nextPowerOfTwo(n) - n,
			EstimatedDuration: formatDuration(n-1, c.MaxMatchesPerDay),
			Advantages: []string{
				"Format court et intense",
				"Chaque match est décisif",
			},
			Disadvantages: []string{
				"Une défaite et c'est terminé",
				"Certaines équipes jouent très peu",
			},
		})
	}

	if n >= 2 && n <= 8 {
		total := n * (n - 1) / 2
		suggestions = append(suggestions, Suggestion{
			Format:            FormatLeague,
			Description:       "Championnat : chaque équipe rencontre toutes les autres",
			TotalMatches:      total,
			EstimatedDuration: formatDuration(total, c.MaxMatchesPerDay),
			Advantages: []string{
				"Format équitable",
				"Classement lisible",
			},
			Disadvantages: []string{
				"Pas de phase finale",
			},
		})
	}

	if n >= 12 {
		groups := (n + 3) / 4
		total := mixedGroupMatches(n, groups) + knockoutMatches(groups*2) + 4
		suggestions = append(suggestions, Suggestion{
			Format:            FormatMixed,
			Description:       fmt.Sprintf("%d groupes puis phase finale avec repêchage", groups),
			NumberOfGroups:    groups,
			TeamsPerGroup:     n / groups,
			TotalMatches:      total,
			EstimatedDuration: formatDuration(total, c.MaxMatchesPerDay),
			Advantages: []string{
				"Compromis entre équité et suspense",
				"Le repêchage garde les équipes en course",
			},
			Disadvantages: []string{
				"Organisation plus complexe",
			},
		})
	}

	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: %d teams", ErrNoSuggestion, n)
	}

	markBestSuggestion(suggestions, c)
	return suggestions, nil
}

// markBestSuggestion scores every candidate and flags the single best
// one, then moves it first.
func markBestSuggestion(suggestions []Suggestion, c Constraints) {
	best, bestScore := 0, -1
	for i, s := range suggestions {
		score := 0
		if c.NumberOfTeams >= 8 && s.Format == FormatGroups {
			score += 3
		}
		if c.NumberOfTeams <= 8 && s.Format == FormatLeague {
			score += 2
		}
		if s.Format == FormatKnockout {
			score++
		}
		if durationInDays(s.EstimatedDuration) {
			score += 2
		}
		if s.Format == FormatGroups && s.TeamsPerGroup == 4 {
			score += 2
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	suggestions[best].Recommended = true
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Recommended && !suggestions[j].Recommended
	})
}

// PersonalizedRecommendation derives constraints from the requested
// time slot, picks the recommended format, and decorates it with venue
// and budget context for display. It performs no additional scheduling
// logic.
func PersonalizedRecommendation(numberOfTeams int, venue, timeSlot, budget string) (Suggestion, error) {
	c := Constraints{
		NumberOfTeams:    numberOfTeams,
		MaxDuration:      7,
		MaxMatchesPerDay: 4,
	}

	slot := strings.ToLower(timeSlot)
	switch {
	case strings.Contains(slot, "week-end"), strings.Contains(slot, "weekend"):
		c.MaxDuration = 2
		c.MaxMatchesPerDay = 8
	case strings.Contains(slot, "soir"), strings.Contains(slot, "evening"):
		c.MaxDuration = 30
		c.MaxMatchesPerDay = 2
	}

	suggestions, err := Suggest(c)
	if err != nil {
		return Suggestion{}, err
	}

	top := suggestions[0]
	if venue != "" {
		top.Description += fmt.Sprintf(" (terrain : %s)", venue)
	}
	if timeSlot != "" {
		top.Advantages = append(top.Advantages, fmt.Sprintf("Adapté au créneau « %s »", timeSlot))
	}
	if budget != "" {
		top.Advantages = append(top.Advantages, fmt.Sprintf("Budget : %s", budget))
	}
	return top, nil
}

// knockoutMatches is the single-elimination match count for n entrants.
func knockoutMatches(n int) int {
	if n < 2 {
		return 0
	}
	return n - 1
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// mixedGroupMatches sums the intra-group pairings when n teams split
// as evenly as possible into the given number of groups.
func mixedGroupMatches(n, groups int) int {
	base := n / groups
	extra := n % groups
	total := 0
	for i := 0; i < groups; i++ {
		size := base
		if i < extra {
			size++
		}
		total += size * (size - 1) / 2
	}
	return total
}

// formatDuration renders the day estimate: "1 jour", "N jours" up to a
// week, then whole weeks.
func formatDuration(totalMatches, maxMatchesPerDay int) string {
	if maxMatchesPerDay < 1 {
		maxMatchesPerDay = 1
	}
	days := (totalMatches + maxMatchesPerDay - 1) / maxMatchesPerDay
	switch {
	case days <= 1:
		return "1 jour"
	case days <= 7:
		return fmt.Sprintf("%d jours", days)
	default:
		return fmt.Sprintf("%d semaines", (days+6)/7)
	}
}

func durationInDays(duration string) bool {
	return strings.HasSuffix(duration, "jour") || strings.HasSuffix(duration, "jours")
}
