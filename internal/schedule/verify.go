package schedule

import (
	"fmt"

	"github.com/aminebarka/7oumaligue-engine/internal/model"
)

// Violation is a calendar inconsistency found during verification.
type Violation struct {
	Type    string // "error" or "warning"
	Message string
}

// Verify checks a generated schedule against the calendar invariants:
// one match per calendar day, contiguous group-phase days, every
// intra-group pairing exactly once, and a complete knockout ladder.
func Verify(t *model.Tournament, s *Schedule) []Violation {
	var violations []Violation

	violations = append(violations, checkOneMatchPerDay(s)...)
	violations = append(violations, checkPairingCompleteness(t, s)...)
	violations = append(violations, checkKnockoutShape(s)...)

	return violations
}

func checkOneMatchPerDay(s *Schedule) []Violation {
	var violations []Violation

	days := make(map[int]int)
	for _, m := range s.GroupPhase {
		days[m.Day]++
	}
	for _, m := range s.FinalPhase {
		days[m.Day]++
	}
	for day, count := range days {
		if count > 1 {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("day %d hosts %d matches (max 1)", day, count),
			})
		}
	}

	for i := 1; i < len(s.GroupPhase); i++ {
		if s.GroupPhase[i].Day != s.GroupPhase[i-1].Day+1 {
			violations = append(violations, Violation{
				Type: "error",
				Message: fmt.Sprintf("group phase skips from day %d to day %d",
					s.GroupPhase[i-1].Day, s.GroupPhase[i].Day),
			})
		}
	}

	return violations
}

func checkPairingCompleteness(t *model.Tournament, s *Schedule) []Violation {
	var violations []Violation

	type pairing struct{ a, b string }
	normalize := func(a, b string) pairing {
		if a > b {
			a, b = b, a
		}
		return pairing{a, b}
	}

	seen := make(map[string]map[pairing]int)
	for _, m := range s.GroupPhase {
		if seen[m.GroupID] == nil {
			seen[m.GroupID] = make(map[pairing]int)
		}
		seen[m.GroupID][normalize(m.HomeTeamID, m.AwayTeamID)]++
	}

	for _, g := range t.Groups {
		pairs := seen[g.ID]
		for i := 0; i < len(g.Teams); i++ {
			for j := i + 1; j < len(g.Teams); j++ {
				p := normalize(g.Teams[i].TeamID, g.Teams[j].TeamID)
				switch pairs[p] {
				case 1:
				case 0:
					violations = append(violations, Violation{
						Type:    "error",
						Message: fmt.Sprintf("group %q: %s vs %s is never played", g.Name, p.a, p.b),
					})
				default:
					violations = append(violations, Violation{
						Type:    "error",
						Message: fmt.Sprintf("group %q: %s vs %s played %d times", g.Name, p.a, p.b, pairs[p]),
					})
				}
			}
		}
	}

	return violations
}

func checkKnockoutShape(s *Schedule) []Violation {
	var violations []Violation

	counts := make(map[model.Round]int)
	for _, m := range s.FinalPhase {
		counts[m.Round]++
	}
	want := map[model.Round]int{
		model.RoundQuarter: 4,
		model.RoundSemi:    2,
		model.RoundFinal:   1,
	}
	for round, n := range want {
		if counts[round] != n {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("knockout phase has %d %q matches, want %d", counts[round], round, n),
			})
		}
	}

	return violations
}
