// Package excel renders a generated schedule and group standings into
// an xlsx workbook.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/aminebarka/7oumaligue-engine/internal/model"
	"github.com/aminebarka/7oumaligue-engine/internal/schedule"
)

// Generate creates a workbook with the full calendar and one standings
// sheet per group.
func Generate(t *model.Tournament, sched *schedule.Schedule, tables map[string][]schedule.Standing) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	if err := writeCalendarSheet(f, t, sched); err != nil {
		return nil, fmt.Errorf("writing calendar sheet: %w", err)
	}

	if err := writeGroupSheets(f, t, tables); err != nil {
		return nil, fmt.Errorf("writing group sheets: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func writeCalendarSheet(f *excelize.File, t *model.Tournament, sched *schedule.Schedule) error {
	sheet := "Calendrier"
	f.NewSheet(sheet)

	headers := []string{"Jour", "Date", "Heure", "Tour", "Groupe", "Domicile", "Extérieur"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if headerStyle != 0 {
		for i := range headers {
			f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), headerStyle)
		}
	}

	groupNames := make(map[string]string, len(t.Groups))
	for _, g := range t.Groups {
		groupNames[g.ID] = g.Name
	}

	row := 2
	writeSpec := func(m schedule.MatchSpec) {
		f.SetCellValue(sheet, cellRef(1, row), m.Day)
		f.SetCellValue(sheet, cellRef(2, row), m.Date.Format("02/01/2006"))
		f.SetCellValue(sheet, cellRef(3, row), m.Kickoff)
		f.SetCellValue(sheet, cellRef(4, row), string(m.Round))
		f.SetCellValue(sheet, cellRef(5, row), groupNames[m.GroupID])
		f.SetCellValue(sheet, cellRef(6, row), teamLabel(t, m.HomeTeamID))
		f.SetCellValue(sheet, cellRef(7, row), teamLabel(t, m.AwayTeamID))
		row++
	}
	for _, m := range sched.GroupPhase {
		writeSpec(m)
	}
	for _, m := range sched.FinalPhase {
		writeSpec(m)
	}

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "C", 14)
	f.SetColWidth(sheet, "D", "E", 16)
	f.SetColWidth(sheet, "F", "G", 24)

	return nil
}

func writeGroupSheets(f *excelize.File, t *model.Tournament, tables map[string][]schedule.Standing) error {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for _, g := range t.Groups {
		sheet := g.Name
		f.NewSheet(sheet)

		headers := []string{"Équipe", "J", "G", "N", "P", "BP", "BC", "Diff", "Pts"}
		for i, h := range headers {
			f.SetCellValue(sheet, cellRef(i+1, 1), h)
		}
		if headerStyle != 0 {
			for i := range headers {
				f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), headerStyle)
			}
		}

		for i, s := range tables[g.ID] {
			row := i + 2
			f.SetCellValue(sheet, cellRef(1, row), teamLabel(t, s.TeamID))
			f.SetCellValue(sheet, cellRef(2, row), s.Played)
			f.SetCellValue(sheet, cellRef(3, row), s.Wins)
			f.SetCellValue(sheet, cellRef(4, row), s.Draws)
			f.SetCellValue(sheet, cellRef(5, row), s.Losses)
			f.SetCellValue(sheet, cellRef(6, row), s.GoalsFor)
			f.SetCellValue(sheet, cellRef(7, row), s.GoalsAgainst)
			f.SetCellValue(sheet, cellRef(8, row), s.GoalDifference)
			f.SetCellValue(sheet, cellRef(9, row), s.Points)
		}

		f.SetColWidth(sheet, "A", "A", 24)
		f.SetColWidth(sheet, "B", "I", 6)
	}

	return nil
}

// teamLabel prefers the display name; knockout placeholders pass
// through unchanged.
func teamLabel(t *model.Tournament, teamID string) string {
	if team, ok := t.TeamByID(teamID); ok {
		return team.Name
	}
	return teamID
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
