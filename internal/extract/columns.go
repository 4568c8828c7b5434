package extract

import (
	"math"
	"strings"

	"github.com/fortuna/sideline/internal/report"
)

var columnKeys = []string{"GAME", "MATCHUP", "TEAM", "PLAYER", "STATUS", "REASON"}

type columnBound struct {
	label string
	x0    float64
	x1    float64
}

// ColumnStrategy derives column boundaries from the x-positions of the
// header words (GAME, MATCHUP, TEAM, PLAYER, optionally STATUS and REASON)
// and assigns every subsequent word to the column whose half-open interval
// contains its x-origin. Boundaries persist across pages that repeat no
// header. A line populating only the REASON column continues the previous
// record.
type ColumnStrategy struct{}

func (ColumnStrategy) Name() string { return "columns" }

func (ColumnStrategy) Extract(doc *Document) []report.Row {
	var rows []report.Row
	var bounds []columnBound

	for _, page := range doc.Pages {
		headerIndex := -1
		for lineIndex, line := range page.Lines {
			upper := strings.ToUpper(line.Text())
			if strings.Contains(upper, "GAME") && strings.Contains(upper, "MATCHUP") &&
				strings.Contains(upper, "TEAM") && strings.Contains(upper, "PLAYER") {
				headerIndex = lineIndex
				break
			}
		}

		if headerIndex >= 0 {
			if derived := deriveBounds(page.Lines[headerIndex]); derived != nil {
				bounds = derived
			}
		}
		if bounds == nil {
			continue
		}

		for lineIndex, line := range page.Lines {
			if lineIndex == headerIndex {
				continue
			}
			upper := strings.ToUpper(line.Text())
			if strings.Contains(upper, "NBA INJURY REPORT") || strings.Contains(upper, "REPORT UPDATED") ||
				strings.HasPrefix(upper, "PAGE ") {
				continue
			}

			cells := make(map[string]string, len(bounds))
			for _, word := range line.Words {
				for _, bound := range bounds {
					if word.X >= bound.x0 && word.X < bound.x1 {
						if cells[bound.label] == "" {
							cells[bound.label] = word.Text
						} else {
							cells[bound.label] += " " + word.Text
						}
						break
					}
				}
			}

			hasPlayer := cells["PLAYER"] != ""
			hasTeam := cells["TEAM"] != ""
			hasStatus := cells["STATUS"] != ""
			hasReason := cells["REASON"] != ""

			if hasReason && !hasPlayer && !hasTeam && !hasStatus {
				if len(rows) > 0 {
					last := &rows[len(rows)-1]
					last.Reason = strings.TrimSpace(last.Reason + " " + cells["REASON"])
				}
				continue
			}
			if !hasPlayer && !hasTeam && !hasStatus && !hasReason {
				continue
			}

			gameTime := cells["GAME"]
			if gameTime == "" {
				gameTime = "TBD"
			}
			rows = append(rows, report.Row{
				GameTime: gameTime,
				Matchup:  cells["MATCHUP"],
				Team:     cells["TEAM"],
				Player:   cells["PLAYER"],
				Status:   cells["STATUS"],
				Reason:   cells["REASON"],
				Page:     page.Number,
				RowIndex: lineIndex,
			})
		}
	}
	return rows
}

// deriveBounds turns header word positions into half-open column intervals.
// Requires at least four recognized header words.
func deriveBounds(header Line) []columnBound {
	positions := make(map[string]float64)
	for _, word := range header.Words {
		upper := strings.ToUpper(word.Text)
		for _, key := range columnKeys {
			if upper == key {
				if _, seen := positions[key]; !seen {
					positions[key] = word.X
				}
			}
		}
	}

	var bounds []columnBound
	for _, key := range columnKeys {
		if x, ok := positions[key]; ok {
			bounds = append(bounds, columnBound{label: key, x0: x})
		}
	}
	if len(bounds) < 4 {
		return nil
	}
	for i := 0; i < len(bounds); i++ {
		for j := i + 1; j < len(bounds); j++ {
			if bounds[j].x0 < bounds[i].x0 {
				bounds[i], bounds[j] = bounds[j], bounds[i]
			}
		}
	}
	for i := range bounds {
		if i+1 < len(bounds) {
			bounds[i].x1 = bounds[i+1].x0
		} else {
			bounds[i].x1 = math.Inf(1)
		}
	}
	return bounds
}
