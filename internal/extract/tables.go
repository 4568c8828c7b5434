package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fortuna/sideline/internal/report"
)

// bandGap is the horizontal whitespace that separates two inferred table
// columns.
const bandGap = 12.0

var nonLetterPattern = regexp.MustCompile(`[^a-z]`)

// TableStrategy infers a table grid from text alignment alone: word
// x-origins across a page are clustered into column bands, each visual line
// becomes a row of cells, and the first row whose cells name the report
// columns is taken as the table header. Header labels map to semantic
// columns by case-insensitive keyword containment, so "GAME DATE/TIME" and
// "GAME TIME" both resolve to the game-time column. A data row populating
// only the reason cell continues the previous record.
type TableStrategy struct{}

func (TableStrategy) Name() string { return "tables" }

var semanticKeys = []struct {
	column   string
	keywords []string
}{
	{"game", []string{"gamedate", "gametime", "game", "date", "time"}},
	{"matchup", []string{"matchup", "match"}},
	{"team", []string{"team"}},
	{"player", []string{"player", "name"}},
	{"status", []string{"status"}},
	{"reason", []string{"reason", "injury", "comment"}},
}

func normalizeHeader(value string) string {
	return nonLetterPattern.ReplaceAllString(strings.ToLower(value), "")
}

func (TableStrategy) Extract(doc *Document) []report.Row {
	var rows []report.Row
	for _, page := range doc.Pages {
		rows = append(rows, parsePageTable(page)...)
	}
	return rows
}

func parsePageTable(page Page) []report.Row {
	bands := inferBands(page)
	if len(bands) < 2 {
		return nil
	}

	grid := make([][]string, 0, len(page.Lines))
	for _, line := range page.Lines {
		// Title and footer chrome never belong to the grid, but the column
		// header line does: it is the table's first row.
		upper := strings.ToUpper(line.Text())
		if strings.Contains(upper, "NBA INJURY REPORT") || strings.Contains(upper, "REPORT UPDATED") ||
			strings.HasPrefix(upper, "PAGE ") {
			continue
		}
		cells := make([]string, len(bands))
		for _, word := range line.Words {
			idx := bandIndex(bands, word.X)
			if cells[idx] == "" {
				cells[idx] = word.Text
			} else {
				cells[idx] += " " + word.Text
			}
		}
		grid = append(grid, cells)
	}
	if len(grid) < 2 {
		return nil
	}

	headerRow, indexes := findTableHeader(grid)
	if headerRow < 0 {
		return nil
	}

	safeGet := func(cells []string, idx int) string {
		if idx < 0 || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	var rows []report.Row
	rowIndex := 0
	for _, cells := range grid[headerRow+1:] {
		gameTime := safeGet(cells, indexes["game"])
		matchup := safeGet(cells, indexes["matchup"])
		team := safeGet(cells, indexes["team"])
		player := safeGet(cells, indexes["player"])
		status := safeGet(cells, indexes["status"])
		reason := safeGet(cells, indexes["reason"])

		if player == "" && team == "" && status == "" && reason != "" {
			if len(rows) > 0 {
				last := &rows[len(rows)-1]
				last.Reason = strings.TrimSpace(last.Reason + " " + reason)
			}
			continue
		}
		if team == "" && player == "" && status == "" && reason == "" {
			continue
		}
		upperPlayer := strings.ToUpper(player)
		if upperPlayer == "PLAYER" || upperPlayer == "NAME" {
			continue
		}

		if gameTime == "" {
			gameTime = "TBD"
		}
		rows = append(rows, report.Row{
			GameTime: gameTime,
			Matchup:  matchup,
			Team:     team,
			Player:   player,
			Status:   status,
			Reason:   reason,
			Page:     page.Number,
			RowIndex: rowIndex,
		})
		rowIndex++
	}
	return rows
}

// inferBands clusters word spans into column bands: a new band starts where
// a word's left edge clears the rightmost edge seen so far by more than
// bandGap. Using spans rather than origins keeps multi-word cells in one
// band.
func inferBands(page Page) []float64 {
	type span struct{ x, end float64 }
	var spans []span
	for _, line := range page.Lines {
		for _, word := range line.Words {
			spans = append(spans, span{x: word.X, end: word.X + word.W})
		}
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].x < spans[j].x })

	bands := []float64{spans[0].x}
	reach := spans[0].end
	for _, s := range spans[1:] {
		if s.x-reach > bandGap {
			bands = append(bands, s.x)
			reach = s.end
			continue
		}
		if s.end > reach {
			reach = s.end
		}
	}
	return bands
}

func bandIndex(bands []float64, x float64) int {
	for i := len(bands) - 1; i >= 0; i-- {
		if x >= bands[i] {
			return i
		}
	}
	return 0
}

// findTableHeader locates the grid row naming the report columns and maps
// each semantic column to its band index. Missing columns map to -1.
func findTableHeader(grid [][]string) (int, map[string]int) {
	for rowIdx, cells := range grid {
		indexes := map[string]int{
			"game": -1, "matchup": -1, "team": -1, "player": -1, "status": -1, "reason": -1,
		}
		matched := 0
		for _, semantic := range semanticKeys {
			for cellIdx, cell := range cells {
				if cell == "" {
					continue
				}
				normalized := normalizeHeader(cell)
				if normalized == "" {
					continue
				}
				found := false
				for _, keyword := range semantic.keywords {
					if strings.Contains(normalized, keyword) {
						found = true
						break
					}
				}
				if found {
					indexes[semantic.column] = cellIdx
					matched++
					break
				}
			}
		}
		if matched >= 4 && indexes["team"] >= 0 && indexes["player"] >= 0 {
			return rowIdx, indexes
		}
	}
	return -1, nil
}
