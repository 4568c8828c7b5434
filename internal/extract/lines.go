package extract

import (
	"regexp"
	"strings"

	"github.com/fortuna/sideline/internal/classify"
	"github.com/fortuna/sideline/internal/report"
)

var (
	fieldSplitPattern = regexp.MustCompile(`\s{2,}`)
	timeStartPattern  = regexp.MustCompile(`^\d{2}:\d{2}`)
)

// LineStrategy parses each page's text lines, splitting fields on runs of
// two or more spaces. A line starting a new record has at least four fields
// or opens with an HH:MM token; anything shorter continues the previous
// record's reason.
type LineStrategy struct{}

func (LineStrategy) Name() string { return "lines" }

func (LineStrategy) Extract(doc *Document) []report.Row {
	var rows []report.Row
	for _, page := range doc.Pages {
		rows = append(rows, parseTextLines(page.TextLines(), page.Number)...)
	}
	return rows
}

func parseTextLines(textLines []string, pageNum int) []report.Row {
	var rows []report.Row
	var lines []string
	for _, line := range textLines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	for lineIndex, line := range lines {
		if classify.IsHeaderOrFooter(line) {
			continue
		}
		if strings.ToUpper(line) == report.SentinelNotSubmitted {
			continue
		}

		var parts []string
		for _, part := range fieldSplitPattern.Split(line, -1) {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) == 1 && strings.ToUpper(parts[0]) == report.SentinelNotSubmitted {
			continue
		}

		isNewRecord := len(parts) >= 4 || (len(parts) > 0 && timeStartPattern.MatchString(parts[0]))
		if isNewRecord {
			row := report.Row{Page: pageNum, RowIndex: lineIndex}
			switch {
			case len(parts) >= 6:
				row.GameTime = parts[0]
				row.Matchup = parts[1]
				row.Team = parts[2]
				row.Player = parts[3]
				row.Status = parts[4]
				row.Reason = strings.Join(parts[5:], " ")
			case len(parts) == 5:
				row.GameTime = parts[0]
				row.Team = parts[1]
				row.Player = parts[2]
				row.Status = parts[3]
				row.Reason = parts[4]
			default:
				fields := []*string{&row.GameTime, &row.Team, &row.Player, &row.Status}
				for i := 0; i < len(parts) && i < len(fields); i++ {
					*fields[i] = parts[i]
				}
			}
			if row.GameTime == "" {
				row.GameTime = "TBD"
			}
			rows = append(rows, row)
			continue
		}

		if len(rows) > 0 && len(parts) > 0 {
			continuation := strings.Join(parts, " ")
			if strings.ToUpper(continuation) != report.SentinelNotSubmitted {
				last := &rows[len(rows)-1]
				last.Reason = strings.TrimSpace(last.Reason + " " + continuation)
			}
		}
	}
	return rows
}
