// Package validate checks extracted report CSV files for structural and
// content defects: missing columns, empty cells, contaminated or runaway
// reasons, and duplicate player rows.
package validate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fortuna/sideline/internal/classify"
	"github.com/fortuna/sideline/internal/report"
)

// RequiredColumns are the columns every report CSV must carry.
var RequiredColumns = []string{"gameDate", "team", "player", "status", "reason", "page"}

// MaxReasonLen is the longest plausible reason; anything beyond it indicates
// merged rows.
const MaxReasonLen = 180

const (
	LevelError = "ERROR"
	LevelWarn  = "WARN"
)

// Issue is a validation finding for a file or a specific row. RowNumber is
// 1-based counting the header line, 0 for file-level issues.
type Issue struct {
	Level     string
	Code      string
	Message   string
	RowNumber int
}

func (i Issue) String() string {
	if i.RowNumber > 0 {
		return fmt.Sprintf("%s[%s] row=%d: %s", i.Level, i.Code, i.RowNumber, i.Message)
	}
	return fmt.Sprintf("%s[%s]: %s", i.Level, i.Code, i.Message)
}

// Result aggregates the findings for one CSV file.
type Result struct {
	CSVPath  string
	RowCount int
	Issues   []Issue
}

// Errors returns the ERROR-level issues.
func (r *Result) Errors() []Issue {
	return r.filter(LevelError)
}

// Warnings returns the WARN-level issues.
func (r *Result) Warnings() []Issue {
	return r.filter(LevelWarn)
}

// OK reports whether the file passed, ignoring warnings.
func (r *Result) OK() bool {
	return len(r.Errors()) == 0
}

func (r *Result) filter(level string) []Issue {
	var matched []Issue
	for _, issue := range r.Issues {
		if issue.Level == level {
			matched = append(matched, issue)
		}
	}
	return matched
}

func (r *Result) addError(code, message string, rowNumber int) {
	r.Issues = append(r.Issues, Issue{Level: LevelError, Code: code, Message: message, RowNumber: rowNumber})
}

func (r *Result) addWarn(code, message string, rowNumber int) {
	r.Issues = append(r.Issues, Issue{Level: LevelWarn, Code: code, Message: message, RowNumber: rowNumber})
}

// File validates a report CSV. With strictWarnings, every warning is echoed
// as an error with a STRICT_ prefixed code.
func File(path string, strictWarnings bool) (*Result, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	result, err := validateReader(handle, strictWarnings)
	if err != nil {
		return nil, err
	}
	result.CSVPath = path
	return result, nil
}

func validateReader(source io.Reader, strictWarnings bool) (*Result, error) {
	reader := csv.NewReader(source)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	result := &Result{}
	var columns []string
	if len(records) > 0 {
		columns = records[0]
		result.RowCount = len(records) - 1
	}

	index := make(map[string]int, len(columns))
	for i, column := range columns {
		index[column] = i
	}
	var missing []string
	for _, column := range RequiredColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		result.addError("MISSING_COLUMNS",
			fmt.Sprintf("Missing required columns: %v", missing), 0)
		return result, nil
	}
	if result.RowCount == 0 {
		result.addError("EMPTY_FILE", "CSV has no data rows.", 0)
		return result, nil
	}

	cell := func(record []string, column string) string {
		i := index[column]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	type rowKey struct {
		gameDate, team, player, status, page string
	}
	seen := make(map[rowKey]bool)

	for n, record := range records[1:] {
		rowNumber := n + 2
		team := cell(record, "team")
		player := cell(record, "player")
		status := cell(record, "status")
		reason := classify.NormalizeSpaces(cell(record, "reason"))
		gameDate := cell(record, "gameDate")
		page := cell(record, "page")

		combined := strings.ToUpper(team + " " + player + " " + status + " " + reason)
		isPlaceholder := strings.Contains(combined, report.SentinelNotSubmitted) ||
			strings.Contains(combined, "NOTYETSUBMITTED")

		if !isPlaceholder {
			if team == "" {
				result.addError("EMPTY_TEAM", "Missing team value.", rowNumber)
			}
			if player == "" {
				result.addError("EMPTY_PLAYER", "Missing player value.", rowNumber)
			}
			if status == "" {
				result.addError("EMPTY_STATUS", "Missing status value.", rowNumber)
			}
			if reason == "" {
				result.addError("EMPTY_REASON", "Missing reason value.", rowNumber)
			}
		}

		if reason != "" && len(reason) > MaxReasonLen {
			result.addError("REASON_TOO_LONG",
				fmt.Sprintf("Reason is suspiciously long (%d chars).", len(reason)), rowNumber)
		}
		if reason != "" && classify.ContaminatedReason(reason) {
			result.addError("REASON_CONTAMINATED",
				"Reason contains player/page/matchup/date artifacts.", rowNumber)
		}
		if strings.Count(reason, "Injury/Illness") > 1 {
			result.addWarn("MULTI_INJURY_SEGMENT",
				"Reason contains multiple 'Injury/Illness' segments.", rowNumber)
		}

		key := rowKey{gameDate, strings.ToUpper(team), strings.ToUpper(player), strings.ToUpper(status), page}
		if seen[key] {
			result.addWarn("DUPLICATE_PLAYER_ROW", "Potential duplicate player row.", rowNumber)
		} else {
			seen[key] = true
		}
	}

	if strictWarnings {
		for _, warning := range result.Warnings() {
			result.addError("STRICT_"+warning.Code, warning.Message, warning.RowNumber)
		}
	}
	return result, nil
}

// FindLatestCSV returns the most recently modified report CSV in dataDir,
// or "" when none exists.
func FindLatestCSV(dataDir string) string {
	matches, err := filepath.Glob(filepath.Join(dataDir, "Injury-Report_*.csv"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	latest := ""
	var latestMod int64
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = path
			latestMod = mod
		}
	}
	return latest
}
