// Package dedupe merges the candidate rows produced by the extraction
// strategies. Several strategies usually find the same record; merging keeps
// one copy per (team, player, game time) and folds complementary fragments
// into it.
package dedupe

import (
	"sort"
	"strings"

	"github.com/fortuna/sideline/internal/classify"
	"github.com/fortuna/sideline/internal/report"
)

type mergeKey struct {
	team     string
	player   string
	gameTime string
}

// Merge collapses duplicate candidate rows. Rows with an empty player or the
// not-submitted sentinel never merge with anything; they pass through as-is.
// For a duplicate, an incoming reason contaminated by neighbouring table text
// is discarded, a genuinely new reason is appended, and empty status,
// matchup, game time and team cells are back-filled from the duplicate.
// Output order is by (page, row index), so merging twice is a no-op.
func Merge(rows []report.Row) []report.Row {
	if len(rows) == 0 {
		return nil
	}

	merged := make([]report.Row, 0, len(rows))
	index := make(map[mergeKey]int)

	for _, row := range rows {
		key := mergeKey{
			team:     strings.ToUpper(strings.TrimSpace(row.Team)),
			player:   strings.ToUpper(strings.TrimSpace(row.Player)),
			gameTime: strings.TrimSpace(row.GameTime),
		}
		if key.player == "" || key.player == report.SentinelNotSubmitted {
			merged = append(merged, row)
			continue
		}

		at, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, row)
			continue
		}

		existing := &merged[at]
		newReason := strings.TrimSpace(row.Reason)
		if newReason != "" && classify.ContaminatedReason(newReason) {
			continue
		}
		if newReason != "" && !strings.Contains(existing.Reason, newReason) {
			existing.Reason = strings.TrimSpace(existing.Reason + " " + newReason)
		}
		if existing.Status == "" {
			existing.Status = row.Status
		}
		if existing.Matchup == "" {
			existing.Matchup = row.Matchup
		}
		if existing.GameTime == "" {
			existing.GameTime = row.GameTime
		}
		if existing.Team == "" {
			existing.Team = row.Team
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Page != merged[j].Page {
			return merged[i].Page < merged[j].Page
		}
		return merged[i].RowIndex < merged[j].RowIndex
	})
	return merged
}
