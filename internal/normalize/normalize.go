// Package normalize reconciles merged candidate rows into the final report:
// it drops leaked chrome, collapses not-submitted placeholders, recovers
// status and reason text that bled into the player cell, propagates team,
// matchup and game-time context forward, and re-homes reason fragments that
// the PDF renderer detached from their records.
package normalize

import (
	"strings"

	"github.com/fortuna/sideline/internal/classify"
	"github.com/fortuna/sideline/internal/report"
)

// rollingContext carries the state the reconciler threads through the row
// stream. Rows inherit the previous row's team, matchup and game time when
// their own cells are blank; game times learned for a matchup resolve later
// placeholder rows of the same matchup. Pending fragments are orphan reason
// text waiting for the next record on the same page, carryovers are reason
// tails split off a record that really belong to a later one.
type rollingContext struct {
	lastTeam         string
	lastGameTime     string
	lastRealGameTime string
	lastMatchup      string
	timeByMatchup    map[string]string

	pendingReason map[int]string
	pendingTeam   map[int]string
	carryReason   map[int]string
	carryTeam     map[int]string
}

func newRollingContext() *rollingContext {
	return &rollingContext{
		timeByMatchup: make(map[string]string),
		pendingReason: make(map[int]string),
		pendingTeam:   make(map[int]string),
		carryReason:   make(map[int]string),
		carryTeam:     make(map[int]string),
	}
}

// Rows reconciles merged rows into the final report ordering, attaching
// gameDate to every emitted row.
func Rows(rows []report.Row, gameDate string) []report.Row {
	ctx := newRollingContext()
	var normalized []report.Row

	for _, row := range rows {
		player := row.Player
		status := row.Status
		rawReason := row.Reason
		reason := rawReason
		rawTeam := strings.TrimSpace(row.Team)
		if reason != "" {
			reason = classify.TrimReasonNoise(reason)
		}

		if classify.IsHeaderRow(rawTeam, player) {
			continue
		}

		if isSentinel(player) || isSentinel(status) {
			if placeholder, ok := ctx.resolveSentinel(row, gameDate); ok {
				normalized = append(normalized, placeholder)
			}
			continue
		}

		if status == "" && player != "" {
			if found, remainder, ok := classify.ExtractStatus(player); ok {
				status = found
				player = remainder
			}
		}

		if reason == "" && player != "" {
			if at := classify.FindReasonStart(player); at >= 0 {
				reason = strings.Trim(player[at:], " -")
				player = strings.Trim(player[:at], " -")
			} else if classify.StartsWithReasonPrefix(player) {
				reason = player
				player = ""
			}
		}

		if player == "" && status == "" && reason == "" {
			ctx.stashFragment(row, rawTeam, &normalized)
			continue
		}

		ctx.fillTeamAndMatchup(&row)
		ctx.fillGameTime(&row)
		currentTeam := row.Team
		if currentTeam == "" {
			currentTeam = ctx.lastTeam
		}

		if player == "" && status == "" && reason != "" {
			ctx.stashOrAppendReason(row, rawReason, currentTeam, &normalized)
			continue
		}

		reason = ctx.applyPending(row.Page, currentTeam, reason)
		reason = ctx.applyCarryover(row.Page, player, status, reason)

		if reason != "" {
			reason = classify.TrimReasonNoise(reason)
			head, spill := classify.SplitReasonOnPrefixes(reason)
			reason = classify.TrimReasonNoise(head)
			spill = classify.TrimReasonNoise(spill)
			if spill != "" && !classify.LooksLikePlayerBlob(spill) {
				ctx.carryReason[row.Page] = spill
				ctx.carryTeam[row.Page] = rawTeam
			}
		}

		if player == "" && status == "" && reason == "" {
			continue
		}

		row.Player = player
		row.Status = status
		row.Reason = reason
		row.GameDate = gameDate
		normalized = append(normalized, row)
	}
	return normalized
}

func isSentinel(value string) bool {
	return strings.ToUpper(strings.TrimSpace(value)) == report.SentinelNotSubmitted
}

// resolveSentinel turns a not-submitted row into its canonical placeholder.
// The game time resolves through the matchup's known tip-off, then the last
// concrete time seen. A placeholder without a resolvable team is dropped.
func (ctx *rollingContext) resolveSentinel(row report.Row, gameDate string) (report.Row, bool) {
	team := strings.TrimSpace(row.Team)
	if team == "" {
		team = ctx.lastTeam
	}
	matchup := strings.TrimSpace(row.Matchup)
	if matchup == "" {
		matchup = ctx.lastMatchup
	}
	matchupKey := strings.ToUpper(matchup)

	resolved := strings.TrimSpace(row.GameTime)
	if resolved == "" || strings.EqualFold(resolved, "TBD") {
		if matchupKey != "" {
			resolved = ctx.timeByMatchup[matchupKey]
		} else {
			resolved = ""
		}
	}
	if resolved == "" || strings.EqualFold(resolved, "TBD") {
		resolved = ctx.lastRealGameTime
		if resolved == "" {
			resolved = ctx.lastGameTime
		}
		if resolved == "" {
			resolved = "TBD"
		}
	}
	if resolved != "" && !strings.EqualFold(resolved, "TBD") {
		if matchupKey != "" {
			ctx.timeByMatchup[matchupKey] = resolved
		}
		ctx.lastRealGameTime = resolved
	}

	if team == "" || strings.ToUpper(team) == report.SentinelNotSubmitted {
		return report.Row{}, false
	}
	return report.Row{
		GameTime: resolved,
		Matchup:  matchup,
		Team:     team,
		Player:   report.SentinelNotSubmitted,
		Status:   report.SentinelNotSubmitted,
		Reason:   report.SentinelNotSubmitted,
		Page:     row.Page,
		RowIndex: row.RowIndex,
		GameDate: gameDate,
	}, true
}

func (ctx *rollingContext) fillTeamAndMatchup(row *report.Row) {
	if strings.TrimSpace(row.Team) == "" {
		row.Team = ctx.lastTeam
	} else if team := strings.TrimSpace(row.Team); strings.ToUpper(team) != report.SentinelNotSubmitted {
		ctx.lastTeam = team
	}
	if strings.TrimSpace(row.Matchup) == "" {
		row.Matchup = ctx.lastMatchup
	} else if matchup := strings.TrimSpace(row.Matchup); strings.ToUpper(matchup) != report.SentinelNotSubmitted {
		ctx.lastMatchup = matchup
	}
}

func (ctx *rollingContext) fillGameTime(row *report.Row) {
	matchupKey := strings.ToUpper(strings.TrimSpace(row.Matchup))
	timeValue := strings.TrimSpace(row.GameTime)
	upper := strings.ToUpper(timeValue)
	if timeValue != "" && upper != "TBD" && upper != report.SentinelNotSubmitted {
		row.GameTime = timeValue
		ctx.lastGameTime = timeValue
		ctx.lastRealGameTime = timeValue
		if matchupKey != "" {
			ctx.timeByMatchup[matchupKey] = timeValue
		}
		return
	}
	inferred := ""
	if matchupKey != "" {
		inferred = ctx.timeByMatchup[matchupKey]
	}
	if inferred == "" {
		inferred = ctx.lastRealGameTime
	}
	if inferred == "" {
		inferred = ctx.lastGameTime
	}
	if inferred == "" {
		inferred = "TBD"
	}
	row.GameTime = inferred
}

// stashFragment handles a row carrying no player, status or reason at all:
// the team and matchup cells may still hold a stray reason fragment worth
// re-homing.
func (ctx *rollingContext) stashFragment(row report.Row, rawTeam string, normalized *[]report.Row) {
	possible := classify.TrimReasonNoise(strings.TrimSpace(row.Team + " " + row.Matchup))
	if possible == "" || len(possible) > 120 {
		return
	}
	if !classify.LooksLikeReasonContinuation(possible) || classify.LooksLikePlayerBlob(possible) {
		return
	}
	if len(*normalized) > 0 {
		prev := &(*normalized)[len(*normalized)-1]
		if prev.Page == row.Page {
			prev.Reason = strings.TrimSpace(prev.Reason + " " + possible)
			return
		}
	}
	ctx.pendingReason[row.Page] = possible
	ctx.pendingTeam[row.Page] = rawTeam
}

// stashOrAppendReason handles a reason-only row: append it to the previous
// record on the same page when it reads like a mid-sentence continuation,
// otherwise hold it for the page's next record.
func (ctx *rollingContext) stashOrAppendReason(row report.Row, rawReason, currentTeam string, normalized *[]report.Row) {
	raw := classify.NormalizeSpaces(rawReason)
	if classify.LooksLikePlayerBlob(raw) {
		return
	}
	reason := classify.TrimReasonNoise(raw)
	if reason == "" || classify.LooksLikePlayerBlob(reason) {
		return
	}
	if len(*normalized) > 0 {
		prev := &(*normalized)[len(*normalized)-1]
		if prev.Page == row.Page && (currentTeam == "" || prev.Team == currentTeam) {
			if classify.ShouldAppendReason(prev.Reason, reason) {
				prev.Reason = strings.TrimSpace(prev.Reason + " " + reason)
				return
			}
		}
	}
	if classify.LooksLikeReasonContinuation(reason) {
		ctx.pendingReason[row.Page] = reason
		ctx.pendingTeam[row.Page] = currentTeam
	}
}

// applyPending prepends a page's held fragment to the next record's reason.
// The fragment is consumed either way once its team gate passes.
func (ctx *rollingContext) applyPending(page int, currentTeam, reason string) string {
	pending, ok := ctx.pendingReason[page]
	if !ok || pending == "" || classify.LooksLikePlayerBlob(pending) {
		return reason
	}
	pendingTeam := ctx.pendingTeam[page]
	if pendingTeam != "" && pendingTeam != currentTeam {
		return reason
	}
	if reason == "" || !classify.StartsWithReasonPrefix(reason) || classify.LooksLikeReasonContinuation(reason) {
		reason = classify.TrimReasonNoise(strings.TrimSpace(pending + " " + reason))
	}
	delete(ctx.pendingReason, page)
	delete(ctx.pendingTeam, page)
	return reason
}

// applyCarryover prepends reason text split off an earlier record on the
// same page. Unlike pending fragments, a carryover survives until a row with
// a player or status claims it.
func (ctx *rollingContext) applyCarryover(page int, player, status, reason string) string {
	carry, ok := ctx.carryReason[page]
	if !ok || carry == "" || classify.LooksLikePlayerBlob(carry) {
		return reason
	}
	if player == "" && status == "" {
		return reason
	}
	if reason == "" || !classify.StartsWithReasonPrefix(reason) || classify.LooksLikeReasonContinuation(reason) {
		reason = classify.TrimReasonNoise(strings.TrimSpace(carry + " " + reason))
		delete(ctx.carryReason, page)
		delete(ctx.carryTeam, page)
	}
	return reason
}
