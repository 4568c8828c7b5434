package normalize

import (
	"testing"

	"github.com/fortuna/sideline/internal/report"
)

const gameDate = "02/07/2026"

func TestRowsPropagatesContext(t *testing.T) {
	rows := []report.Row{
		{GameTime: "02:00 (ET)", Matchup: "LAL@GSW", Team: "Los Angeles Lakers",
			Player: "James, LeBron", Status: "Out", Reason: "Rest", Page: 1, RowIndex: 0},
		{GameTime: "TBD", Matchup: "LAL@GSW", Team: "Golden State Warriors",
			Player: "Curry, Stephen", Status: "Available", Reason: "Injury/Illness - Wrist", Page: 1, RowIndex: 1},
		{Player: "Hachimura, Rui", Status: "Probable", Reason: "Injury/Illness - Calf", Page: 1, RowIndex: 2},
	}
	got := Rows(rows, gameDate)
	if len(got) != 3 {
		t.Fatalf("got %d rows: %+v", len(got), got)
	}
	if got[1].GameTime != "02:00 (ET)" {
		t.Errorf("TBD should resolve through the matchup's known time: %+v", got[1])
	}
	if got[2].Team != "Golden State Warriors" || got[2].Matchup != "LAL@GSW" || got[2].GameTime != "02:00 (ET)" {
		t.Errorf("blank cells should inherit context: %+v", got[2])
	}
	for i, row := range got {
		if row.GameDate != gameDate {
			t.Errorf("row %d missing game date: %+v", i, row)
		}
	}
}

func TestRowsCollapsesSentinel(t *testing.T) {
	rows := []report.Row{
		{GameTime: "02:00 (ET)", Matchup: "LAL@GSW", Team: "Los Angeles Lakers",
			Player: "James, LeBron", Status: "Out", Reason: "Rest", Page: 1, RowIndex: 0},
		{GameTime: "TBD", Matchup: "WAS@NYK", Team: "Washington Wizards",
			Player: report.SentinelNotSubmitted, Page: 2, RowIndex: 0},
	}
	got := Rows(rows, gameDate)
	if len(got) != 2 {
		t.Fatalf("got %d rows: %+v", len(got), got)
	}
	placeholder := got[1]
	if placeholder.Player != report.SentinelNotSubmitted ||
		placeholder.Status != report.SentinelNotSubmitted ||
		placeholder.Reason != report.SentinelNotSubmitted {
		t.Errorf("placeholder fields: %+v", placeholder)
	}
	if placeholder.GameTime != "02:00 (ET)" {
		t.Errorf("placeholder time should fall back to the last concrete time: %+v", placeholder)
	}
	if placeholder.GameDate != gameDate {
		t.Errorf("placeholder game date: %+v", placeholder)
	}
}

func TestRowsDropsSentinelWithoutTeam(t *testing.T) {
	rows := []report.Row{
		{GameTime: "TBD", Player: report.SentinelNotSubmitted, Page: 1, RowIndex: 0},
	}
	if got := Rows(rows, gameDate); len(got) != 0 {
		t.Fatalf("unresolvable placeholder should be dropped: %+v", got)
	}
}

func TestRowsRecoversStatusAndReasonFromPlayer(t *testing.T) {
	rows := []report.Row{
		{GameTime: "07:30 (ET)", Matchup: "BOS@DET", Team: "Boston Celtics",
			Player: "Brown, Jaylen Out Injury/Illness - Right Knee", Page: 1, RowIndex: 0},
	}
	got := Rows(rows, gameDate)
	if len(got) != 1 {
		t.Fatalf("got %d rows: %+v", len(got), got)
	}
	row := got[0]
	if row.Player != "Brown, Jaylen" {
		t.Errorf("player = %q", row.Player)
	}
	if row.Status != "Out" {
		t.Errorf("status = %q", row.Status)
	}
	if row.Reason != "Injury/Illness - Right Knee" {
		t.Errorf("reason = %q", row.Reason)
	}
}

func TestRowsDropsHeaderRows(t *testing.T) {
	rows := []report.Row{
		{Team: "Injury Report: 02/07/26 05:00 PM", Player: "02/07/26 05:00PM", Page: 1, RowIndex: 0},
		{GameTime: "07:30 (ET)", Matchup: "BOS@DET", Team: "Boston Celtics",
			Player: "Brown, Jaylen", Status: "Out", Reason: "Rest", Page: 1, RowIndex: 1},
	}
	got := Rows(rows, gameDate)
	if len(got) != 1 || got[0].Player != "Brown, Jaylen" {
		t.Fatalf("header row should be dropped: %+v", got)
	}
}

func TestRowsAppendsReasonContinuation(t *testing.T) {
	rows := []report.Row{
		{GameTime: "07:30 (ET)", Matchup: "BOS@DET", Team: "Boston Celtics",
			Player: "Brown, Jaylen", Status: "Out", Reason: "Injury/Illness - Right Knee Soreness", Page: 1, RowIndex: 0},
		{Team: "Boston Celtics", Reason: "Recovery", Page: 1, RowIndex: 1},
	}
	got := Rows(rows, gameDate)
	if len(got) != 1 {
		t.Fatalf("got %d rows: %+v", len(got), got)
	}
	if got[0].Reason != "Injury/Illness - Right Knee Soreness Recovery" {
		t.Errorf("continuation not appended: %q", got[0].Reason)
	}
}

func TestRowsCarriesSplitReasonForward(t *testing.T) {
	rows := []report.Row{
		{GameTime: "07:30 (ET)", Matchup: "BOS@DET", Team: "Boston Celtics",
			Player: "Brown, Jaylen", Status: "Out",
			Reason: "Injury/Illness - Right Knee Injury/Illness - Left Ankle Sprain", Page: 1, RowIndex: 0},
		{GameTime: "07:30 (ET)", Matchup: "BOS@DET", Team: "Boston Celtics",
			Player: "White, Derrick", Status: "Questionable", Page: 1, RowIndex: 1},
	}
	got := Rows(rows, gameDate)
	if len(got) != 2 {
		t.Fatalf("got %d rows: %+v", len(got), got)
	}
	if got[0].Reason != "Injury/Illness - Right Knee" {
		t.Errorf("first reason should stop at the spill: %q", got[0].Reason)
	}
	if got[1].Reason != "Injury/Illness - Left Ankle Sprain" {
		t.Errorf("spill should attach to the next record: %q", got[1].Reason)
	}
}

func TestRowsHoldsOrphanFragmentForNextRecord(t *testing.T) {
	rows := []report.Row{
		{Matchup: "Soreness", Page: 2, RowIndex: 0},
		{GameTime: "08:00 (ET)", Matchup: "MIA@WAS", Team: "Miami Heat",
			Player: "Butler, Jimmy", Status: "Probable", Page: 2, RowIndex: 1},
	}
	got := Rows(rows, gameDate)
	if len(got) != 1 {
		t.Fatalf("got %d rows: %+v", len(got), got)
	}
	if got[0].Reason != "Soreness" {
		t.Errorf("pending fragment should attach to the next record: %q", got[0].Reason)
	}
}

func TestRowsDiscardsPlayerBlobFragments(t *testing.T) {
	rows := []report.Row{
		{GameTime: "07:30 (ET)", Matchup: "BOS@DET", Team: "Boston Celtics",
			Player: "Brown, Jaylen", Status: "Out", Reason: "Rest", Page: 1, RowIndex: 0},
		{Team: "Boston Celtics", Reason: "Curry, Seth Out Injury/Illness Page 3 of 9", Page: 1, RowIndex: 1},
	}
	got := Rows(rows, gameDate)
	if len(got) != 1 {
		t.Fatalf("got %d rows: %+v", len(got), got)
	}
	if got[0].Reason != "Rest" {
		t.Errorf("spillover must not contaminate the previous record: %q", got[0].Reason)
	}
}
