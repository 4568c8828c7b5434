package dedupe

import (
	"reflect"
	"testing"

	"github.com/fortuna/sideline/internal/report"
)

func TestMergeCollapsesDuplicates(t *testing.T) {
	rows := []report.Row{
		{GameTime: "07:00 (ET)", Team: "Boston Celtics", Player: "Brown, Jaylen", Status: "Out",
			Reason: "Injury/Illness - Right Knee", Page: 1, RowIndex: 2},
		{GameTime: "07:00 (ET)", Team: "boston celtics", Player: "BROWN, JAYLEN", Status: "",
			Matchup: "BOS@DET", Reason: "Soreness", Page: 1, RowIndex: 5},
	}
	merged := Merge(rows)
	if len(merged) != 1 {
		t.Fatalf("got %d rows: %+v", len(merged), merged)
	}
	row := merged[0]
	if row.Reason != "Injury/Illness - Right Knee Soreness" {
		t.Errorf("reason = %q", row.Reason)
	}
	if row.Matchup != "BOS@DET" {
		t.Errorf("matchup not back-filled: %+v", row)
	}
	if row.Status != "Out" {
		t.Errorf("status overwritten: %+v", row)
	}
}

func TestMergeDiscardsContaminatedReason(t *testing.T) {
	rows := []report.Row{
		{GameTime: "07:00 (ET)", Team: "Miami Heat", Player: "Butler, Jimmy", Status: "Probable",
			Reason: "Rest", Page: 1, RowIndex: 1},
		{GameTime: "07:00 (ET)", Team: "Miami Heat", Player: "Butler, Jimmy",
			Reason: "Adebayo, Bam Out Injury/Illness", Page: 1, RowIndex: 3},
	}
	merged := Merge(rows)
	if len(merged) != 1 {
		t.Fatalf("got %d rows", len(merged))
	}
	if merged[0].Reason != "Rest" {
		t.Errorf("contaminated reason should be dropped: %q", merged[0].Reason)
	}
}

func TestMergeSkipsRepeatedReason(t *testing.T) {
	rows := []report.Row{
		{GameTime: "TBD", Team: "Chicago Bulls", Player: "White, Coby", Status: "Available",
			Reason: "Injury/Illness - Left Calf Strain", Page: 2, RowIndex: 0},
		{GameTime: "TBD", Team: "Chicago Bulls", Player: "White, Coby", Status: "Available",
			Reason: "Left Calf Strain", Page: 2, RowIndex: 1},
	}
	merged := Merge(rows)
	if len(merged) != 1 {
		t.Fatalf("got %d rows", len(merged))
	}
	if merged[0].Reason != "Injury/Illness - Left Calf Strain" {
		t.Errorf("substring reason should not be re-appended: %q", merged[0].Reason)
	}
}

func TestMergeKeepsSentinelAndEmptyPlayerRows(t *testing.T) {
	rows := []report.Row{
		{GameTime: "TBD", Team: "Washington Wizards", Player: report.SentinelNotSubmitted, Page: 3, RowIndex: 0},
		{GameTime: "TBD", Team: "Washington Wizards", Player: report.SentinelNotSubmitted, Page: 3, RowIndex: 1},
		{GameTime: "TBD", Team: "Orlando Magic", Player: "", Page: 3, RowIndex: 2},
	}
	merged := Merge(rows)
	if len(merged) != 3 {
		t.Fatalf("sentinel and empty-player rows must not merge, got %d", len(merged))
	}
}

func TestMergeSeparatesDistinctGameTimes(t *testing.T) {
	rows := []report.Row{
		{GameTime: "07:00 (ET)", Team: "Boston Celtics", Player: "Brown, Jaylen", Status: "Out", Page: 1, RowIndex: 0},
		{GameTime: "09:30 (ET)", Team: "Boston Celtics", Player: "Brown, Jaylen", Status: "Out", Page: 4, RowIndex: 0},
	}
	if got := len(Merge(rows)); got != 2 {
		t.Fatalf("distinct game times must stay separate, got %d", got)
	}
}

func TestMergeOrdersByProvenanceAndIsIdempotent(t *testing.T) {
	rows := []report.Row{
		{GameTime: "08:00 (ET)", Team: "Denver Nuggets", Player: "Murray, Jamal", Status: "Questionable", Page: 2, RowIndex: 4},
		{GameTime: "07:00 (ET)", Team: "Boston Celtics", Player: "Brown, Jaylen", Status: "Out", Page: 1, RowIndex: 7},
		{GameTime: "07:00 (ET)", Team: "Boston Celtics", Player: "Holiday, Jrue", Status: "Available", Page: 1, RowIndex: 2},
	}
	once := Merge(rows)
	if once[0].Player != "Holiday, Jrue" || once[2].Player != "Murray, Jamal" {
		t.Errorf("order: %+v", once)
	}
	twice := Merge(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}
