package report

import "testing"

func TestBuildStats(t *testing.T) {
	rows := []Row{
		{Team: "Boston Celtics", Status: StatusOut},
		{Team: "Boston Celtics", Status: StatusQuestionable},
		{Team: "", Status: ""},
	}
	stats := BuildStats(rows)
	if stats.TotalRows != 3 {
		t.Errorf("TotalRows = %d", stats.TotalRows)
	}
	if stats.ByStatus[StatusOut] != 1 || stats.ByStatus["Unknown"] != 1 {
		t.Errorf("ByStatus = %v", stats.ByStatus)
	}
	if stats.ByTeam["Boston Celtics"] != 2 || stats.ByTeam["Unknown"] != 1 {
		t.Errorf("ByTeam = %v", stats.ByTeam)
	}
}

func TestIsSentinel(t *testing.T) {
	if !(Row{Player: SentinelNotSubmitted}).IsSentinel() {
		t.Error("sentinel player not detected")
	}
	if !(Row{Status: SentinelNotSubmitted}).IsSentinel() {
		t.Error("sentinel status not detected")
	}
	if (Row{Player: "Brown, Jaylen", Status: StatusOut}).IsSentinel() {
		t.Error("regular row misdetected")
	}
}

func TestFailure(t *testing.T) {
	payload := Failure(StepParseLinks, "no report PDF found")
	if payload.OK || payload.Step != StepParseLinks || payload.Error == "" {
		t.Errorf("payload = %+v", payload)
	}
}
