package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fortuna/sideline/internal/report"
)

func TestStatusCountsJSON(t *testing.T) {
	got, err := statusCountsJSON(&report.Stats{
		TotalRows: 3,
		ByStatus:  map[string]int{"Out": 2, "Questionable": 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(got), &counts); err != nil {
		t.Fatalf("column value is not valid JSON: %v", err)
	}
	if counts["Out"] != 2 || counts["Questionable"] != 1 {
		t.Errorf("counts = %v", counts)
	}

	empty, err := statusCountsJSON(&report.Stats{})
	if err != nil {
		t.Fatal(err)
	}
	if empty != "{}" {
		t.Errorf("nil breakdown = %q, want empty object", empty)
	}
}

func TestRunRecordJSONShape(t *testing.T) {
	published := time.Date(2026, 2, 7, 22, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(RunRecord{
		ID:           7,
		PDFURL:       "https://ak-static.cms.nba.com/referee/injury/Injury-Report_2026-02-07_05-00PM.pdf",
		PDFName:      "Injury-Report_2026-02-07_05-00PM.pdf",
		PublishedAt:  &published,
		ReportTime:   "05:00 PM ET",
		TotalRows:    2,
		StatusCounts: map[string]int{"Out": 2},
		FetchedAt:    published,
	})
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "pdfUrl", "pdfName", "publishedAt", "reportTime", "totalRows", "statusCounts", "fetchedAt"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing %q in %v", key, body)
		}
	}
}
