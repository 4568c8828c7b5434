package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fortuna/sideline/internal/report"
	"github.com/fortuna/sideline/internal/store"
)

type fakeSource struct {
	payload   report.Payload
	err       error
	forceSeen bool
	updated   time.Time
}

func (f *fakeSource) Get(ctx context.Context, force bool) (report.Payload, error) {
	if force {
		f.forceSeen = true
	}
	return f.payload, f.err
}

func (f *fakeSource) Cached() (report.Payload, time.Time, bool) {
	if f.updated.IsZero() {
		return report.Payload{}, time.Time{}, false
	}
	return f.payload, f.updated, true
}

func okPayload() report.Payload {
	return report.Payload{
		OK:    true,
		Meta:  &report.Meta{PDFURL: "https://ak-static.cms.nba.com/referee/injury/Injury-Report_2026-02-07_05-00PM.pdf"},
		Stats: &report.Stats{TotalRows: 2, ByStatus: map[string]int{"Out": 2}},
		Rows: []report.Row{
			{Team: "Boston Celtics", Player: "Brown, Jaylen", Status: "Out"},
			{Team: "Miami Heat", Player: "Butler, Jimmy", Status: "Out"},
		},
	}
}

func serve(t *testing.T, source ReportSource, method, target string) *httptest.ResponseRecorder {
	return serveWith(t, source, nil, method, target)
}

func serveWith(t *testing.T, source ReportSource, runs RunStore, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	server := NewServer("0", source, runs)
	recorder := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

func TestGetReport(t *testing.T) {
	source := &fakeSource{payload: okPayload()}
	recorder := serve(t, source, http.MethodGet, "/api/v1/report")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", recorder.Code, recorder.Body.String())
	}

	var payload report.Payload
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if !payload.OK || len(payload.Rows) != 2 {
		t.Errorf("payload = %+v", payload)
	}
	if source.forceSeen {
		t.Error("plain GET must not force a refresh")
	}
}

func TestGetReportRefreshParamForces(t *testing.T) {
	source := &fakeSource{payload: okPayload()}
	serve(t, source, http.MethodGet, "/api/v1/report?refresh=1")
	if !source.forceSeen {
		t.Error("refresh=1 should force a refresh")
	}
}

func TestGetReportFailurePayload(t *testing.T) {
	source := &fakeSource{payload: report.Failure(report.StepParseLinks, "no report PDF found on official page")}
	recorder := serve(t, source, http.MethodGet, "/api/v1/report")
	if recorder.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", recorder.Code)
	}
	var payload report.Payload
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.OK || payload.Step != report.StepParseLinks {
		t.Errorf("payload = %+v", payload)
	}
}

func TestGetReportTransportError(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	recorder := serve(t, source, http.MethodGet, "/api/v1/report")
	if recorder.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", recorder.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestGetReportStats(t *testing.T) {
	source := &fakeSource{payload: okPayload()}
	recorder := serve(t, source, http.MethodGet, "/api/v1/report/stats")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var body struct {
		Stats report.Stats `json:"stats"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Stats.TotalRows != 2 || body.Stats.ByStatus["Out"] != 2 {
		t.Errorf("stats = %+v", body.Stats)
	}
}

func TestHealthCheck(t *testing.T) {
	source := &fakeSource{payload: okPayload(), updated: time.Date(2026, 2, 7, 22, 0, 0, 0, time.UTC)}
	recorder := serve(t, source, http.MethodGet, "/health")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" || body["service"] != "sideline" {
		t.Errorf("body = %v", body)
	}
	if body["lastUpdated"] != "2026-02-07T22:00:00Z" {
		t.Errorf("lastUpdated = %q", body["lastUpdated"])
	}
}

type fakeRunStore struct {
	records   []store.RunRecord
	err       error
	lastLimit int
}

func (f *fakeRunStore) RecentRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	f.lastLimit = limit
	return f.records, f.err
}

func TestGetRecentRuns(t *testing.T) {
	fetched := time.Date(2026, 2, 7, 22, 0, 0, 0, time.UTC)
	runs := &fakeRunStore{records: []store.RunRecord{
		{
			ID:           1,
			PDFName:      "Injury-Report_2026-02-07_05-00PM.pdf",
			TotalRows:    2,
			StatusCounts: map[string]int{"Out": 2},
			FetchedAt:    fetched,
		},
	}}
	source := &fakeSource{payload: okPayload()}

	recorder := serveWith(t, source, runs, http.MethodGet, "/api/v1/runs?limit=5")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", recorder.Code, recorder.Body.String())
	}
	if runs.lastLimit != 5 {
		t.Errorf("limit = %d, want 5", runs.lastLimit)
	}

	var body struct {
		Runs  []store.RunRecord `json:"runs"`
		Count int               `json:"count"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || len(body.Runs) != 1 {
		t.Fatalf("body = %+v", body)
	}
	if body.Runs[0].StatusCounts["Out"] != 2 {
		t.Errorf("statusCounts = %v", body.Runs[0].StatusCounts)
	}
}

func TestGetRecentRunsDefaultLimit(t *testing.T) {
	runs := &fakeRunStore{}
	serveWith(t, &fakeSource{payload: okPayload()}, runs, http.MethodGet, "/api/v1/runs")
	if runs.lastLimit != 20 {
		t.Errorf("limit = %d, want 20", runs.lastLimit)
	}
}

func TestGetRecentRunsWithoutStore(t *testing.T) {
	recorder := serve(t, &fakeSource{payload: okPayload()}, http.MethodGet, "/api/v1/runs")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d", recorder.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	source := &fakeSource{payload: okPayload()}
	recorder := serve(t, source, http.MethodGet, "/api/v1/report")
	if recorder.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header, got %v", recorder.Header())
	}
}
