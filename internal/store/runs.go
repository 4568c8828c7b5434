package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortuna/sideline/internal/report"
)

// RunRecord is one audited refresh.
type RunRecord struct {
	ID           int64          `json:"id"`
	PDFURL       string         `json:"pdfUrl"`
	PDFName      string         `json:"pdfName"`
	PublishedAt  *time.Time     `json:"publishedAt,omitempty"`
	ReportTime   string         `json:"reportTime,omitempty"`
	TotalRows    int            `json:"totalRows"`
	StatusCounts map[string]int `json:"statusCounts,omitempty"`
	FetchedAt    time.Time      `json:"fetchedAt"`
}

// statusCountsJSON renders the per-status breakdown for the status_counts
// column. A nil map serializes as an empty object so the column stays
// queryable.
func statusCountsJSON(stats *report.Stats) (string, error) {
	counts := stats.ByStatus
	if counts == nil {
		counts = map[string]int{}
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return "", fmt.Errorf("marshal status counts: %w", err)
	}
	return string(raw), nil
}

// RecordRun stores the outcome of a successful refresh.
func (db *Database) RecordRun(ctx context.Context, payload report.Payload) error {
	if payload.Meta == nil || payload.Stats == nil {
		return fmt.Errorf("payload has no meta or stats")
	}

	var publishedAt sql.NullTime
	if payload.Meta.PublishedAt != "" {
		if ts, err := time.Parse(time.RFC3339, payload.Meta.PublishedAt); err == nil {
			publishedAt = sql.NullTime{Time: ts, Valid: true}
		}
	}
	statusCounts, err := statusCountsJSON(payload.Stats)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO report_runs (pdf_url, pdf_name, published_at, report_time, total_rows, status_counts)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = db.conn.ExecContext(ctx, query,
		payload.Meta.PDFURL,
		payload.Meta.PDFName,
		publishedAt,
		payload.Meta.ReportTime,
		payload.Stats.TotalRows,
		statusCounts,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecentRuns returns the newest audited refreshes, most recent first.
func (db *Database) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, pdf_url, pdf_name, published_at, report_time, total_rows, status_counts, fetched_at
		FROM report_runs
		ORDER BY fetched_at DESC
		LIMIT $1`
	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			record       RunRecord
			publishedAt  sql.NullTime
			statusCounts []byte
		)
		if err := rows.Scan(&record.ID, &record.PDFURL, &record.PDFName,
			&publishedAt, &record.ReportTime, &record.TotalRows, &statusCounts, &record.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if publishedAt.Valid {
			ts := publishedAt.Time
			record.PublishedAt = &ts
		}
		if len(statusCounts) > 0 {
			if err := json.Unmarshal(statusCounts, &record.StatusCounts); err != nil {
				return nil, fmt.Errorf("failed to decode status counts: %w", err)
			}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
