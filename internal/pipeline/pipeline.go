// Package pipeline runs one full report refresh: resolve the newest report
// link, download the document, extract candidate rows with every strategy,
// merge and reconcile them, and persist the PDF and CSV artifacts.
package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/sideline/internal/dedupe"
	"github.com/fortuna/sideline/internal/extract"
	"github.com/fortuna/sideline/internal/fetch"
	"github.com/fortuna/sideline/internal/links"
	"github.com/fortuna/sideline/internal/normalize"
	"github.com/fortuna/sideline/internal/report"
)

// LinkResolver yields the newest report URL, or "" when none is published.
type LinkResolver interface {
	Latest(ctx context.Context) (string, error)
}

// DocumentFetcher downloads the report document itself.
type DocumentFetcher interface {
	GetDocument(ctx context.Context, url string) ([]byte, error)
}

// Runner executes refreshes. DataDir receives the downloaded PDF and the
// derived CSV, named after the report file.
type Runner struct {
	Resolver LinkResolver
	Fetcher  DocumentFetcher
	DataDir  string
}

// New builds a Runner with the production resolver and fetcher.
func New(pageURL, dataDir string, browser links.Renderer) *Runner {
	client := fetch.NewClient(pageURL)
	return &Runner{
		Resolver: &links.Resolver{PageURL: pageURL, Fetcher: client, Browser: browser},
		Fetcher:  client,
		DataDir:  dataDir,
	}
}

// Run performs one refresh. Known failure modes (no link published, document
// without usable rows) come back as a failure payload; transport and
// filesystem errors come back as errors.
func (r *Runner) Run(ctx context.Context) (report.Payload, error) {
	latest, err := r.Resolver.Latest(ctx)
	if err != nil {
		return report.Failure(report.StepParseLinks, err.Error()), nil
	}
	if latest == "" {
		log.Printf("  ⚠️  No report links found on official page")
		return report.Failure(report.StepParseLinks, "no report PDF found on official page"), nil
	}
	log.Printf("  ✓ Latest report selected: %s", latest)

	content, err := r.Fetcher.GetDocument(ctx, latest)
	if err != nil {
		fallback := links.FallbackURL(latest)
		if fallback == "" || fallback == latest {
			return report.Payload{}, fmt.Errorf("fetch report: %w", err)
		}
		log.Printf("  ⚠️  Report fetch failed, trying fallback URL: %s", fallback)
		content, err = r.Fetcher.GetDocument(ctx, fallback)
		if err != nil {
			return report.Payload{}, fmt.Errorf("fetch report fallback: %w", err)
		}
		latest = fallback
	}

	pdfPath, err := r.savePDF(latest, content)
	if err != nil {
		return report.Payload{}, err
	}

	doc, err := extract.Open(content)
	if err != nil {
		return report.Failure(report.StepParsePDF, err.Error()), nil
	}
	log.Printf("  ✓ Report pages detected: %d", len(doc.Pages))

	candidates := extract.Candidates(doc, extract.All())
	gameDate := links.GameDate(latest)
	rows := normalize.Rows(dedupe.Merge(candidates), gameDate)
	rows = dropEmptyRows(rows)
	if len(rows) == 0 {
		log.Printf("  ⚠️  Report parsed but no rows extracted")
		return report.Failure(report.StepParsePDF, "report loaded but no usable rows"), nil
	}

	csvPath, err := r.saveCSV(pdfPath, rows)
	if err != nil {
		return report.Payload{}, err
	}

	return report.Payload{
		OK: true,
		Meta: &report.Meta{
			PDFURL:      latest,
			PDFName:     filepath.Base(pdfPath),
			PublishedAt: publishedAt(latest),
			ReportTime:  links.TimeLabel(latest),
			PDFPath:     pdfPath,
			CSVPath:     csvPath,
		},
		Stats: report.BuildStats(rows),
		Rows:  rows,
	}, nil
}

// dropEmptyRows removes rows carrying neither player nor status, unless the
// row is a not-submitted placeholder.
func dropEmptyRows(rows []report.Row) []report.Row {
	kept := rows[:0]
	for _, row := range rows {
		if row.Player == "" && row.Status == "" &&
			!strings.Contains(strings.ToUpper(row.Reason), report.SentinelNotSubmitted) {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

func (r *Runner) savePDF(rawURL string, content []byte) (string, error) {
	if err := os.MkdirAll(r.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	name := rawURL[strings.LastIndex(rawURL, "/")+1:]
	path := filepath.Join(r.DataDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("save report PDF: %w", err)
	}
	log.Printf("  ✓ PDF saved to %s", path)
	return path, nil
}

func (r *Runner) saveCSV(pdfPath string, rows []report.Row) (string, error) {
	path := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".csv"
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report CSV: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"gameDate", "team", "player", "status", "reason", "page"}); err != nil {
		return "", fmt.Errorf("write report CSV: %w", err)
	}
	for _, row := range rows {
		record := []string{row.GameDate, row.Team, row.Player, row.Status, row.Reason, strconv.Itoa(row.Page)}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("write report CSV: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush report CSV: %w", err)
	}
	log.Printf("  ✓ CSV saved to %s", path)
	return path, nil
}

func publishedAt(rawURL string) string {
	epoch := links.Epoch(rawURL)
	if epoch == 0 {
		return ""
	}
	return time.Unix(epoch, 0).UTC().Format(time.RFC3339)
}
