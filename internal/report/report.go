package report

// Status vocabulary used by the league report, in severity order.
const (
	StatusOut          = "Out"
	StatusDoubtful     = "Doubtful"
	StatusQuestionable = "Questionable"
	StatusProbable     = "Probable"
	StatusAvailable    = "Available"
	StatusNotWithTeam  = "Not With Team"
)

// SentinelNotSubmitted marks a team whose report has not been filed yet.
const SentinelNotSubmitted = "NOT YET SUBMITTED"

// StatusOrder lists the fixed status vocabulary.
var StatusOrder = []string{
	StatusOut,
	StatusDoubtful,
	StatusQuestionable,
	StatusProbable,
	StatusAvailable,
	StatusNotWithTeam,
}

// Row is one injury-report line item.
//
// Page and RowIndex record where the row came from in the source PDF and keep
// the final ordering stable. GameDate is constant across one extraction run.
type Row struct {
	GameTime string `json:"gameTime"`
	Matchup  string `json:"matchup"`
	Team     string `json:"team"`
	Player   string `json:"player"`
	Status   string `json:"status"`
	Reason   string `json:"reason"`
	Page     int    `json:"page"`
	RowIndex int    `json:"rowIndex"`
	GameDate string `json:"gameDate,omitempty"`
}

// IsSentinel reports whether the row represents a "NOT YET SUBMITTED" team.
func (r Row) IsSentinel() bool {
	return r.Player == SentinelNotSubmitted || r.Status == SentinelNotSubmitted
}

// Meta describes the source document of a successful extraction run.
type Meta struct {
	PDFURL      string `json:"pdfUrl"`
	PDFName     string `json:"pdfName"`
	PublishedAt string `json:"publishedAt"`
	ReportTime  string `json:"reportTime"`
	PDFPath     string `json:"pdfPath"`
	CSVPath     string `json:"csvPath"`
}

// Stats aggregates row counts for a run.
type Stats struct {
	TotalRows int            `json:"totalRows"`
	ByStatus  map[string]int `json:"byStatus"`
	ByTeam    map[string]int `json:"byTeam"`
}

// Payload is the result of one extraction run. It is the only contract the
// presentation layer depends on: either OK with meta/stats/rows, or a failure
// with an error message and the step that failed ("parse_links", "parse_pdf").
type Payload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Step  string `json:"step,omitempty"`
	Meta  *Meta  `json:"meta,omitempty"`
	Stats *Stats `json:"stats,omitempty"`
	Rows  []Row  `json:"rows,omitempty"`
}

// Failure steps reported in Payload.Step.
const (
	StepParseLinks = "parse_links"
	StepParsePDF   = "parse_pdf"
)

// Failure builds a failure payload for the given step.
func Failure(step, message string) Payload {
	return Payload{OK: false, Error: message, Step: step}
}

// BuildStats counts rows by status and by team.
func BuildStats(rows []Row) *Stats {
	stats := &Stats{
		TotalRows: len(rows),
		ByStatus:  make(map[string]int),
		ByTeam:    make(map[string]int),
	}
	for _, row := range rows {
		status := row.Status
		if status == "" {
			status = "Unknown"
		}
		team := row.Team
		if team == "" {
			team = "Unknown"
		}
		stats.ByStatus[status]++
		stats.ByTeam[team]++
	}
	return stats
}
