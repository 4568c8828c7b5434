// Package classify holds the named text classifiers shared by every
// extraction strategy, the reconciler, the deduplicator and the CSV
// validator. Each predicate exists exactly once here so the pipeline and the
// validator can never disagree about what counts as noise.
package classify

import (
	"regexp"
	"strings"
)

// StatusTokens lists the report status vocabulary, multi-word tokens first so
// "Not With Team" wins over "Out" inside the same text.
var StatusTokens = []string{
	"Not With Team",
	"Questionable",
	"Doubtful",
	"Probable",
	"Available",
	"Out",
}

// ReasonPrefixes are the phrases a reason column is known to start with. The
// second occurrence of any of these inside one reason marks column bleed from
// the next record.
var ReasonPrefixes = []string{
	"G League",
	"Injury/Illness",
	"NOT YET SUBMITTED",
	"Not With Team",
	"Return to Competition Reconditioning",
}

var (
	statusPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(quoteAll(StatusTokens), "|") + `)\b`)

	reasonPattern = regexp.MustCompile(
		`(?i)(Injury/Illness|Injury|Illness|G League|GLeague|Personal|Rest|Suspension|Not With Team|Injury Recovery)`)

	reasonKeywordPattern = regexp.MustCompile(`(?i)(management|contusion|sprain|strain|soreness|surgery|tear|recovery|` +
		`reconditioning|tendinitis|fracture|tendinopathy|illness|injury|irritation|tightness|bruise|spasms|stress|` +
		`thrombosis|mcl|acl|pcl|lcl|ankle|knee|foot|back|shoulder|hamstring|groin|achilles|toe|hand|wrist|finger|` +
		`elbow|quad|calf|rib|hip)`)

	playerStatusBlobPattern = regexp.MustCompile("(?i)\\b[A-Z][A-Za-z'`.\\-]+,\\s*[A-Z][A-Za-z'`.\\-]+\\s+" +
		`(Out|Questionable|Doubtful|Probable|Available|Not\s*With\s*Team|NotWithTeam)\b`)

	pageMarkerPattern = regexp.MustCompile(`(?i)\bPage\s*\d+\s*of\s*\d+\b|\bPage\d+of\d+\b`)

	matchupBlobPattern = regexp.MustCompile(`\b[A-Z]{2,4}\s*@\s*[A-Z]{2,4}\b`)

	dateOrTimeBlobPattern = regexp.MustCompile(`(?i)\b\d{2}/\d{2}/\d{4}\b|\b\d{1,2}:\d{2}\s*\(ET\)\b`)

	statusBlobPattern = regexp.MustCompile(
		`(?i)\b(Out|Questionable|Doubtful|Probable|Available|Not\s*With\s*Team|NotWithTeam)\b`)

	commaNamePattern = regexp.MustCompile("[A-Z][A-Za-z'`.\\-]+,\\s*[A-Z][A-Za-z'`.\\-]+")

	openReasonEndPattern = regexp.MustCompile(`(?i)(Injury|Illness|Recovery|Reconditioning|Management|Surgery|` +
		`Sprain|Strain|Tear|Contusion|Fracture|Tendinopathy|Bruise|Soreness|Tightness)$`)

	timestampPlayerPattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{2}\s+\d{2}:\d{2}\s*[AP]M`)

	headerPairPattern = regexp.MustCompile(`^(GAME|DATE|TIME|MATCHUP|TEAM|PLAYER|STATUS|REASON)(\s+\|\s+|\s{3,})` +
		`(GAME|DATE|TIME|MATCHUP|TEAM|PLAYER|STATUS|REASON)`)

	spacesPattern = regexp.MustCompile(`\s+`)
)

func quoteAll(tokens []string) []string {
	quoted := make([]string, len(tokens))
	for i, token := range tokens {
		quoted[i] = regexp.QuoteMeta(token)
	}
	return quoted
}

// Known full-width header lines the PDF renders above each page's table.
var headerLines = map[string]bool{
	"GAME DATE MATCHUP TEAM PLAYER STATUS REASON":                      true,
	"GAME TIME MATCHUP TEAM PLAYER STATUS REASON":                      true,
	"GAME DATE/TIME MATCHUP TEAM PLAYER STATUS REASON":                 true,
	"GAME DATE GAME TIME MATCHUP TEAM PLAYER NAME CURRENT STATUS REASON": true,
}

// headerVocabulary covers every word the column header line can contain.
var headerVocabulary = map[string]bool{
	"GAME": true, "DATE": true, "TIME": true, "DATE/TIME": true,
	"MATCHUP": true, "TEAM": true, "PLAYER": true, "NAME": true,
	"CURRENT": true, "STATUS": true, "REASON": true,
}

// NormalizeSpaces collapses runs of whitespace (including non-breaking
// spaces) into single spaces and trims the result.
func NormalizeSpaces(text string) string {
	return strings.TrimSpace(spacesPattern.ReplaceAllString(strings.ReplaceAll(text, "\u00a0", " "), " "))
}

// IsHeaderOrFooter reports whether a text line is report chrome: the title,
// the "report updated" banner, a page footer, or a column header.
func IsHeaderOrFooter(line string) bool {
	upper := strings.ToUpper(strings.TrimSpace(line))
	if strings.Contains(upper, "NBA INJURY REPORT") {
		return true
	}
	if strings.Contains(upper, "REPORT UPDATED") {
		return true
	}
	if strings.HasPrefix(upper, "PAGE ") {
		return true
	}
	if headerLines[NormalizeSpaces(upper)] {
		return true
	}
	if headerPairPattern.MatchString(upper) {
		return true
	}
	// Column headers render with uneven spacing; a line of three or more
	// words drawn entirely from the header vocabulary is still a header.
	tokens := strings.Fields(upper)
	if len(tokens) >= 3 {
		for _, token := range tokens {
			if !headerVocabulary[token] {
				return false
			}
		}
		return true
	}
	return false
}

// IsHeaderRow reports whether a parsed row is chrome that leaked into the
// row stream: a team cell starting with the report title or a player cell
// holding the report timestamp.
func IsHeaderRow(team, player string) bool {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(team)), "injury report") {
		return true
	}
	return timestampPlayerPattern.MatchString(strings.TrimSpace(player))
}

// ContaminatedReason is the validator-grade contamination check: the reason
// embeds a player/status pair, a page footer, a matchup code, or a date/time
// token.
func ContaminatedReason(text string) bool {
	compact := NormalizeSpaces(text)
	if compact == "" {
		return false
	}
	return playerStatusBlobPattern.MatchString(compact) ||
		pageMarkerPattern.MatchString(compact) ||
		matchupBlobPattern.MatchString(compact) ||
		dateOrTimeBlobPattern.MatchString(compact)
}

// LooksLikePlayerBlob extends ContaminatedReason with a heuristic for
// multi-record spillover: at least two status tokens next to a
// comma-separated name means the fragment is really other rows' text.
func LooksLikePlayerBlob(text string) bool {
	compact := NormalizeSpaces(text)
	if compact == "" {
		return false
	}
	if ContaminatedReason(compact) {
		return true
	}
	statusHits := len(statusBlobPattern.FindAllString(compact, -1))
	nameHits := len(commaNamePattern.FindAllString(compact, -1))
	return statusHits >= 2 && nameHits >= 1
}

// TrimReasonNoise cuts a reason off at the first embedded artifact (page
// footer, date/time, matchup code, player/status pair) and strips footer
// markers. A reason that *is* a player/status pair collapses to empty.
func TrimReasonNoise(text string) string {
	compact := NormalizeSpaces(text)
	if compact == "" {
		return ""
	}
	if loc := playerStatusBlobPattern.FindStringIndex(compact); loc != nil && loc[0] == 0 {
		return ""
	}
	cut := -1
	for _, pattern := range []*regexp.Regexp{pageMarkerPattern, dateOrTimeBlobPattern, matchupBlobPattern, playerStatusBlobPattern} {
		if loc := pattern.FindStringIndex(compact); loc != nil && loc[0] > 0 {
			if cut == -1 || loc[0] < cut {
				cut = loc[0]
			}
		}
	}
	if cut > 0 {
		compact = strings.TrimSpace(compact[:cut])
	}
	compact = strings.Trim(pageMarkerPattern.ReplaceAllString(compact, ""), " ;,-")
	if strings.ReplaceAll(strings.ToUpper(compact), " ", "") == "NOTYETSUBMITTED" {
		return "NOT YET SUBMITTED"
	}
	return compact
}

// StartsWithReasonPrefix reports whether text begins with a known reason
// phrase.
func StartsWithReasonPrefix(text string) bool {
	if text == "" {
		return false
	}
	for _, prefix := range ReasonPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// SplitReasonOnPrefixes splits reason text where a second reason-prefix
// occurrence begins; the tail belongs to a later record on the same page.
// When the text starts mid-way into a prefix-bearing segment, the split
// happens at the first occurrence instead.
func SplitReasonOnPrefixes(text string) (head, tail string) {
	if text == "" {
		return text, ""
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
	var positions []int
	seen := make(map[int]bool)
	for _, prefix := range ReasonPrefixes {
		pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(prefix))
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			if !seen[loc[0]] {
				seen[loc[0]] = true
				positions = append(positions, loc[0])
			}
		}
	}
	if len(positions) == 0 {
		return text, ""
	}
	sortInts(positions)
	if strings.TrimSpace(text[:positions[0]]) == "" {
		positions[0] = 0
	}
	if positions[0] > 0 {
		return strings.TrimSpace(text[:positions[0]]), strings.TrimSpace(text[positions[0]:])
	}
	if len(positions) < 2 {
		return text, ""
	}
	return strings.TrimSpace(text[:positions[1]]), strings.TrimSpace(text[positions[1]:])
}

func sortInts(values []int) {
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j] < values[j-1]; j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}
}

// LooksLikeReasonContinuation reports whether a stray fragment reads like the
// tail of a reason: it starts with a reason phrase or mentions an injury
// keyword.
func LooksLikeReasonContinuation(text string) bool {
	if text == "" {
		return false
	}
	return StartsWithReasonPrefix(text) || reasonKeywordPattern.MatchString(text)
}

// ShouldAppendReason decides whether a continuation fragment belongs to the
// previous row's reason: the fragment starts lowercase, or the previous
// reason visibly ends mid-phrase.
func ShouldAppendReason(prevReason, continuation string) bool {
	if prevReason == "" || continuation == "" {
		return false
	}
	first := continuation[:1]
	if first != strings.ToUpper(first) {
		return true
	}
	if strings.HasSuffix(prevReason, ";") || strings.HasSuffix(prevReason, "-") {
		return true
	}
	return openReasonEndPattern.MatchString(prevReason)
}

// ExtractStatus finds a status token inside free text and returns the token
// plus the text with the token removed.
func ExtractStatus(text string) (status, remainder string, ok bool) {
	loc := statusPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", text, false
	}
	status = text[loc[2]:loc[3]]
	remainder = strings.Trim(text[:loc[0]]+text[loc[1]:], " -")
	return status, remainder, true
}

// FindReasonStart locates the first recognizable reason keyword or phrase in
// free text and returns its byte offset, or -1.
func FindReasonStart(text string) int {
	if loc := reasonPattern.FindStringIndex(text); loc != nil {
		return loc[0]
	}
	return -1
}
