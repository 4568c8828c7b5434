// Package links locates the current injury-report PDF on the official page.
// Candidate URLs are collected from anchors and from raw inline text (the
// page sometimes injects links through scripts) and ranked by the timestamp
// embedded in the filename.
package links

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// OfficialPage is the well-known source page for the report.
const OfficialPage = "https://official.nba.com/nba-injury-report-2025-26-season/"

// MirrorHost serves the same files from the league CDN and is preferred on
// timestamp ties because it tolerates non-browser clients.
const MirrorHost = "ak-static.cms.nba.com"

var (
	pdfNamePattern = regexp.MustCompile(`(?i)Injury-Report_\d{4}-\d{2}-\d{2}_.+?\.pdf`)
	// inlineURLPattern matches absolute URLs only. Bare filenames in raw
	// text sit inside anchor hrefs, which the anchor pass already resolves;
	// resolving them against the article path would invent URLs that do not
	// exist on the origin. Script-only pages without absolute URLs are
	// handled by the rendered fallback.
	inlineURLPattern = regexp.MustCompile(`(?i)https?://[^\s"'<>()]*?Injury-Report_\d{4}-\d{2}-\d{2}_[^\s"'<>()]*?\.pdf`)
	timePartPattern  = regexp.MustCompile(`(?i)Injury-Report_(\d{4}-\d{2}-\d{2})_([0-9_:\-]{1,8})(AM|PM)`)
	datePattern      = regexp.MustCompile(`Injury-Report_(\d{4})-(\d{2})-(\d{2})_`)
	nonDigitPattern  = regexp.MustCompile(`\D`)
)

// TimeParts is the timestamp embedded in a report filename.
type TimeParts struct {
	Date     string // YYYY-MM-DD
	Hour     int    // 1-12
	Minute   int
	Meridiem string // AM or PM
}

func fileName(rawURL string) string {
	if idx := strings.LastIndex(rawURL, "/"); idx >= 0 {
		return rawURL[idx+1:]
	}
	return rawURL
}

// ParseTimeParts extracts the filename timestamp. The time digits appear with
// underscore, colon, dash or no separator at all depending on the publishing
// batch. Returns ok=false on any malformed component.
func ParseTimeParts(rawURL string) (TimeParts, bool) {
	match := timePartPattern.FindStringSubmatch(fileName(rawURL))
	if match == nil {
		return TimeParts{}, false
	}
	digits := nonDigitPattern.ReplaceAllString(match[2], "")
	if digits == "" {
		return TimeParts{}, false
	}
	var hour, minute int
	if len(digits) <= 2 {
		fmt.Sscanf(digits, "%d", &hour)
	} else {
		fmt.Sscanf(digits[:len(digits)-2], "%d", &hour)
		fmt.Sscanf(digits[len(digits)-2:], "%d", &minute)
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return TimeParts{}, false
	}
	return TimeParts{
		Date:     match[1],
		Hour:     hour,
		Minute:   minute,
		Meridiem: strings.ToUpper(match[3]),
	}, true
}

// Epoch converts the filename timestamp to a unix epoch. Malformed
// timestamps degrade to zero, which callers must treat as "older than
// everything", never as an error.
func Epoch(rawURL string) int64 {
	parts, ok := ParseTimeParts(rawURL)
	if !ok {
		return 0
	}
	day, err := time.Parse("2006-01-02", parts.Date)
	if err != nil {
		return 0
	}
	hour := parts.Hour
	if parts.Meridiem == "PM" && hour < 12 {
		hour += 12
	}
	if parts.Meridiem == "AM" && hour == 12 {
		hour = 0
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, parts.Minute, 0, 0, time.UTC).Unix()
}

// TimeLabel renders the human report-time label, e.g. "03:45 AM ET".
func TimeLabel(rawURL string) string {
	parts, ok := ParseTimeParts(rawURL)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%02d:%02d %s ET", parts.Hour, parts.Minute, parts.Meridiem)
}

// GameDate extracts the report date as MM/DD/YYYY. Falls back to the epoch
// when the plain date segment is unparsable.
func GameDate(rawURL string) string {
	match := datePattern.FindStringSubmatch(fileName(rawURL))
	if match != nil {
		return fmt.Sprintf("%s/%s/%s", match[2], match[3], match[1])
	}
	if epoch := Epoch(rawURL); epoch > 0 {
		return time.Unix(epoch, 0).UTC().Format("01/02/2006")
	}
	return ""
}

// Extract collects report PDF URLs from page markup: anchor hrefs plus
// absolute URLs appearing in raw inline text. Results are absolute,
// deduplicated, order unspecified.
func Extract(html, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}
	found := make(map[string]bool)
	add := func(link string) {
		if link == "" || !pdfNamePattern.MatchString(link) {
			return
		}
		if base != nil {
			if ref, err := url.Parse(link); err == nil {
				link = base.ResolveReference(ref).String()
			}
		}
		found[link] = true
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find(`a[href$='.pdf']`).Each(func(_ int, sel *goquery.Selection) {
			if href, ok := sel.Attr("href"); ok {
				add(href)
			}
		})
	}
	for _, match := range inlineURLPattern.FindAllString(html, -1) {
		add(match)
	}

	links := make([]string, 0, len(found))
	for link := range found {
		links = append(links, link)
	}
	return links
}

// Prefer ranks candidates by embedded timestamp (newest first) with the CDN
// mirror breaking ties, and returns the winner. Empty input returns "".
func Prefer(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranked := make([]string, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := Epoch(ranked[i]), Epoch(ranked[j])
		if ti != tj {
			return ti > tj
		}
		mi := strings.Contains(ranked[i], MirrorHost)
		mj := strings.Contains(ranked[j], MirrorHost)
		if mi != mj {
			return mi
		}
		return ranked[i] < ranked[j]
	})
	return ranked[0]
}

// FallbackURL rewrites a report URL onto the CDN mirror, keeping the
// filename. Returns "" when no filename can be derived.
func FallbackURL(rawURL string) string {
	name := fileName(rawURL)
	if name == "" {
		return ""
	}
	return "https://" + MirrorHost + "/referee/injury/" + name
}

// Fetcher retrieves page content with the generic request profile.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Renderer produces fully rendered page markup, for pages whose report links
// only exist after scripts run.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Resolver finds the newest report link on the official page.
type Resolver struct {
	PageURL string
	Fetcher Fetcher
	// Browser is optional; when set it is consulted only after the static
	// page yields no candidates.
	Browser Renderer
}

// Latest returns the preferred report URL, or "" when the report has not
// been published yet. An empty result is a normal outcome, not an error.
func (r *Resolver) Latest(ctx context.Context) (string, error) {
	body, err := r.Fetcher.Get(ctx, r.PageURL)
	if err != nil {
		return "", fmt.Errorf("fetch official page: %w", err)
	}
	candidates := Extract(string(body), r.PageURL)
	if len(candidates) == 0 && r.Browser != nil {
		log.Printf("[links] no static report links, rendering %s", r.PageURL)
		html, err := r.Browser.Render(ctx, r.PageURL)
		if err != nil {
			return "", fmt.Errorf("render official page: %w", err)
		}
		candidates = Extract(html, r.PageURL)
	}
	return Prefer(candidates), nil
}
