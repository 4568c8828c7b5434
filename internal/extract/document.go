// Package extract turns report PDF bytes into candidate rows using three
// independent strategies: text-line heuristics, header column positions, and
// table geometry inferred from text alignment. None of them performs
// cross-row cleanup; disagreements are settled downstream by the
// deduplicator and the normalizer.
package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// lineTolerance groups words into one visual line when their baselines
	// are within this many units.
	lineTolerance = 3.0

	// wordGap merges adjacent text fragments into one word when the
	// horizontal gap is below this.
	wordGap = 2.0

	// fieldGap renders as a double space so the line strategy can split
	// fields on whitespace runs.
	fieldGap = 6.0
)

// Word is a positioned run of text on a page.
type Word struct {
	Text string
	X    float64
	Y    float64
	W    float64
}

// Line is a visual line: words sharing a baseline, ordered left to right.
type Line struct {
	Y     float64
	Words []Word
}

// Text joins the line's words with single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Page holds one page's visual lines, top to bottom.
type Page struct {
	Number int
	Lines  []Line
}

// TextLines renders the page as plain text lines, inserting double spaces
// where the horizontal gap between words marks a field boundary.
func (p Page) TextLines() []string {
	out := make([]string, 0, len(p.Lines))
	for _, line := range p.Lines {
		var b strings.Builder
		var prevEnd float64
		for i, w := range line.Words {
			if i > 0 {
				if w.X-prevEnd > fieldGap {
					b.WriteString("  ")
				} else {
					b.WriteString(" ")
				}
			}
			b.WriteString(w.Text)
			prevEnd = w.X + w.W
		}
		out = append(out, b.String())
	}
	return out
}

// Document is a parsed report PDF.
type Document struct {
	Pages []Page
}

// Open parses PDF bytes into positioned words grouped into visual lines.
// The parser panics on some malformed content streams; those surface as
// errors here.
func Open(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	doc = &Document{}
	for num := 1; num <= reader.NumPage(); num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		words := mergeWords(content.Text)
		if len(words) == 0 {
			continue
		}
		doc.Pages = append(doc.Pages, Page{Number: num, Lines: groupLines(words)})
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("pdf has no text content")
	}
	return doc, nil
}

// mergeWords glues adjacent text fragments on the same baseline into words.
func mergeWords(fragments []pdf.Text) []Word {
	sorted := make([]pdf.Text, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if diff := sorted[i].Y - sorted[j].Y; diff > lineTolerance || diff < -lineTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var words []Word
	for _, frag := range sorted {
		text := frag.S
		if strings.TrimSpace(text) == "" {
			continue
		}
		if len(words) > 0 {
			last := &words[len(words)-1]
			sameLine := frag.Y-last.Y <= lineTolerance && last.Y-frag.Y <= lineTolerance
			if sameLine && frag.X-(last.X+last.W) < wordGap && frag.X >= last.X {
				last.Text += text
				last.W = frag.X + frag.W - last.X
				continue
			}
		}
		words = append(words, Word{Text: text, X: frag.X, Y: frag.Y, W: frag.W})
	}
	return words
}

// groupLines buckets words into visual lines by baseline proximity. Words
// arrive already ordered top-to-bottom, left-to-right.
func groupLines(words []Word) []Line {
	var lines []Line
	for _, word := range words {
		if len(lines) == 0 || lines[len(lines)-1].Y-word.Y > lineTolerance {
			lines = append(lines, Line{Y: word.Y, Words: []Word{word}})
			continue
		}
		last := &lines[len(lines)-1]
		last.Words = append(last.Words, word)
	}
	return lines
}
