package extract

import (
	"github.com/fortuna/sideline/internal/report"
)

// Strategy turns a parsed document into candidate rows. Strategies are
// independent: each sees the whole document and none depends on another's
// output.
type Strategy interface {
	Name() string
	Extract(doc *Document) []report.Row
}

// All returns the three production strategies.
func All() []Strategy {
	return []Strategy{
		LineStrategy{},
		ColumnStrategy{},
		TableStrategy{},
	}
}

// Candidates runs every strategy and concatenates their rows.
func Candidates(doc *Document, strategies []Strategy) []report.Row {
	var combined []report.Row
	for _, strategy := range strategies {
		combined = append(combined, strategy.Extract(doc)...)
	}
	return combined
}
