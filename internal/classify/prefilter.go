// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"strings"

	"github.com/pdiddy/citegraph/pkg/types"
)

// Rule is one named keep-predicate.
type Rule struct {
	Name string
	Keep func(types.Paper) bool
}

func nonBlank(s string) bool { return strings.TrimSpace(s) != "" }

// CompleteRecord is the set of rules requiring a title, at least one
// author, a DOI, a PDF URL and an abstract.
func CompleteRecord() []Rule {
	return []Rule{
		{Name: "title", Keep: func(p types.Paper) bool { return nonBlank(p.Title) }},
		{Name: "authors", Keep: func(p types.Paper) bool { return len(p.Authors) > 0 }},
		{Name: "doi", Keep: func(p types.Paper) bool { return nonBlank(p.DOI) }},
		{Name: "pdf_url", Keep: func(p types.Paper) bool { return nonBlank(p.PDFURL) }},
		{Name: "abstract", Keep: func(p types.Paper) bool { return nonBlank(p.Abstract) }},
	}
}

// MaxCitations drops papers cited more than limit times. Papers with an
// unknown count are kept.
func MaxCitations(limit int) Rule {
	return Rule{
		Name: "max_citations",
		Keep: func(p types.Paper) bool {
			return p.CitedByCount == nil || *p.CitedByCount <= limit
		},
	}
}

// Dropped counts removed papers per rule name. A paper is charged to the
// first rule that rejects it.
type Dropped map[string]int

// Total returns the number of removed papers.
func (d Dropped) Total() int {
	n := 0
	for _, c := range d {
		n += c
	}
	return n
}

// Apply returns the papers accepted by every rule, in input order.
func Apply(papers []types.Paper, rules ...Rule) ([]types.Paper, Dropped) {
	kept := make([]types.Paper, 0, len(papers))
	dropped := make(Dropped)
outer:
	for _, p := range papers {
		for _, r := range rules {
			if !r.Keep(p) {
				dropped[r.Name]++
				continue outer
			}
		}
		kept = append(kept, p)
	}
	return kept, dropped
}
