// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify flags papers that look like text-classification work or
// that introduce datasets and benchmarks, and drops incomplete records
// before enrichment.
package classify

import (
	"regexp"

	"github.com/pdiddy/citegraph/pkg/types"
)

// MinScore is the weighted hit score at which a paper counts as
// classification work.
const MinScore = 2

func re(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

var positive = []*regexp.Regexp{
	re(`\bclassification\b`),
	re(`\bclassif(?:y|ier|ication)s?\b`),
	re(`multi[-\s]?label`),
	re(`multi[-\s]?class`),
	re(`\bbinary\b`),
	re(`\bsentiment\b`),
	re(`\bstance\b`),
	re(`\bintent\b`),
	re(`\btopic\b`),
	re(`\bemotion\b`),
	re(`hate\s?speech`),
	re(`\btoxicit(?:y|ies)\b`),
	re(`\bspam\b`),
	re(`\bsarcasm\b`),
	re(`\birony\b`),
	re(`\bgenre\b`),
	re(`language identification`),
	re(`dialect identification`),
	re(`\bNLI\b`),
	re(`natural language inference`),
	re(`\bentailment\b`),
	re(`\bcontradiction\b`),
	re(`\bneutral(?:ity)?\b`),
}

var negative = []*regexp.Regexp{
	re(`sequence\s+labeling`),
	re(`\btagging\b`),
	re(`\bNER\b`),
	re(`POS\s+tagging`),
	re(`parsing`),
	re(`dependency\s+parsing`),
	re(`constituen(?:cy|ts)`),
	re(`semantic\s+role\s+labeling`),
	re(`coreference`),
	re(`machine\s+translation|\bMT\b`),
	re(`summari[sz]ation`),
	re(`generation`),
	re(`speech\s+recognition|\bASR\b`),
}

var benchmark = []*regexp.Regexp{
	re(`\bdataset\b`),
	re(`\bcorpus\b`),
	re(`\bbenchmark\b`),
	re(`shared\s+task`),
	re(`task\s+(?:overview|description)`),
	re(`\bcollection\b`),
	re(`\breleased?\b`),
	re(`annotation\s+guidelines`),
	re(`gold\s+standard`),
	re(`train/?dev/?test\s+split`),
	re(`\bleaderboard\b`),
}

// hits counts every match of every pattern in s. Overlapping patterns each
// count.
func hits(patterns []*regexp.Regexp, s string) int {
	n := 0
	for _, p := range patterns {
		n += len(p.FindAllStringIndex(s, -1))
	}
	return n
}

// Score weighs title hits twice as much as abstract hits and subtracts
// off-task hits from on-task ones.
func Score(title, abstract string) int {
	pos := 2*hits(positive, title) + hits(positive, abstract)
	neg := 2*hits(negative, title) + hits(negative, abstract)
	return pos - neg
}

// IsClassification reports whether Score reaches MinScore.
func IsClassification(title, abstract string) bool {
	return Score(title, abstract) >= MinScore
}

// MentionsBenchmark reports whether title or abstract mention a dataset,
// corpus, benchmark or similar resource.
func MentionsBenchmark(title, abstract string) bool {
	for _, p := range benchmark {
		if p.MatchString(title) || p.MatchString(abstract) {
			return true
		}
	}
	return false
}

// Annotate sets IsClassification and MentionsBenchmark on every paper and
// returns the updated slice.
func Annotate(papers []types.Paper) []types.Paper {
	out := make([]types.Paper, len(papers))
	for i, p := range papers {
		p.IsClassification = IsClassification(p.Title, p.Abstract)
		p.MentionsBenchmark = MentionsBenchmark(p.Title, p.Abstract)
		out[i] = p
	}
	return out
}
