// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citegraph/pkg/types"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		abstract string
		want     int
	}{
		{"empty", "", "", 0},
		// "classification" matches two positive patterns.
		{"title classification", "Sentiment Classification", "", 6},
		{"abstract only", "", "We study stance.", 1},
		{"negatives cancel", "Dependency Parsing", "", -4},
		{"mixed", "Topic models", "We apply machine translation and summarization.", 0},
		{"case insensitive", "", "HATE SPEECH and TOXICITY", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.title, tt.abstract))
		})
	}
}

func TestIsClassification(t *testing.T) {
	assert.True(t, IsClassification("Emotion detection in tweets", ""))
	assert.True(t, IsClassification("", "A binary spam filter."))
	assert.False(t, IsClassification("", "We study sarcasm."))
	assert.False(t, IsClassification("Neural Machine Translation for Sentiment", ""))
}

func TestMentionsBenchmark(t *testing.T) {
	tests := []struct {
		title, abstract string
		want            bool
	}{
		{"A New Dataset for NLI", "", true},
		{"", "We release our code.", true},
		{"", "Results on the GLUE leaderboard", true},
		{"", "the train/dev/test split is standard", true},
		{"SemEval Shared Task 4", "", true},
		{"Datasets are great", "", false},
		{"Attention is all you need", "We propose a model.", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MentionsBenchmark(tt.title, tt.abstract), tt.title+tt.abstract)
	}
}

func TestAnnotate(t *testing.T) {
	in := []types.Paper{
		{ID: "1", Title: "Intent classification benchmark", Abstract: "A corpus."},
		{ID: "2", Title: "Constituency parsing", Abstract: ""},
	}
	out := Annotate(in)
	require.Len(t, out, 2)
	assert.True(t, out[0].IsClassification)
	assert.True(t, out[0].MentionsBenchmark)
	assert.False(t, out[1].IsClassification)
	assert.False(t, out[1].MentionsBenchmark)
	assert.False(t, in[0].IsClassification, "input untouched")
}

func intPtr(n int) *int { return &n }

func TestApply(t *testing.T) {
	full := types.Paper{
		Title: "T", Abstract: "A", DOI: "10.1/x", PDFURL: "https://x/pdf", Authors: []string{"Ada"},
	}
	noAbs := full
	noAbs.Abstract = "  "
	noAuthors := full
	noAuthors.Authors = nil
	noTitleNoDOI := full
	noTitleNoDOI.Title, noTitleNoDOI.DOI = "", ""
	cited := full
	cited.CitedByCount = intPtr(500)
	lowCited := full
	lowCited.CitedByCount = intPtr(200)

	kept, dropped := Apply(
		[]types.Paper{full, noAbs, noAuthors, noTitleNoDOI, cited, lowCited},
		append(CompleteRecord(), MaxCitations(200))...,
	)
	assert.Len(t, kept, 2)
	assert.Equal(t, Dropped{"abstract": 1, "authors": 1, "title": 1, "max_citations": 1}, dropped)
	assert.Equal(t, 4, dropped.Total())
}
