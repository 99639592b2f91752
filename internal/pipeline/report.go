// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citegraph/internal/metrics"
)

// ReportFile is the report name written under the data directory.
const ReportFile = "run-report.yaml"

// EnrichmentReport summarizes the enrichment fetch.
type EnrichmentReport struct {
	Requested int `json:"requested" yaml:"requested"`
	Resolved  int `json:"resolved" yaml:"resolved"`
	CacheHits int `json:"cache_hits" yaml:"cache_hits"`
	Misses    int `json:"misses" yaml:"misses"`
	Invalid   int `json:"invalid" yaml:"invalid"`
	Malformed int `json:"malformed" yaml:"malformed"`
	Splits    int `json:"splits" yaml:"splits"`
	Applied   int `json:"applied" yaml:"applied"`
}

// GraphReport records graph sizes.
type GraphReport struct {
	CitationEdges int `json:"citation_edges" yaml:"citation_edges"`
	SemanticEdges int `json:"semantic_edges" yaml:"semantic_edges"`
	FusedVertices int `json:"fused_vertices" yaml:"fused_vertices"`
	FusedEdges    int `json:"fused_edges" yaml:"fused_edges"`
	LiteVertices  int `json:"lite_vertices" yaml:"lite_vertices"`
	LiteEdges     int `json:"lite_edges" yaml:"lite_edges"`
}

// Report summarizes one pipeline run.
type Report struct {
	RunID      int64     `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	Harvested  int            `json:"harvested" yaml:"harvested"`
	Dropped    map[string]int `json:"dropped,omitempty" yaml:"dropped,omitempty"`
	Papers     int            `json:"papers" yaml:"papers"`
	Classified int            `json:"classified" yaml:"classified"`
	Benchmarks int            `json:"benchmarks" yaml:"benchmarks"`

	Enrichment EnrichmentReport `json:"enrichment" yaml:"enrichment"`

	// Excluded counts papers without an external id; Duplicates counts
	// papers sharing an external id with an earlier one.
	Excluded   int `json:"excluded" yaml:"excluded"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
	Embedded   int `json:"embedded" yaml:"embedded"`

	Graphs        GraphReport     `json:"graphs" yaml:"graphs"`
	Communities   int             `json:"communities" yaml:"communities"`
	LPAIterations int             `json:"lpa_iterations" yaml:"lpa_iterations"`
	LPAConverged  bool            `json:"lpa_converged" yaml:"lpa_converged"`
	Lite          metrics.Summary `json:"lite" yaml:"lite"`

	Top         []string `json:"top" yaml:"top"`
	Diversified []string `json:"diversified" yaml:"diversified"`
	Curated     []string `json:"curated" yaml:"curated"`
}

func newReport(prep Prepared, a *Analysis) Report {
	r := Report{
		Harvested:     prep.Harvested,
		Dropped:       prep.Dropped,
		Papers:        len(prep.Papers),
		Enrichment:    prep.Enrichment,
		Excluded:      a.Excluded,
		Duplicates:    a.Duplicates,
		Embedded:      len(a.Vectors),
		Communities:   a.Community.Labels.Count(),
		LPAIterations: a.Community.Iterations,
		LPAConverged:  a.Community.Converged,
		Lite:          a.Summary,
		Top:           a.Top,
		Diversified:   a.Diverse,
		Curated:       a.Curated,
		Graphs: GraphReport{
			CitationEdges: a.Citation.Size(),
			SemanticEdges: a.Semantic.Size(),
			FusedVertices: a.Fused.Order(),
			FusedEdges:    a.Fused.Size(),
			LiteVertices:  a.Lite.Order(),
			LiteEdges:     a.Lite.Size(),
		},
	}
	for _, p := range prep.Papers {
		if p.IsClassification {
			r.Classified++
		}
		if p.MentionsBenchmark {
			r.Benchmarks++
		}
	}
	return r
}

// WriteYAML writes the report to dir/run-report.yaml and returns the path.
func (r Report) WriteYAML(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}
	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Print writes a human-readable summary of r.
func (r Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Papers: %d harvested, %d kept, %d classification, %d benchmark\n",
		r.Harvested, r.Papers, r.Classified, r.Benchmarks)
	fmt.Fprintf(w, "Enrichment: %d/%d resolved, %d misses\n",
		r.Enrichment.Resolved, r.Enrichment.Requested, r.Enrichment.Misses)
	fmt.Fprintf(w, "Graph: %d vertices, %d fused edges, %d excluded\n",
		r.Graphs.FusedVertices, r.Graphs.FusedEdges, r.Excluded)
	fmt.Fprintf(w, "Communities: %d (%d iterations, converged=%t)\n",
		r.Communities, r.LPAIterations, r.LPAConverged)
	fmt.Fprintf(w, "Lite: |V|=%d |E|=%d modularity=%.4f assortativity=%.4f\n",
		r.Graphs.LiteVertices, r.Graphs.LiteEdges, r.Lite.Modularity, r.Lite.Assortativity)
	if r.Lite.Largest != nil {
		fmt.Fprintf(w, "Conductance comm_%d|comm_%d: %.4f\n",
			r.Lite.Largest.A, r.Lite.Largest.B, r.Lite.Largest.Conductance)
	}
	fmt.Fprintf(w, "Selected: top %d, diversified %d, curated %d\n",
		len(r.Top), len(r.Diversified), len(r.Curated))
}
