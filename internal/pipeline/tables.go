// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/internal/metrics"
	"github.com/pdiddy/citegraph/internal/rank"
	"github.com/pdiddy/citegraph/internal/store"
)

// Vertex carries the attributes exported for one fused-graph vertex.
type Vertex struct {
	ID        string  `json:"id" yaml:"id"`
	Label     string  `json:"label" yaml:"label"`
	Community int     `json:"community" yaml:"community"`
	Score     float64 `json:"score" yaml:"score"`
	Year      int     `json:"year,omitempty" yaml:"year,omitempty"`
	Venue     string  `json:"venue,omitempty" yaml:"venue,omitempty"`
	CitedBy   *int    `json:"cited_by,omitempty" yaml:"cited_by,omitempty"`
}

// Tables are the vertex, edge and metrics tables of one run.
type Tables struct {
	Vertices     []Vertex
	LiteVertices []string
	FusedEdges   []graph.Edge
	LiteEdges    []graph.Edge
	Metrics      []metrics.Row

	signals map[string]rank.Signals
}

// BuildTables flattens an analysis. Vertices are the fused vertex set in
// id order; the label falls back to the id for untitled papers and the
// community to rank.Unassigned for unlabelled vertices.
func BuildTables(a *Analysis) Tables {
	t := Tables{
		LiteVertices: a.Lite.Vertices(),
		FusedEdges:   a.Fused.Edges(),
		LiteEdges:    a.Lite.Edges(),
		Metrics:      a.Summary.Rows("lite"),
		signals:      make(map[string]rank.Signals, a.Fused.Order()),
	}
	for _, id := range a.Fused.Vertices() {
		v := Vertex{ID: id, Label: id, Community: rank.Unassigned, Score: a.Scores[id]}
		if c, ok := a.Community.Labels[id]; ok {
			v.Community = c
		}
		if p, ok := a.Papers[id]; ok {
			if p.Title != "" {
				v.Label = p.Title
			}
			v.Year = p.Year
			v.Venue = p.Venue
			v.CitedBy = p.CitedByCount
		}
		t.Vertices = append(t.Vertices, v)
		t.signals[id] = a.Inputs.For(id)
	}
	t.Metrics = append(t.Metrics,
		metrics.Row{Scope: "fused", Metric: "vertices", Value: float64(a.Fused.Order())},
		metrics.Row{Scope: "fused", Metric: "edges", Value: float64(a.Fused.Size())},
		metrics.Row{Scope: "semantic", Metric: "edges", Value: float64(a.Semantic.Size())},
		metrics.Row{Scope: "citation", Metric: "edges", Value: float64(a.Citation.Size())},
	)
	return t
}

// RunData converts the tables and report into the persisted run.
func (t Tables) RunData(rep Report, config string) store.RunData {
	scores := make([]store.ScoreRow, 0, len(t.Vertices))
	for _, v := range t.Vertices {
		s := t.signals[v.ID]
		scores = append(scores, store.ScoreRow{
			ExternalID: v.ID,
			Score:      v.Score,
			Sim:        s.Sim,
			PageRank:   s.PageRank,
			Recency:    s.Recency,
			LogCites:   s.LogCites,
			Venue:      s.Venue,
			Benchmark:  s.Benchmark,
			Community:  v.Community,
		})
	}
	return store.RunData{
		Run: store.Run{
			StartedAt:     rep.StartedAt,
			FinishedAt:    rep.FinishedAt,
			Config:        config,
			Papers:        rep.Papers,
			Embedded:      rep.Embedded,
			Excluded:      rep.Excluded,
			EnrichMisses:  rep.Enrichment.Misses,
			Communities:   rep.Communities,
			FusedVertices: rep.Graphs.FusedVertices,
			FusedEdges:    rep.Graphs.FusedEdges,
			LiteVertices:  rep.Graphs.LiteVertices,
			LiteEdges:     rep.Graphs.LiteEdges,
		},
		Scores: scores,
		Fused:  t.FusedEdges,
		Lite:   t.LiteEdges,
		Selections: map[string][]string{
			store.ListTop:         rep.Top,
			store.ListDiversified: rep.Diversified,
			store.ListCurated:     rep.Curated,
		},
		Metrics: t.Metrics,
	}
}

// WriteVertices prints the vertex table, one row per vertex.
func (t Tables) WriteVertices(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMMUNITY\tSCORE\tYEAR\tVENUE\tCITED_BY\tLABEL")
	for _, v := range t.Vertices {
		cited := "-"
		if v.CitedBy != nil {
			cited = fmt.Sprint(*v.CitedBy)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.6f\t%d\t%s\t%s\t%s\n",
			v.ID, v.Community, v.Score, v.Year, v.Venue, cited, v.Label)
	}
	return tw.Flush()
}

// WriteMetrics prints the metrics table.
func (t Tables) WriteMetrics(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCOPE\tMETRIC\tKEY\tVALUE")
	for _, r := range t.Metrics {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.6f\n", r.Scope, r.Metric, r.Key, r.Value)
	}
	return tw.Flush()
}
