// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one batch over a harvested corpus: prefilter and
// classify, enrich, embed, build and fuse the graphs, detect communities,
// rank and select, then persist the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citegraph/internal/classify"
	"github.com/pdiddy/citegraph/internal/community"
	"github.com/pdiddy/citegraph/internal/enrich"
	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/internal/harvest"
	"github.com/pdiddy/citegraph/internal/index"
	"github.com/pdiddy/citegraph/internal/metrics"
	"github.com/pdiddy/citegraph/internal/rank"
	"github.com/pdiddy/citegraph/internal/store"
	"github.com/pdiddy/citegraph/pkg/types"
)

// ErrEmbedderUnavailable aborts a run whose embedding service fails its
// handshake at the start of the ranking phase.
var ErrEmbedderUnavailable = errors.New("embedding service unavailable")

// paperKeyPrefix namespaces paper embeddings in the cache.
const paperKeyPrefix = "paper:"

// Enricher resolves DOIs in bulk.
type Enricher interface {
	FetchBatch(ctx context.Context, raw []string) (enrich.Result, error)
}

// Embedder embeds text, optionally under a caller-chosen cache key.
type Embedder interface {
	Ping(ctx context.Context) error
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedKey(ctx context.Context, key, text string) ([]float32, error)
}

// Deps are the collaborators of a pipeline. Enricher and Store may be nil
// to skip enrichment or persistence.
type Deps struct {
	Source   harvest.Source
	Enricher Enricher
	Embedder Embedder
	Store    *store.Store
	Logger   *zap.Logger

	// Out receives progress lines. Nil discards them.
	Out io.Writer
}

// Pipeline wires the stages together.
type Pipeline struct {
	cfg types.PipelineConfig
	Deps
}

// New returns a pipeline for cfg.
func New(cfg types.PipelineConfig, deps Deps) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	return &Pipeline{cfg: cfg, Deps: deps}
}

// Prepared is the corpus after harvesting, prefiltering, classification and
// enrichment.
type Prepared struct {
	Papers     []types.Paper
	Harvested  int
	Dropped    classify.Dropped
	Enrichment EnrichmentReport
}

// Prepare harvests papers in r, applies the record-completeness prefilter,
// flags classification and benchmark papers, enriches them and applies the
// citation cap. A failing source handshake is fatal; enrichment failures
// are not.
func (p *Pipeline) Prepare(ctx context.Context, r harvest.Range) (Prepared, error) {
	if p.Source == nil {
		return Prepared{}, fmt.Errorf("no paper source configured")
	}
	if err := p.Source.Ping(ctx); err != nil {
		return Prepared{}, err
	}
	raw, err := p.Source.FetchPapers(ctx, r)
	if err != nil {
		return Prepared{}, fmt.Errorf("fetching papers: %w", err)
	}
	fmt.Fprintf(p.Out, "Harvested %d papers\n", len(raw))

	out := Prepared{Harvested: len(raw), Dropped: classify.Dropped{}}
	kept, dropped := classify.Apply(raw, classify.CompleteRecord()...)
	mergeDropped(out.Dropped, dropped)
	papers := classify.Annotate(kept)

	out.Enrichment = p.enrich(ctx, papers)

	if limit := p.cfg.Selection.MaxCitations; limit > 0 {
		papers, dropped = classify.Apply(papers, classify.MaxCitations(limit))
		mergeDropped(out.Dropped, dropped)
	}
	fmt.Fprintf(p.Out, "Prefilter kept %d papers (%d dropped)\n", len(papers), out.Dropped.Total())

	if p.Store != nil {
		if err := p.Store.UpsertPapers(ctx, papers); err != nil {
			return Prepared{}, fmt.Errorf("storing papers: %w", err)
		}
	}
	out.Papers = papers
	return out, nil
}

func mergeDropped(dst, src classify.Dropped) {
	for k, v := range src {
		dst[k] += v
	}
}

func (p *Pipeline) enrich(ctx context.Context, papers []types.Paper) EnrichmentReport {
	if p.Enricher == nil || len(papers) == 0 {
		return EnrichmentReport{}
	}
	dois := make([]string, 0, len(papers))
	for _, paper := range papers {
		dois = append(dois, paper.DOI)
	}

	start := time.Now()
	res, err := p.Enricher.FetchBatch(ctx, dois)
	if err != nil {
		p.Logger.Warn("enrichment incomplete", zap.Error(err))
	}
	applied := enrich.Apply(papers, res)

	rep := EnrichmentReport{
		Requested: res.Total(),
		Resolved:  len(res.Records),
		CacheHits: res.CacheHits,
		Misses:    res.Misses,
		Invalid:   res.Invalid,
		Malformed: res.Malformed,
		Splits:    res.Splits,
		Applied:   applied,
	}
	p.Logger.Info("enrichment done",
		zap.Int("requested", rep.Requested),
		zap.Int("resolved", rep.Resolved),
		zap.Int("misses", rep.Misses),
		zap.Duration("elapsed", time.Since(start)),
	)
	fmt.Fprintf(p.Out, "Enriched %d/%d DOIs (%d cached, %d misses)\n",
		rep.Resolved, rep.Requested, rep.CacheHits, rep.Misses)
	return rep
}

// Analysis is the outcome of the graph and ranking phase.
type Analysis struct {
	IDs        []string
	Papers     map[string]types.Paper
	Vectors    map[string][]float32
	Citation   *graph.Graph
	Semantic   *graph.Graph
	Fused      *graph.Graph
	Lite       *graph.Graph
	Community  community.Result
	Inputs     rank.Inputs
	Scores     map[string]float64
	Summary    metrics.Summary
	Top        []string
	Diverse    []string
	Curated    []string
	Excluded   int
	Duplicates int
}

// Analyze embeds the papers that have an external id, builds the citation,
// semantic, fused and lite graphs, labels communities, scores every vertex
// and selects the result lists.
func (p *Pipeline) Analyze(ctx context.Context, papers []types.Paper) (*Analysis, error) {
	if p.Embedder == nil {
		return nil, ErrEmbedderUnavailable
	}
	if err := p.Embedder.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedderUnavailable, err)
	}

	a := &Analysis{Papers: types.IndexByExternalID(papers)}
	for _, paper := range papers {
		if paper.ExternalID == "" {
			a.Excluded++
		}
	}
	a.Duplicates = len(papers) - a.Excluded - len(a.Papers)
	if a.Excluded > 0 {
		p.Logger.Info("papers without external id excluded from graphs", zap.Int("count", a.Excluded))
	}

	a.IDs = make([]string, 0, len(a.Papers))
	for id := range a.Papers {
		a.IDs = append(a.IDs, id)
	}
	sort.Strings(a.IDs)
	corpus := make([]types.Paper, len(a.IDs))
	for i, id := range a.IDs {
		corpus[i] = a.Papers[id]
	}

	idx := index.New(p.cfg.Graph.Seed)
	a.Vectors = make(map[string][]float32, len(a.IDs))
	for _, id := range a.IDs {
		vec, err := p.Embedder.EmbedKey(ctx, paperKeyPrefix+id, a.Papers[id].Text())
		if err != nil && vec == nil {
			return nil, fmt.Errorf("embedding %s: %w", id, err)
		}
		if vec == nil {
			return nil, fmt.Errorf("embedding %s: empty vector", id)
		}
		if err != nil {
			// The vector is usable; only its disk record failed.
			p.Logger.Warn("caching embedding", zap.String("id", id), zap.Error(err))
		}
		if err := idx.Add(id, vec); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", id, err)
		}
		a.Vectors[id] = vec
	}
	fmt.Fprintf(p.Out, "Embedded %d papers (%d excluded without external id)\n", len(a.IDs), a.Excluded)

	a.Citation = graph.Citation(corpus)
	semantic, err := graph.Semantic(a.IDs, a.Vectors, idx, p.cfg.Graph.TopK, p.cfg.Graph.Tau)
	if err != nil {
		return nil, fmt.Errorf("building semantic graph: %w", err)
	}
	a.Semantic = semantic
	a.Fused = graph.Fuse(a.Semantic, a.Citation, p.cfg.Graph.Alpha, p.cfg.Graph.Beta)
	fmt.Fprintf(p.Out, "Graphs: %d citation edges, %d semantic edges, %d fused edges\n",
		a.Citation.Size(), a.Semantic.Size(), a.Fused.Size())

	a.Community = community.Detect(a.Fused, p.cfg.Community)
	p.Logger.Info("communities detected",
		zap.Int("count", a.Community.Labels.Count()),
		zap.Int("iterations", a.Community.Iterations),
		zap.Bool("converged", a.Community.Converged),
	)

	query, err := p.Embedder.Embed(ctx, p.cfg.Embedding.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	rc := p.cfg.Ranking
	a.Inputs = rank.Inputs{
		Sim:       rank.Similarity(a.Vectors, query),
		PageRank:  graph.PageRank(a.Citation, rc.Damping),
		Recency:   rank.Recency(corpus, rc.ReferenceYear, rc.Lambda),
		LogCites:  rank.LogCitations(corpus),
		Venue:     rank.VenueBonus(corpus, rc.Venues),
		Benchmark: rank.BenchmarkFlag(corpus),
	}
	a.Scores = rank.Score(a.IDs, a.Inputs)

	gc := p.cfg.Graph
	a.Lite = graph.Lite(a.Fused, a.Scores, gc.LiteTopK, gc.LiteMinWeight, gc.LiteDegreeCap)
	a.Summary = metrics.Summarize(a.Lite, a.Community.Labels)
	fmt.Fprintf(p.Out, "Lite graph: |V|=%d |E|=%d avgDeg=%.2f avgW=%.3f modularity=%.4f\n",
		a.Summary.Stats.Vertices, a.Summary.Stats.Edges, a.Summary.Stats.AvgDegree,
		a.Summary.Stats.AvgWeight, a.Summary.Modularity)

	sc := p.cfg.Selection
	a.Top = rank.TopN(a.Scores, sc.TopN)
	a.Diverse = rank.Diversified(a.Scores, a.Community.Labels, sc.DiversifiedN)
	a.Curated = rank.Filter(a.Diverse, a.Papers, rank.CriteriaFrom(sc))
	return a, nil
}

// Run executes Prepare and Analyze, persists the run when a store is
// configured and returns the report.
func (p *Pipeline) Run(ctx context.Context, r harvest.Range) (Report, error) {
	rep, _, err := p.RunAnalysis(ctx, r)
	return rep, err
}

// RunAnalysis is Run that also returns the analysis.
func (p *Pipeline) RunAnalysis(ctx context.Context, r harvest.Range) (Report, *Analysis, error) {
	started := time.Now().UTC()
	prep, err := p.Prepare(ctx, r)
	if err != nil {
		return Report{}, nil, err
	}
	a, err := p.Analyze(ctx, prep.Papers)
	if err != nil {
		return Report{}, nil, err
	}

	rep := newReport(prep, a)
	rep.StartedAt = started
	rep.FinishedAt = time.Now().UTC()

	if p.Store != nil {
		tables := BuildTables(a)
		id, err := p.Store.SaveRun(ctx, tables.RunData(rep, p.configYAML()))
		if err != nil {
			return Report{}, nil, fmt.Errorf("saving run: %w", err)
		}
		rep.RunID = id
		fmt.Fprintf(p.Out, "Saved run %d to %s\n", id, p.Store.Path())
	}
	return rep, a, nil
}

// configYAML renders the run configuration with credentials removed.
func (p *Pipeline) configYAML() string {
	cfg := p.cfg
	cfg.Embedding.APIKey = ""
	cfg.Enrichment.Email = ""
	data, err := yaml.Marshal(cfg)
	if err != nil {
		p.Logger.Warn("marshaling run config", zap.Error(err))
		return ""
	}
	return string(data)
}
