// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citegraph/internal/embedding"
	"github.com/pdiddy/citegraph/internal/enrich"
	"github.com/pdiddy/citegraph/internal/harvest"
	"github.com/pdiddy/citegraph/internal/pipeline"
	"github.com/pdiddy/citegraph/internal/store"
	"github.com/pdiddy/citegraph/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full ranking pipeline over a harvested corpus",
	Long: `Run harvests papers, prefilters and classifies them, enriches them with
OpenAlex citation data, embeds title and abstract, builds the citation,
semantic and fused graphs, detects communities, scores every paper and
selects the top, diversified and curated lists.

The run is stored in citegraph.db and summarized in run-report.yaml under
the data directory. The embedding service must answer its handshake before
ranking starts; enrichment failures only reduce coverage.`,
	RunE: runRun,
}

func init() {
	addSourceFlags(runCmd)
	runCmd.Flags().Bool("no-enrich", false, "skip OpenAlex enrichment and use stored metadata as harvested")
	runCmd.Flags().String("query", "", "ranking query text (default from config)")
	runCmd.Flags().Int("top-n", 0, "size of the top-N list (0 = config)")
	runCmd.Flags().Int("diversified-n", 0, "size of the diversified list (0 = config)")
	runCmd.Flags().Bool("tables", false, "print the vertex and metrics tables after the run")
	rootCmd.AddCommand(runCmd)
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("input", "data/papers.jsonl", "harvested papers file (JSON array or JSON Lines)")
	cmd.Flags().String("harvester", "", "harvester executable; overrides --input")
	cmd.Flags().StringArray("harvester-arg", nil, "argument passed to the harvester (repeatable)")
	cmd.Flags().Int("from", 0, "earliest publication year (0 = open)")
	cmd.Flags().Int("to", 0, "latest publication year (0 = open)")
}

func sourceFromFlags(cmd *cobra.Command) (harvest.Source, harvest.Range) {
	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	r := harvest.Range{FromYear: from, ToYear: to}

	if bin, _ := cmd.Flags().GetString("harvester"); bin != "" {
		args, _ := cmd.Flags().GetStringArray("harvester-arg")
		return harvest.NewCommandSource(bin, args...), r
	}
	input, _ := cmd.Flags().GetString("input")
	return harvest.NewFileSource(input), r
}

func newFetcher(cfg types.EnrichmentConfig) (*enrich.Fetcher, error) {
	cache, err := enrich.NewCache(cfg.CacheDir, cfg.MemCacheSize, cfg.MemCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("opening enrichment cache: %w", err)
	}
	return enrich.NewFetcher(enrich.NewClient(nil, cfg), cache, cfg, logger), nil
}

func newEmbedder(cfg types.EmbeddingConfig) (*embedding.CachedEmbedder, error) {
	cache, err := embedding.NewCache(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}
	return embedding.NewCachedEmbedder(embedding.NewOpenAIEmbedder(cfg), cache), nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if q, _ := cmd.Flags().GetString("query"); q != "" {
		cfg.Embedding.Query = q
	}
	if n, _ := cmd.Flags().GetInt("top-n"); n > 0 {
		cfg.Selection.TopN = n
	}
	if n, _ := cmd.Flags().GetInt("diversified-n"); n > 0 {
		cfg.Selection.DiversifiedN = n
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}

	src, r := sourceFromFlags(cmd)
	deps := pipeline.Deps{
		Source:   src,
		Embedder: embedder,
		Store:    st,
		Logger:   logger,
		Out:      cmd.OutOrStdout(),
	}
	if skip, _ := cmd.Flags().GetBool("no-enrich"); !skip {
		fetcher, err := newFetcher(cfg.Enrichment)
		if err != nil {
			return err
		}
		deps.Enricher = fetcher
	}

	p := pipeline.New(cfg, deps)
	if tables, _ := cmd.Flags().GetBool("tables"); tables {
		return runWithTables(ctx, cmd, cfg, p, r)
	}

	rep, err := p.Run(ctx, r)
	if err != nil {
		return err
	}
	return finishRun(cmd, cfg, rep)
}

// runWithTables keeps the analysis to print the vertex and metrics tables.
func runWithTables(ctx context.Context, cmd *cobra.Command, cfg types.PipelineConfig, p *pipeline.Pipeline, r harvest.Range) error {
	rep, a, err := p.RunAnalysis(ctx, r)
	if err != nil {
		return err
	}
	tables := pipeline.BuildTables(a)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	if err := tables.WriteVertices(out); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := tables.WriteMetrics(out); err != nil {
		return err
	}
	return finishRun(cmd, cfg, rep)
}

func finishRun(cmd *cobra.Command, cfg types.PipelineConfig, rep pipeline.Report) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	rep.Print(out)

	path, err := rep.WriteYAML(cfg.Store.DataDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Report written to %s\n", path)
	return nil
}
