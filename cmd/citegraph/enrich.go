// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citegraph/internal/pipeline"
	"github.com/pdiddy/citegraph/internal/store"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Harvest, prefilter and enrich papers into the store",
	Long: `Enrich harvests papers, drops incomplete records, flags classification and
benchmark papers and resolves each DOI against OpenAlex for its work id,
citation count and referenced works. Results are cached on disk and the
enriched corpus is upserted into citegraph.db.

Unresolved DOIs are reported as misses; they never fail the command.`,
	RunE: runEnrich,
}

func init() {
	addSourceFlags(enrichCmd)
	enrichCmd.Flags().Int("max-parallel", 0, "maximum in-flight OpenAlex requests (0 = config)")
	enrichCmd.Flags().Int("chunk-size", 0, "DOIs per batch request (0 = config)")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("max-parallel"); n > 0 {
		cfg.Enrichment.MaxParallel = n
	}
	if n, _ := cmd.Flags().GetInt("chunk-size"); n > 0 {
		cfg.Enrichment.ChunkSize = n
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	fetcher, err := newFetcher(cfg.Enrichment)
	if err != nil {
		return err
	}

	src, r := sourceFromFlags(cmd)
	p := pipeline.New(cfg, pipeline.Deps{
		Source:   src,
		Enricher: fetcher,
		Store:    st,
		Logger:   logger,
		Out:      cmd.OutOrStdout(),
	})
	prep, err := p.Prepare(ctx, r)
	if err != nil {
		return err
	}

	withID := 0
	for _, paper := range prep.Papers {
		if paper.ExternalID != "" {
			withID++
		}
	}
	e := prep.Enrichment
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nEnrichment summary:\n")
	fmt.Fprintf(out, "  requested:  %d\n", e.Requested)
	fmt.Fprintf(out, "  resolved:   %d\n", e.Resolved)
	fmt.Fprintf(out, "  cache hits: %d\n", e.CacheHits)
	fmt.Fprintf(out, "  misses:     %d\n", e.Misses)
	fmt.Fprintf(out, "  invalid:    %d\n", e.Invalid)
	fmt.Fprintf(out, "  malformed:  %d\n", e.Malformed)
	fmt.Fprintf(out, "  splits:     %d\n", e.Splits)
	fmt.Fprintf(out, "Stored %d papers (%d with an OpenAlex id) in %s\n", len(prep.Papers), withID, st.Path())
	return nil
}
