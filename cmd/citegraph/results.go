// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citegraph/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List the selections of a stored run",
	Long: `Results prints a selection list of a stored run: curated (the diversified
list after the year, classification and benchmark filters), diversified,
or top. The latest run is used unless --run is given.

Use --format yaml or json to export the run summary with all three lists.`,
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().Int64("run", 0, "run id (0 = latest)")
	resultsCmd.Flags().String("list", store.ListCurated, "selection: curated, diversified, or top")
	resultsCmd.Flags().String("format", "table", "output format: table, yaml, or json")
	resultsCmd.Flags().Int("limit", 0, "maximum rows to print (0 = all)")
	resultsCmd.Flags().Bool("history", false, "list recorded runs instead of a selection")
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()
	limit, _ := cmd.Flags().GetInt("limit")

	if history, _ := cmd.Flags().GetBool("history"); history {
		runs, err := st.Runs(ctx, limit)
		if err != nil {
			return err
		}
		return printRuns(out, runs)
	}

	runID, _ := cmd.Flags().GetInt64("run")
	if runID == 0 {
		latest, err := st.LatestRun(ctx)
		if errors.Is(err, store.ErrNoRuns) {
			return fmt.Errorf("no runs recorded in %s: run `citegraph run` first", st.Path())
		}
		if err != nil {
			return err
		}
		runID = latest.ID
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "json":
		exp, err := st.Export(ctx, runID)
		if err != nil {
			return err
		}
		if format == "json" {
			return exp.WriteJSON(out)
		}
		return exp.WriteYAML(out)
	case "table":
	default:
		return fmt.Errorf("unknown format %q: use table, yaml, or json", format)
	}

	list, _ := cmd.Flags().GetString("list")
	switch list {
	case store.ListCurated, store.ListDiversified, store.ListTop:
	default:
		return fmt.Errorf("unknown list %q: use curated, diversified, or top", list)
	}
	sel, err := st.Selection(ctx, runID, list)
	if err != nil {
		return err
	}
	if limit > 0 && len(sel) > limit {
		sel = sel[:limit]
	}

	fmt.Fprintf(out, "Run %d, %s selection (%d papers)\n\n", runID, list, len(sel))
	if len(sel) == 0 {
		fmt.Fprintln(out, "No papers selected.")
		return nil
	}
	return printSelection(out, sel)
}

func printSelection(w io.Writer, sel []store.Selected) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tCOMM\tYEAR\tVENUE\tDOI\tTITLE")
	for _, s := range sel {
		title := s.Title
		if len(title) > 70 {
			title = title[:67] + "..."
		}
		fmt.Fprintf(tw, "%d\t%.4f\t%d\t%d\t%s\t%s\t%s\n",
			s.Position, s.Score, s.Community, s.Year, s.Venue, s.DOI, title)
	}
	return tw.Flush()
}

func printRuns(w io.Writer, runs []store.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tPAPERS\tEMBEDDED\tCOMMUNITIES\tLITE |V|/|E|")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d/%d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Papers, r.Embedded, r.Communities,
			r.LiteVertices, r.LiteEdges)
	}
	return tw.Flush()
}
