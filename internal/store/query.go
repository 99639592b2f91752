// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/internal/metrics"
)

const runColumns = `id, started_at, finished_at, config, papers, embedded, excluded, enrich_misses,
	communities, fused_vertices, fused_edges, lite_vertices, lite_edges`

func scanRun(sc interface{ Scan(...any) error }) (Run, error) {
	var (
		r                 Run
		started, finished string
		config            sql.NullString
	)
	err := sc.Scan(&r.ID, &started, &finished, &config, &r.Papers, &r.Embedded, &r.Excluded,
		&r.EnrichMisses, &r.Communities, &r.FusedVertices, &r.FusedEdges, &r.LiteVertices, &r.LiteEdges)
	if err != nil {
		return Run{}, err
	}
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
	r.Config = config.String
	return r, nil
}

// LatestRun returns the most recent run, or ErrNoRuns.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY id DESC LIMIT 1`)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("querying latest run: %w", err)
	}
	return r, nil
}

// Runs lists recorded runs, newest first, at most limit (all when limit <= 0).
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Selected is one entry of a stored selection list joined with its score
// and paper metadata.
type Selected struct {
	Position   int     `json:"position" yaml:"position"`
	ExternalID string  `json:"external_id" yaml:"external_id"`
	Title      string  `json:"title" yaml:"title"`
	Year       int     `json:"year,omitempty" yaml:"year,omitempty"`
	Venue      string  `json:"venue,omitempty" yaml:"venue,omitempty"`
	DOI        string  `json:"doi,omitempty" yaml:"doi,omitempty"`
	CitedBy    *int    `json:"cited_by,omitempty" yaml:"cited_by,omitempty"`
	Score      float64 `json:"score" yaml:"score"`
	Community  int     `json:"community" yaml:"community"`
}

// Selection returns the named list of a run in order.
func (s *Store) Selection(ctx context.Context, runID int64, list string) ([]Selected, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sel.position, sel.external_id,
			COALESCE(p.title, ''), COALESCE(p.year, 0), COALESCE(p.venue, ''), COALESCE(p.doi, ''),
			p.cited_by_count, COALESCE(sc.score, 0), COALESCE(sc.community, -1)
		 FROM selections sel
		 LEFT JOIN scores sc ON sc.run_id = sel.run_id AND sc.external_id = sel.external_id
		 LEFT JOIN papers p ON p.id = (
			SELECT MIN(id) FROM papers WHERE external_id = sel.external_id)
		 WHERE sel.run_id = ? AND sel.list = ?
		 ORDER BY sel.position`, runID, list)
	if err != nil {
		return nil, fmt.Errorf("querying %s selection: %w", list, err)
	}
	defer rows.Close()

	var out []Selected
	for rows.Next() {
		var (
			e     Selected
			cited sql.NullInt64
		)
		if err := rows.Scan(&e.Position, &e.ExternalID, &e.Title, &e.Year, &e.Venue, &e.DOI,
			&cited, &e.Score, &e.Community); err != nil {
			return nil, fmt.Errorf("scanning selection: %w", err)
		}
		if cited.Valid {
			n := int(cited.Int64)
			e.CitedBy = &n
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Edges returns the stored edges of one graph of a run, ordered by
// endpoints.
func (s *Store) Edges(ctx context.Context, runID int64, name string) ([]graph.Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, target, weight FROM edges WHERE run_id = ? AND graph = ? ORDER BY source, target`,
		runID, name)
	if err != nil {
		return nil, fmt.Errorf("querying %s edges: %w", name, err)
	}
	defer rows.Close()

	var out []graph.Edge
	for rows.Next() {
		var e graph.Edge
		if err := rows.Scan(&e.From, &e.To, &e.Weight); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Metrics returns the metrics table of a run in insertion order.
func (s *Store) Metrics(ctx context.Context, runID int64) ([]metrics.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT scope, metric, key, value FROM metrics WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying metrics: %w", err)
	}
	defer rows.Close()

	var out []metrics.Row
	for rows.Next() {
		var r metrics.Row
		if err := rows.Scan(&r.Scope, &r.Metric, &r.Key, &r.Value); err != nil {
			return nil, fmt.Errorf("scanning metric: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
