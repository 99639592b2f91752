// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists papers and pipeline runs in SQLite: the enriched
// corpus, and per run the scores, community labels, fused and lite edges,
// curated selections and the metrics table.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/internal/metrics"
	"github.com/pdiddy/citegraph/pkg/types"
)

const dbFile = "citegraph.db"

// Selection list names.
const (
	ListTop         = "top"
	ListDiversified = "diversified"
	ListCurated     = "curated"
)

// Graph names used in the edges table.
const (
	GraphFused = "fused"
	GraphLite  = "lite"
)

// ErrNoRuns is returned when no pipeline run has been recorded.
var ErrNoRuns = errors.New("no runs recorded")

// Store manages the citegraph SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at cfg.DataDir/citegraph.db and
// creates the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.DataDir
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			abstract TEXT,
			year INTEGER,
			venue TEXT,
			authors TEXT,
			pdf_url TEXT,
			doi TEXT,
			external_id TEXT,
			cited_by_count INTEGER,
			referenced_works TEXT,
			is_classification INTEGER NOT NULL DEFAULT 0,
			mentions_benchmark INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_external_id ON papers(external_id)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			config TEXT,
			papers INTEGER,
			embedded INTEGER,
			excluded INTEGER,
			enrich_misses INTEGER,
			communities INTEGER,
			fused_vertices INTEGER,
			fused_edges INTEGER,
			lite_vertices INTEGER,
			lite_edges INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			external_id TEXT NOT NULL,
			score REAL NOT NULL,
			sim REAL,
			pagerank REAL,
			recency REAL,
			log_cites REAL,
			venue REAL,
			benchmark REAL,
			community INTEGER,
			PRIMARY KEY (run_id, external_id)
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			graph TEXT NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			weight REAL NOT NULL,
			PRIMARY KEY (run_id, graph, source, target)
		)`,
		`CREATE TABLE IF NOT EXISTS selections (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			list TEXT NOT NULL,
			position INTEGER NOT NULL,
			external_id TEXT NOT NULL,
			PRIMARY KEY (run_id, list, position)
		)`,
		`CREATE TABLE IF NOT EXISTS metrics (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			scope TEXT NOT NULL,
			metric TEXT NOT NULL,
			key TEXT NOT NULL DEFAULT '',
			value REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metrics_run ON metrics(run_id, scope)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertPapers inserts or replaces papers keyed by their harvester id.
func (s *Store) UpsertPapers(ctx context.Context, papers []types.Paper) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (id, title, abstract, year, venue, authors, pdf_url, doi,
			external_id, cited_by_count, referenced_works, is_classification, mentions_benchmark, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, abstract=excluded.abstract, year=excluded.year,
			venue=excluded.venue, authors=excluded.authors, pdf_url=excluded.pdf_url,
			doi=excluded.doi, external_id=excluded.external_id,
			cited_by_count=excluded.cited_by_count, referenced_works=excluded.referenced_works,
			is_classification=excluded.is_classification,
			mentions_benchmark=excluded.mentions_benchmark, updated_at=excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, p := range papers {
		authorsJSON, _ := json.Marshal(p.Authors)
		refsJSON, _ := json.Marshal(p.ReferencedWorks)
		var cited sql.NullInt64
		if p.CitedByCount != nil {
			cited = sql.NullInt64{Int64: int64(*p.CitedByCount), Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			p.ID, p.Title, p.Abstract, p.Year, p.Venue, string(authorsJSON), p.PDFURL, p.DOI,
			nullString(p.ExternalID), cited, string(refsJSON),
			p.IsClassification, p.MentionsBenchmark, now,
		)
		if err != nil {
			return fmt.Errorf("upserting paper %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// Papers returns every stored paper ordered by id.
func (s *Store) Papers(ctx context.Context) ([]types.Paper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, abstract, year, venue, authors, pdf_url, doi,
			external_id, cited_by_count, referenced_works, is_classification, mentions_benchmark
		 FROM papers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var out []types.Paper
	for rows.Next() {
		var (
			p                                 types.Paper
			abstract, venue, pdfURL, doi, ext sql.NullString
			authorsJSON, refsJSON             sql.NullString
			year, cited                       sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Title, &abstract, &year, &venue, &authorsJSON, &pdfURL, &doi,
			&ext, &cited, &refsJSON, &p.IsClassification, &p.MentionsBenchmark); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		p.Abstract, p.Venue, p.PDFURL, p.DOI, p.ExternalID = abstract.String, venue.String, pdfURL.String, doi.String, ext.String
		p.Year = int(year.Int64)
		if cited.Valid {
			n := int(cited.Int64)
			p.CitedByCount = &n
		}
		if authorsJSON.Valid {
			if err := json.Unmarshal([]byte(authorsJSON.String), &p.Authors); err != nil {
				return nil, fmt.Errorf("decoding authors of paper %s: %w", p.ID, err)
			}
		}
		if refsJSON.Valid {
			if err := json.Unmarshal([]byte(refsJSON.String), &p.ReferencedWorks); err != nil {
				return nil, fmt.Errorf("decoding referenced works of paper %s: %w", p.ID, err)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Run is the summary row of one pipeline run.
type Run struct {
	ID            int64     `json:"id" yaml:"id"`
	StartedAt     time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time `json:"finished_at" yaml:"finished_at"`
	Config        string    `json:"-" yaml:"-"`
	Papers        int       `json:"papers" yaml:"papers"`
	Embedded      int       `json:"embedded" yaml:"embedded"`
	Excluded      int       `json:"excluded" yaml:"excluded"`
	EnrichMisses  int       `json:"enrich_misses" yaml:"enrich_misses"`
	Communities   int       `json:"communities" yaml:"communities"`
	FusedVertices int       `json:"fused_vertices" yaml:"fused_vertices"`
	FusedEdges    int       `json:"fused_edges" yaml:"fused_edges"`
	LiteVertices  int       `json:"lite_vertices" yaml:"lite_vertices"`
	LiteEdges     int       `json:"lite_edges" yaml:"lite_edges"`
}

// ScoreRow is one paper's ranking inputs, score and community in a run.
type ScoreRow struct {
	ExternalID string
	Score      float64
	Sim        float64
	PageRank   float64
	Recency    float64
	LogCites   float64
	Venue      float64
	Benchmark  float64
	// Community is -1 for papers outside the fused graph.
	Community int
}

// RunData is everything persisted for one run.
type RunData struct {
	Run        Run
	Scores     []ScoreRow
	Fused      []graph.Edge
	Lite       []graph.Edge
	Selections map[string][]string
	Metrics    []metrics.Row
}

// SaveRun writes a run and all its rows in one transaction and returns the
// new run id.
func (s *Store) SaveRun(ctx context.Context, data RunData) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	r := data.Run
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, finished_at, config, papers, embedded, excluded, enrich_misses,
			communities, fused_vertices, fused_edges, lite_vertices, lite_edges)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.StartedAt.UTC().Format(time.RFC3339Nano), r.FinishedAt.UTC().Format(time.RFC3339Nano), r.Config,
		r.Papers, r.Embedded, r.Excluded, r.EnrichMisses, r.Communities,
		r.FusedVertices, r.FusedEdges, r.LiteVertices, r.LiteEdges,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	if err := insertScores(ctx, tx, runID, data.Scores); err != nil {
		return 0, err
	}
	if err := insertEdges(ctx, tx, runID, GraphFused, data.Fused); err != nil {
		return 0, err
	}
	if err := insertEdges(ctx, tx, runID, GraphLite, data.Lite); err != nil {
		return 0, err
	}
	if err := insertSelections(ctx, tx, runID, data.Selections); err != nil {
		return 0, err
	}
	if err := insertMetrics(ctx, tx, runID, data.Metrics); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

func insertScores(ctx context.Context, tx *sql.Tx, runID int64, rows []ScoreRow) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scores (run_id, external_id, score, sim, pagerank, recency, log_cites, venue, benchmark, community)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing score insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, r.ExternalID, r.Score,
			r.Sim, r.PageRank, r.Recency, r.LogCites, r.Venue, r.Benchmark, r.Community); err != nil {
			return fmt.Errorf("inserting score %s: %w", r.ExternalID, err)
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, runID int64, name string, edges []graph.Edge) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO edges (run_id, graph, source, target, weight) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing edge insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range edges {
		if _, err := stmt.ExecContext(ctx, runID, name, e.From, e.To, e.Weight); err != nil {
			return fmt.Errorf("inserting %s edge %s-%s: %w", name, e.From, e.To, err)
		}
	}
	return nil
}

func insertSelections(ctx context.Context, tx *sql.Tx, runID int64, lists map[string][]string) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO selections (run_id, list, position, external_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing selection insert: %w", err)
	}
	defer stmt.Close()
	for list, ids := range lists {
		for i, id := range ids {
			if _, err := stmt.ExecContext(ctx, runID, list, i+1, id); err != nil {
				return fmt.Errorf("inserting %s selection %d: %w", list, i+1, err)
			}
		}
	}
	return nil
}

func insertMetrics(ctx context.Context, tx *sql.Tx, runID int64, rows []metrics.Row) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO metrics (run_id, scope, metric, key, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing metric insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, r.Scope, r.Metric, r.Key, r.Value); err != nil {
			return fmt.Errorf("inserting metric %s/%s: %w", r.Scope, r.Metric, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
