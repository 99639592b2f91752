// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich resolves paper DOIs against OpenAlex to obtain work ids,
// citation counts and referenced works. Lookups go through a two-tier
// cache, are batched into chunks sent concurrently under a rate limiter,
// split when a chunk is too large, and fall back to single-DOI lookups for
// whatever the batches did not resolve.
package enrich

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/citegraph/internal/httputil"
	"github.com/pdiddy/citegraph/pkg/types"
)

// maxSplitDepth bounds how many times a chunk can be bisected.
const maxSplitDepth = 8

// Result summarizes a batch fetch.
type Result struct {
	// Records maps canonical DOI to its resolved record. Only DOIs from
	// the request appear here.
	Records map[string]Record

	// Requested is the number of distinct canonical DOIs in the input.
	Requested int

	// Invalid counts non-blank inputs with no canonical DOI.
	Invalid int

	// CacheHits counts DOIs served from either cache tier.
	CacheHits int

	// Misses counts DOIs still unresolved after batch and single lookups.
	Misses int

	// Malformed counts response records skipped for missing fields.
	Malformed int

	// Splits counts chunk bisections.
	Splits int
}

// Total returns the number of distinct DOIs requested.
func (r Result) Total() int {
	return r.Requested
}

// HasMisses reports whether any requested DOI stayed unresolved.
func (r Result) HasMisses() bool {
	return r.Misses > 0
}

// Lookup returns the record for a raw DOI string.
func (r Result) Lookup(raw string) (Record, bool) {
	doi, ok := CanonicalDOI(raw)
	if !ok {
		return Record{}, false
	}
	rec, ok := r.Records[doi]
	return rec, ok
}

// Fetcher resolves DOIs in bulk. The cache and client are owned by the
// caller and may be shared with other fetchers.
type Fetcher struct {
	client *Client
	cache  *Cache
	sem    *semaphore.Weighted
	cfg    types.EnrichmentConfig
	logger *zap.Logger
}

// NewFetcher returns a Fetcher bounded to cfg.MaxParallel in-flight
// requests. A nil logger discards output.
func NewFetcher(client *Client, cache *Cache, cfg types.EnrichmentConfig, logger *zap.Logger) *Fetcher {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 24
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 30
	}
	if cfg.ChunkSize > maxPerPage {
		cfg.ChunkSize = maxPerPage
	}
	if cfg.MinChunkSize <= 0 {
		cfg.MinChunkSize = 1
	}
	if cfg.MaxURLLength <= 0 {
		cfg.MaxURLLength = 4000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client: client,
		cache:  cache,
		sem:    semaphore.NewWeighted(int64(cfg.MaxParallel)),
		cfg:    cfg,
		logger: logger,
	}
}

// chunk is one unit of the batch work list.
type chunk struct {
	dois  []string
	depth int
}

// collector accumulates results from concurrent workers.
type collector struct {
	mu        sync.Mutex
	records   map[string]Record
	malformed int
	splits    int
}

func (c *collector) add(r Record) {
	c.mu.Lock()
	c.records[r.DOI] = r
	c.mu.Unlock()
}

func (c *collector) has(doi string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.records[doi]
	return ok
}

// FetchBatch resolves raw DOI strings. Partial failure is never an error:
// unresolved DOIs are only counted in Result.Misses. The returned error is
// non-nil only when ctx is cancelled.
func (f *Fetcher) FetchBatch(ctx context.Context, raw []string) (Result, error) {
	col := &collector{records: make(map[string]Record)}
	res := Result{}

	seen := make(map[string]bool)
	var toFetch []string
	for _, r := range raw {
		doi, ok := CanonicalDOI(r)
		if !ok {
			if strings.TrimSpace(r) != "" {
				res.Invalid++
			}
			continue
		}
		if seen[doi] {
			continue
		}
		seen[doi] = true
		res.Requested++

		if rec, ok := f.cache.Get(doi); ok {
			col.records[doi] = rec
			res.CacheHits++
			continue
		}
		toFetch = append(toFetch, doi)
	}

	f.logger.Info("enrichment batch",
		zap.Int("requested", res.Requested),
		zap.Int("cache_hits", res.CacheHits),
		zap.Int("to_fetch", len(toFetch)))

	if len(toFetch) > 0 {
		unresolved, err := f.fetchChunks(ctx, toFetch, col, seen)
		if err != nil {
			return res, err
		}
		if len(unresolved) > 0 {
			if err := f.fetchEach(ctx, unresolved, col); err != nil {
				return res, err
			}
		}
		for _, doi := range toFetch {
			if !col.has(doi) {
				res.Misses++
			}
		}
	}

	res.Records = col.records
	res.Malformed = col.malformed
	res.Splits = col.splits

	if res.Misses > 0 {
		f.logger.Warn("enrichment misses", zap.Int("misses", res.Misses))
	}
	return res, nil
}

// fetchChunks runs the chunked batch phase and returns the DOIs no batch
// resolved, in input order.
func (f *Fetcher) fetchChunks(ctx context.Context, dois []string, col *collector, requested map[string]bool) ([]string, error) {
	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(dois); start += f.cfg.ChunkSize {
		end := min(start+f.cfg.ChunkSize, len(dois))
		c := chunk{dois: dois[start:end]}
		g.Go(func() error {
			return f.drain(gctx, c, col, requested)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var unresolved []string
	for _, doi := range dois {
		if !col.has(doi) {
			unresolved = append(unresolved, doi)
		}
	}
	return unresolved, nil
}

// drain processes one top-level chunk through an explicit work list,
// bisecting chunks that are predicted or reported to be too large and
// chunks that keep failing. Only context cancellation is returned.
func (f *Fetcher) drain(ctx context.Context, first chunk, col *collector, requested map[string]bool) error {
	stack := []chunk{first}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(c.dois) > 1 && len(f.client.BatchURL(c.dois)) > f.cfg.MaxURLLength && c.depth < maxSplitDepth {
			stack = append(stack, f.split(c, col)...)
			continue
		}

		if err := f.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		resp, err := f.client.LookupBatch(ctx, c.dois)
		f.sem.Release(1)

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var se *StatusError
			isStatus := errors.As(err, &se)
			canSplit := c.depth < maxSplitDepth
			switch {
			case isStatus && se.Oversized() && len(c.dois) > 1 && canSplit:
				f.logger.Debug("chunk rejected as oversized, splitting",
					zap.Int("size", len(c.dois)), zap.Int("status", se.Code))
				stack = append(stack, f.split(c, col)...)
			case isStatus && se.Code == http.StatusTooManyRequests:
				// Splitting would only multiply requests against a
				// throttling server.
				f.logger.Debug("chunk still rate limited, left for single lookups",
					zap.Int("size", len(c.dois)))
			case (!isStatus || httputil.Retryable(se.Code)) && len(c.dois) > f.cfg.MinChunkSize && canSplit:
				f.logger.Debug("chunk failed after retries, splitting",
					zap.Int("size", len(c.dois)), zap.Error(err))
				stack = append(stack, f.split(c, col)...)
			default:
				f.logger.Debug("chunk left for single lookups",
					zap.Int("size", len(c.dois)), zap.Error(err))
			}
			continue
		}

		f.accept(resp, col, requested)
	}
	return nil
}

// split bisects a chunk into two work items.
func (f *Fetcher) split(c chunk, col *collector) []chunk {
	col.mu.Lock()
	col.splits++
	col.mu.Unlock()

	mid := len(c.dois) / 2
	return []chunk{
		{dois: c.dois[mid:], depth: c.depth + 1},
		{dois: c.dois[:mid], depth: c.depth + 1},
	}
}

// accept stores the records of a batch reply that answer a requested DOI.
func (f *Fetcher) accept(resp batchResponse, col *collector, requested map[string]bool) {
	col.mu.Lock()
	col.malformed += resp.Malformed
	col.mu.Unlock()

	for _, r := range resp.Records {
		if !requested[r.DOI] {
			continue
		}
		f.store(r)
		col.add(r)
	}
}

// fetchEach looks up DOIs one at a time, concurrently under the same bound.
func (f *Fetcher) fetchEach(ctx context.Context, dois []string, col *collector) error {
	f.logger.Info("single lookups for unresolved DOIs", zap.Int("count", len(dois)))

	g, gctx := errgroup.WithContext(ctx)
	for _, doi := range dois {
		g.Go(func() error {
			if err := f.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			r, err := f.client.LookupOne(gctx, doi)
			f.sem.Release(1)

			switch {
			case err == nil:
				// Key by the requested DOI even if the work reports another.
				r.DOI = doi
				f.store(r)
				col.add(r)
			case gctx.Err() != nil:
				return gctx.Err()
			case errors.Is(err, ErrNotFound):
				f.logger.Debug("DOI not found", zap.String("doi", doi))
			default:
				f.logger.Debug("single lookup failed", zap.String("doi", doi), zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}

func (f *Fetcher) store(r Record) {
	if err := f.cache.Put(r.DOI, r); err != nil {
		f.logger.Warn("writing enrichment cache", zap.String("doi", r.DOI), zap.Error(err))
	}
}

// Apply copies resolved enrichment onto papers in place and returns how
// many papers were updated. Papers without a hit keep their metadata.
func Apply(papers []types.Paper, res Result) int {
	updated := 0
	for i := range papers {
		rec, ok := res.Lookup(papers[i].DOI)
		if !ok {
			continue
		}
		papers[i].ExternalID = rec.ExternalID
		if rec.CitedByCount != nil {
			n := *rec.CitedByCount
			papers[i].CitedByCount = &n
		}
		papers[i].ReferencedWorks = append([]string(nil), rec.ReferencedWorks...)
		updated++
	}
	return updated
}
