// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Record is the enrichment data resolved for one canonical DOI.
type Record struct {
	DOI             string   `json:"doi"`
	ExternalID      string   `json:"openAlexId"`
	CitedByCount    *int     `json:"citedNumber"`
	ReferencedWorks []string `json:"referencedWorks,omitempty"`
}

// Cache is the two-tier enrichment cache: a bounded in-memory LRU with
// expiry in front of one JSON file per DOI on disk. It is safe for
// concurrent use. Disk writes replace whole files, so concurrent writers of
// the same DOI leave one complete record.
type Cache struct {
	mem *expirable.LRU[string, Record]
	dir string
}

// NewCache creates a cache holding up to size entries in memory for ttl.
// An empty dir disables the disk tier.
func NewCache(dir string, size int, ttl time.Duration) (*Cache, error) {
	if size <= 0 {
		size = 200_000
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
		}
	}
	return &Cache{
		mem: expirable.NewLRU[string, Record](size, nil, ttl),
		dir: dir,
	}, nil
}

// Get returns the record for a canonical DOI, checking memory then disk.
// Disk hits are promoted to memory. Unreadable or invalid disk records
// are treated as misses.
func (c *Cache) Get(doi string) (Record, bool) {
	if r, ok := c.mem.Get(doi); ok {
		return r, true
	}
	r, ok := c.readDisk(doi)
	if !ok {
		return Record{}, false
	}
	c.mem.Add(doi, r)
	return r, true
}

// Put stores a record in both tiers. A disk write failure is returned but
// the memory tier is updated regardless.
func (c *Cache) Put(doi string, r Record) error {
	r.DOI = doi
	c.mem.Add(doi, r)
	return c.writeDisk(doi, r)
}

// Len reports the number of live in-memory entries.
func (c *Cache) Len() int {
	return c.mem.Len()
}

func (c *Cache) path(doi string) string {
	return filepath.Join(c.dir, CacheKey(doi)+".json")
}

func (c *Cache) readDisk(doi string) (Record, bool) {
	if c.dir == "" {
		return Record{}, false
	}
	data, err := os.ReadFile(c.path(doi))
	if err != nil {
		return Record{}, false
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil || r.ExternalID == "" {
		return Record{}, false
	}
	r.DOI = doi
	return r, true
}

func (c *Cache) writeDisk(doi string, r Record) error {
	if c.dir == "" {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding cache record: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".record-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing cache record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing cache record: %w", err)
	}
	if err := os.Rename(tmpName, c.path(doi)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming cache record: %w", err)
	}
	return nil
}
