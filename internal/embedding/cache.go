// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding turns paper text into vectors through an injected
// Embedder and keeps the results in a two-tier cache so reruns over the same
// corpus skip the embedding service.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// maxFileKey is the longest encoded key used verbatim as a file name.
const maxFileKey = 200

// ComputeFunc produces the vector for a cache miss. A nil vector with a nil
// error is a valid "nothing to store" result.
type ComputeFunc func(ctx context.Context) ([]float32, error)

// Cache maps keys to vectors in memory and in one JSON file per key. There
// is no expiry: callers wanting fresh vectors vary the key, e.g. with
// TextKey.
type Cache struct {
	mu  sync.RWMutex
	mem map[string][]float32
	dir string
}

type diskRecord struct {
	Key    string    `json:"key"`
	Vector []float32 `json:"vector"`
}

// NewCache returns a cache persisting under dir. An empty dir keeps
// vectors in memory only.
func NewCache(dir string) (*Cache, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating embedding cache directory %s: %w", dir, err)
		}
	}
	return &Cache{mem: make(map[string][]float32), dir: dir}, nil
}

// TextKey derives a content-addressed key: prefix, underscore, then the
// unpadded base64url SHA-256 of text.
func TextKey(prefix, text string) string {
	sum := sha256.Sum256([]byte(text))
	return prefix + "_" + base64.RawURLEncoding.EncodeToString(sum[:])
}

// GetOrCompute returns the cached vector for key, calling compute on a
// miss in both tiers. Non-nil results are stored in both tiers; a disk
// write failure is returned along with the computed vector.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) ([]float32, error) {
	c.mu.RLock()
	v, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	if v, ok := c.readDisk(key); ok {
		c.mu.Lock()
		c.mem[key] = v
		c.mu.Unlock()
		return v, nil
	}

	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	c.mu.Lock()
	c.mem[key] = v
	c.mu.Unlock()

	if err := c.writeDisk(key, v); err != nil {
		return v, err
	}
	return v, nil
}

// Len reports the number of vectors held in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.mem)
}

// fileName encodes key into a file name that is safe on any filesystem.
// Long keys are hashed.
func fileName(key string) string {
	enc := base64.RawURLEncoding.EncodeToString([]byte(key))
	if len(enc) > maxFileKey {
		sum := sha256.Sum256([]byte(key))
		enc = "h_" + base64.RawURLEncoding.EncodeToString(sum[:])
	}
	return enc + ".json"
}

func (c *Cache) readDisk(key string) ([]float32, bool) {
	if c.dir == "" {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(c.dir, fileName(key)))
	if err != nil {
		return nil, false
	}
	var rec diskRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Key != key || len(rec.Vector) == 0 {
		return nil, false
	}
	return rec.Vector, true
}

func (c *Cache) writeDisk(key string, v []float32) error {
	if c.dir == "" {
		return nil
	}
	data, err := json.Marshal(diskRecord{Key: key, Vector: v})
	if err != nil {
		return fmt.Errorf("encoding embedding record: %w", err)
	}
	path := filepath.Join(c.dir, fileName(key))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing embedding record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming embedding record: %w", err)
	}
	return nil
}
