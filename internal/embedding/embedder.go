// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/citegraph/pkg/types"
)

// ErrUnavailable reports that the embedding service failed its liveness check.
var ErrUnavailable = errors.New("embedding service unavailable")

// Embedder turns text into a fixed-length vector. Implementations must
// return vectors of the same dimension for the lifetime of the instance.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Ping checks that the service is reachable and answering.
	Ping(ctx context.Context) error
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint. Local
// sentence-transformer servers exposing that API work as well.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder builds an embedder from cfg. BaseURL selects the
// server; Timeout applies per request.
func NewOpenAIEmbedder(cfg types.EmbeddingConfig) *OpenAIEmbedder {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
	}
}

// Embed returns the embedding of text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("creating embedding: empty response")
	}
	return resp.Data[0].Embedding, nil
}

// Ping embeds a short probe string.
func (e *OpenAIEmbedder) Ping(ctx context.Context) error {
	if _, err := e.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// CachedEmbedder serves embeddings from a Cache before calling the wrapped
// Embedder.
type CachedEmbedder struct {
	Embedder
	cache *Cache
}

// NewCachedEmbedder wraps e with cache.
func NewCachedEmbedder(e Embedder, cache *Cache) *CachedEmbedder {
	return &CachedEmbedder{Embedder: e, cache: cache}
}

// Embed caches by a hash of text.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.EmbedKey(ctx, TextKey("text", text), text)
}

// EmbedKey caches under an explicit key, e.g. "paper:" + work id.
func (c *CachedEmbedder) EmbedKey(ctx context.Context, key, text string) ([]float32, error) {
	return c.cache.GetOrCompute(ctx, key, func(ctx context.Context) ([]float32, error) {
		return c.Embedder.Embed(ctx, text)
	})
}
