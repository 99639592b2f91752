// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citegraph/pkg/types"
)

// embeddingServer answers /v1/embeddings with a vector derived from the
// input length.
func embeddingServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"down","type":"server_error"}}`))
			return
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Input) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		n := float32(len(req.Input[0]))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": []float32{n, 1, 0}},
			},
		})
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func testEmbedder(url string) *OpenAIEmbedder {
	return NewOpenAIEmbedder(types.EmbeddingConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second},
		BaseURL:    url + "/v1",
		Model:      "test-model",
	})
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	ts, calls := embeddingServer(t, http.StatusOK)
	e := testEmbedder(ts.URL)

	v, err := e.Embed(context.Background(), "abcd")
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 1, 0}, v)
	assert.EqualValues(t, 1, calls.Load())
}

func TestOpenAIEmbedder_PingUnavailable(t *testing.T) {
	ts, _ := embeddingServer(t, http.StatusServiceUnavailable)
	e := testEmbedder(ts.URL)

	err := e.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAIEmbedder_PingOK(t *testing.T) {
	ts, _ := embeddingServer(t, http.StatusOK)
	require.NoError(t, testEmbedder(ts.URL).Ping(context.Background()))
}

func TestCachedEmbedder_HitsServiceOncePerKey(t *testing.T) {
	ts, calls := embeddingServer(t, http.StatusOK)
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	e := NewCachedEmbedder(testEmbedder(ts.URL), cache)

	for range 3 {
		v, err := e.EmbedKey(context.Background(), "paper:W1", "Title. Abstract")
		require.NoError(t, err)
		assert.Equal(t, []float32{15, 1, 0}, v)
	}
	_, err = e.Embed(context.Background(), "query")
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "query")
	require.NoError(t, err)

	assert.EqualValues(t, 2, calls.Load())
}
