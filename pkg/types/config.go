// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citegraph/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// EnrichmentConfig holds settings for the OpenAlex enrichment stage.
type EnrichmentConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Email is sent as the mailto parameter for OpenAlex polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// MaxParallel bounds simultaneous in-flight requests (default 24).
	MaxParallel int `json:"max_parallel" yaml:"max_parallel" mapstructure:"max_parallel"`

	// PermitsPerSecond is the token-bucket refill rate (default 12).
	PermitsPerSecond int `json:"permits_per_second" yaml:"permits_per_second" mapstructure:"permits_per_second"`

	// Burst caps the token bucket (default 24).
	Burst int `json:"burst" yaml:"burst" mapstructure:"burst"`

	// ChunkSize is the number of DOIs per batch request (default 30).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size" mapstructure:"chunk_size"`

	// MinChunkSize stops bisection of failing chunks below this size (default 1).
	MinChunkSize int `json:"min_chunk_size" yaml:"min_chunk_size" mapstructure:"min_chunk_size"`

	// MaxURLLength triggers proactive bisection when a chunk's request URL
	// would exceed it (default 4000).
	MaxURLLength int `json:"max_url_length" yaml:"max_url_length" mapstructure:"max_url_length"`

	// MaxAttempts bounds retries per request (default 6).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// MemCacheSize bounds the in-memory cache (default 200000).
	MemCacheSize int `json:"mem_cache_size" yaml:"mem_cache_size" mapstructure:"mem_cache_size"`

	// MemCacheTTL is the in-memory expiry (default 12h).
	MemCacheTTL time.Duration `json:"mem_cache_ttl" yaml:"mem_cache_ttl" mapstructure:"mem_cache_ttl"`

	// CacheDir holds one JSON file per resolved DOI. Empty disables the disk tier.
	CacheDir string `json:"cache_dir" yaml:"cache_dir" mapstructure:"cache_dir"`
}

// EmbeddingConfig holds settings for the embedding bridge.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is an OpenAI-compatible API root (e.g. "http://localhost:8080/v1").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Model is the embedding model name sent with each request.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey authenticates against the embedding API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// CacheDir holds one JSON file per embedded key. Empty disables the disk tier.
	CacheDir string `json:"cache_dir" yaml:"cache_dir" mapstructure:"cache_dir"`

	// Query is the text whose embedding anchors the similarity signal.
	Query string `json:"query" yaml:"query" mapstructure:"query"`
}

// GraphConfig holds semantic graph, fusion and lite-view parameters.
type GraphConfig struct {
	// TopK is the number of semantic neighbours per paper (default 20).
	TopK int `json:"top_k" yaml:"top_k" mapstructure:"top_k"`

	// Tau is the minimum cosine similarity for a semantic edge (default 0.40).
	Tau float64 `json:"tau" yaml:"tau" mapstructure:"tau"`

	// Alpha scales semantic edge weight in the fused graph (default 1.0).
	Alpha float64 `json:"alpha" yaml:"alpha" mapstructure:"alpha"`

	// Beta is added per citation edge in the fused graph (default 0.2).
	Beta float64 `json:"beta" yaml:"beta" mapstructure:"beta"`

	// LiteTopK is the number of best-scored vertices kept in the lite view (default 1200).
	LiteTopK int `json:"lite_top_k" yaml:"lite_top_k" mapstructure:"lite_top_k"`

	// LiteMinWeight drops lite edges below this weight (default 0.40).
	LiteMinWeight float64 `json:"lite_min_weight" yaml:"lite_min_weight" mapstructure:"lite_min_weight"`

	// LiteDegreeCap keeps at most this many strongest edges per vertex (default 12).
	LiteDegreeCap int `json:"lite_degree_cap" yaml:"lite_degree_cap" mapstructure:"lite_degree_cap"`

	// Seed fixes HNSW level generation.
	Seed int64 `json:"seed" yaml:"seed" mapstructure:"seed"`
}

// CommunityConfig holds label propagation parameters.
type CommunityConfig struct {
	// MaxIterations bounds label propagation rounds (default 10).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`

	// Seed fixes the per-round visiting order.
	Seed uint64 `json:"seed" yaml:"seed" mapstructure:"seed"`
}

// RankingConfig holds signal parameters for scoring.
type RankingConfig struct {
	// Damping is the PageRank damping factor (default 0.85).
	Damping float64 `json:"damping" yaml:"damping" mapstructure:"damping"`

	// ReferenceYear anchors the recency decay (default 2025).
	ReferenceYear int `json:"reference_year" yaml:"reference_year" mapstructure:"reference_year"`

	// Lambda is the recency decay rate (default 0.20).
	Lambda float64 `json:"lambda" yaml:"lambda" mapstructure:"lambda"`

	// Venues lists approved venue names, compared lower-cased.
	Venues []string `json:"venues" yaml:"venues" mapstructure:"venues"`
}

// SelectionConfig holds result selection and post-filter settings.
type SelectionConfig struct {
	// TopN is the plain top-N size (default 100).
	TopN int `json:"top_n" yaml:"top_n" mapstructure:"top_n"`

	// DiversifiedN is the diversified selection size (default 50).
	DiversifiedN int `json:"diversified_n" yaml:"diversified_n" mapstructure:"diversified_n"`

	// MinYear drops papers published earlier; 0 disables the check.
	MinYear int `json:"min_year" yaml:"min_year" mapstructure:"min_year"`

	// RequireClassification keeps only papers flagged as classification work.
	RequireClassification bool `json:"require_classification" yaml:"require_classification" mapstructure:"require_classification"`

	// RequireBenchmark keeps only papers flagged as mentioning a dataset or benchmark.
	RequireBenchmark bool `json:"require_benchmark" yaml:"require_benchmark" mapstructure:"require_benchmark"`

	// MaxCitations drops papers cited more often than this before graphing; 0 disables.
	MaxCitations int `json:"max_citations" yaml:"max_citations" mapstructure:"max_citations"`
}

// StoreConfig locates the SQLite run store.
type StoreConfig struct {
	// DataDir contains citegraph.db and run reports.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// PipelineConfig groups all stage configurations for a run.
type PipelineConfig struct {
	Enrichment EnrichmentConfig `json:"enrichment" yaml:"enrichment" mapstructure:"enrichment"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	Graph      GraphConfig      `json:"graph" yaml:"graph" mapstructure:"graph"`
	Community  CommunityConfig  `json:"community" yaml:"community" mapstructure:"community"`
	Ranking    RankingConfig    `json:"ranking" yaml:"ranking" mapstructure:"ranking"`
	Selection  SelectionConfig  `json:"selection" yaml:"selection" mapstructure:"selection"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
}

// DefaultPipelineConfig returns the settings used for the classification
// survey run.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Enrichment: EnrichmentConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "citegraph/0.1",
			},
			MaxParallel:      24,
			PermitsPerSecond: 12,
			Burst:            24,
			ChunkSize:        30,
			MinChunkSize:     1,
			MaxURLLength:     4000,
			MaxAttempts:      6,
			MemCacheSize:     200_000,
			MemCacheTTL:      12 * time.Hour,
			CacheDir:         ".cache/openalex",
		},
		Embedding: EmbeddingConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "citegraph/0.1",
			},
			BaseURL:  "http://localhost:8080/v1",
			Model:    "all-MiniLM-L6-v2",
			CacheDir: ".cache/embeddings",
			Query:    "text classification, datasets, benchmarks, NLP",
		},
		Graph: GraphConfig{
			TopK:          20,
			Tau:           0.40,
			Alpha:         1.0,
			Beta:          0.2,
			LiteTopK:      1200,
			LiteMinWeight: 0.40,
			LiteDegreeCap: 12,
			Seed:          42,
		},
		Community: CommunityConfig{
			MaxIterations: 10,
			Seed:          42,
		},
		Ranking: RankingConfig{
			Damping:       0.85,
			ReferenceYear: 2025,
			Lambda:        0.20,
			Venues:        []string{"acl", "emnlp", "naacl", "coling", "neurips", "icml"},
		},
		Selection: SelectionConfig{
			TopN:                  100,
			DiversifiedN:          50,
			MinYear:               2021,
			RequireClassification: true,
			RequireBenchmark:      true,
			MaxCitations:          200,
		},
		Store: StoreConfig{
			DataDir: "data",
		},
	}
}
