// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citegraph/internal/store"
	"github.com/pdiddy/citegraph/pkg/types"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "citegraph dev\n", execute(t, "version"))
}

func TestConfigCommand_PrintsDefaults(t *testing.T) {
	out := execute(t, "config", "--data-dir", t.TempDir())

	var cfg types.PipelineConfig
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	def := types.DefaultPipelineConfig()
	assert.Equal(t, def.Graph, cfg.Graph)
	assert.Equal(t, def.Selection, cfg.Selection)
	assert.Empty(t, cfg.Embedding.APIKey)
}

func TestBindConfig_EnvOverridesNestedKeys(t *testing.T) {
	t.Setenv("CITEGRAPH_ENRICHMENT_EMAIL", "curator@example.org")
	t.Setenv("CITEGRAPH_SELECTION_TOP_N", "7")
	t.Setenv("CITEGRAPH_ENRICHMENT_MEM_CACHE_TTL", "2h")

	v := viper.New()
	require.NoError(t, bindConfig(v))
	cfg, err := decodeConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "curator@example.org", cfg.Enrichment.Email)
	assert.Equal(t, 7, cfg.Selection.TopN)
	assert.Equal(t, 2*time.Hour, cfg.Enrichment.MemCacheTTL)

	def := types.DefaultPipelineConfig()
	assert.Equal(t, def.Graph, cfg.Graph)
	assert.Equal(t, def.Enrichment.MaxParallel, cfg.Enrichment.MaxParallel)
	assert.Equal(t, def.Enrichment.Timeout, cfg.Enrichment.Timeout)
}

func TestBindConfig_DefaultsRoundTrip(t *testing.T) {
	v := viper.New()
	require.NoError(t, bindConfig(v))
	cfg, err := decodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPipelineConfig(), cfg)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level   string
		json    bool
		wantErr bool
	}{
		{level: "debug"},
		{level: "warn", json: true},
		{level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := newLogger(tt.level, tt.json)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestPrintSelection(t *testing.T) {
	var buf bytes.Buffer
	cites := 4
	require.NoError(t, printSelection(&buf, []store.Selected{
		{Position: 1, ExternalID: "W1", Title: "Stance Detection", Year: 2023, Venue: "ACL", Score: 0.91, CitedBy: &cites},
	}))
	assert.Contains(t, buf.String(), "Stance Detection")
	assert.Contains(t, buf.String(), "0.9100")
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRuns(&buf, nil))
	assert.Equal(t, "No runs recorded.\n", buf.String())

	buf.Reset()
	require.NoError(t, printRuns(&buf, []store.Run{{
		ID: 3, StartedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Papers: 10, LiteVertices: 8, LiteEdges: 12,
	}}))
	assert.Contains(t, buf.String(), "2026-03-01 09:30")
	assert.Contains(t, buf.String(), "8/12")
}
