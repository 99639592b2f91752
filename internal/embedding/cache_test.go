// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(calls *int, v []float32) ComputeFunc {
	return func(context.Context) ([]float32, error) {
		*calls++
		return v, nil
	}
}

func TestCache_ComputesOnce(t *testing.T) {
	c, err := NewCache(t.TempDir())
	require.NoError(t, err)

	calls := 0
	for range 3 {
		v, err := c.GetOrCompute(context.Background(), "paper:W1", constant(&calls, []float32{1, 2}))
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2}, v)
	}
	assert.Equal(t, 1, calls)
}

func TestCache_DiskSurvivesNewInstance(t *testing.T) {
	dir := t.TempDir()
	c1, err := NewCache(dir)
	require.NoError(t, err)
	calls := 0
	_, err = c1.GetOrCompute(context.Background(), "paper:W1", constant(&calls, []float32{0.5, 0.25}))
	require.NoError(t, err)

	c2, err := NewCache(dir)
	require.NoError(t, err)
	v, err := c2.GetOrCompute(context.Background(), "paper:W1", constant(&calls, []float32{9, 9}))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, v)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c2.Len())
}

func TestCache_CorruptRecordRecomputes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName("paper:W1")), []byte("{not json"), 0o644))

	c, err := NewCache(dir)
	require.NoError(t, err)
	calls := 0
	v, err := c.GetOrCompute(context.Background(), "paper:W1", constant(&calls, []float32{3}))
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, v)
	assert.Equal(t, 1, calls)
}

func TestCache_ErrorsAndNilAreNotStored(t *testing.T) {
	c, err := NewCache("")
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = c.GetOrCompute(context.Background(), "k", func(context.Context) ([]float32, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	v, err := c.GetOrCompute(context.Background(), "k", func(context.Context) ([]float32, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 0, c.Len())
}

func TestTextKey(t *testing.T) {
	k := TextKey("text", "hello")
	assert.True(t, strings.HasPrefix(k, "text_"))
	assert.Len(t, k, len("text_")+43)
	assert.Equal(t, k, TextKey("text", "hello"))
	assert.NotEqual(t, k, TextKey("text", "hello!"))
}

func TestFileName_LongKeysHashed(t *testing.T) {
	long := strings.Repeat("x", 500)
	name := fileName(long)
	assert.True(t, strings.HasPrefix(name, "h_"))
	assert.Less(t, len(name), 64)
	assert.NotEqual(t, name, fileName(long+"y"))
}
