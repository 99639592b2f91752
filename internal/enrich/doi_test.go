// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalDOI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare", "10.18653/v1/2020.acl-main.1", "10.18653/v1/2020.acl-main.1", true},
		{"upper case", "10.1145/ABC.DEF", "10.1145/abc.def", true},
		{"https resolver", "https://doi.org/10.1000/xyz", "10.1000/xyz", true},
		{"dx resolver", "http://dx.doi.org/10.1000/XYZ", "10.1000/xyz", true},
		{"doi scheme", "doi:10.1000/xyz", "10.1000/xyz", true},
		{"whitespace", "  10.1000/xyz \n", "10.1000/xyz", true},
		{"trailing punctuation", "10.1000/xyz).", "10.1000/xyz", true},
		{"percent encoded", "10.1000%2Fxyz%20", "10.1000/xyz", true},
		{"double encoded", "10.1000%252Fxyz", "10.1000/xyz", true},
		{"encoded resolver", "https%3A%2F%2Fdoi.org%2F10.1000%2Fxyz", "10.1000/xyz", true},
		{"blank", "   ", "", false},
		{"empty", "", "", false},
		{"prefix only", "https://doi.org/", "", false},
		{"not a doi", "arXiv:2301.07041", "", false},
		{"bad escape kept", "10.1000/50%off", "10.1000/50%off", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalDOI(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalDOI_Idempotent(t *testing.T) {
	inputs := []string{
		"10.18653/v1/2020.acl-main.1",
		"HTTPS://DOI.ORG/10.1000/ABC;",
		"doi:doi:10.1000/abc",
		"10.1000%252541bc",
		"  https://dx.doi.org/10.1000/a(b)c).  ",
		"10.1000/x%",
		"10.1000/'quoted'",
	}
	for _, in := range inputs {
		once, ok := CanonicalDOI(in)
		if !ok {
			continue
		}
		twice, ok2 := CanonicalDOI(once)
		assert.True(t, ok2, in)
		assert.Equal(t, once, twice, in)
	}
}

func TestCacheKey(t *testing.T) {
	k := CacheKey("10.1000/xyz")
	assert.Len(t, k, 43)
	assert.NotContains(t, k, "/")
	assert.NotContains(t, k, "=")
	assert.Equal(t, k, CacheKey("10.1000/xyz"))
	assert.NotEqual(t, k, CacheKey("10.1000/xyz2"))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "W2741809807", shortID("https://openalex.org/W2741809807"))
	assert.Equal(t, "W1", shortID("W1"))
	assert.Equal(t, "", shortID(""))
}
