// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"
)

// doiPrefix matches resolver URL and scheme prefixes in front of a DOI.
var doiPrefix = regexp.MustCompile(`^(?:https?://(?:dx\.)?doi\.org/|doi:)`)

const trailingPunct = `.,;:)]}>'"`

// CanonicalDOI normalizes a raw DOI string into the form used as the
// enrichment cache key: trimmed, percent-decoded, lower-cased, with any
// resolver prefix and trailing punctuation removed. It returns false when
// nothing DOI-shaped remains. Applying it to its own output returns the
// same value.
func CanonicalDOI(raw string) (string, bool) {
	// Every pass that changes s shortens it or lower-cases it, so the
	// loop reaches a fixpoint.
	s := raw
	for {
		next := canonicalPass(s)
		if next == s {
			break
		}
		s = next
	}
	if !strings.HasPrefix(s, "10.") || !strings.Contains(s, "/") {
		return "", false
	}
	return s, true
}

func canonicalPass(s string) string {
	s = strings.TrimSpace(s)
	if dec, err := url.PathUnescape(s); err == nil {
		s = dec
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = doiPrefix.ReplaceAllString(s, "")
	s = strings.TrimRight(s, trailingPunct)
	return strings.TrimSpace(s)
}

// CacheKey returns the filesystem-safe disk key for a canonical DOI:
// unpadded base64url of its SHA-256 digest.
func CacheKey(doi string) string {
	sum := sha256.Sum256([]byte(doi))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// shortID trims an OpenAlex URL (https://openalex.org/W123) to its last
// path segment.
func shortID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
