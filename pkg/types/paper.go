// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citegraph pipeline:
// paper records as they move from harvesting through enrichment, and the
// configuration groups for each stage.
package types

import "strings"

// Paper is a harvested paper record. Harvesting fills the descriptive
// fields; enrichment fills ExternalID, CitedByCount and ReferencedWorks;
// the classifiers set the two flags. The record is treated as read-only
// once those stages finish.
type Paper struct {
	// ID is the harvester's identifier for the paper.
	ID string `json:"id" yaml:"id"`

	Title    string   `json:"title" yaml:"title"`
	Abstract string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Year     int      `json:"year,omitempty" yaml:"year,omitempty"`
	Venue    string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	PDFURL   string   `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// DOI is the raw DOI string as harvested. It is canonicalized only
	// when used as an enrichment key.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ExternalID is the OpenAlex work id (e.g. "W2741809807"). Papers
	// without one cannot become graph vertices.
	ExternalID string `json:"external_id,omitempty" yaml:"external_id,omitempty"`

	// CitedByCount is nil when the count is unknown.
	CitedByCount *int `json:"cited_by_count,omitempty" yaml:"cited_by_count,omitempty"`

	// ReferencedWorks lists the OpenAlex ids this paper cites.
	ReferencedWorks []string `json:"referenced_works,omitempty" yaml:"referenced_works,omitempty"`

	IsClassification  bool `json:"is_classification" yaml:"is_classification"`
	MentionsBenchmark bool `json:"mentions_benchmark" yaml:"mentions_benchmark"`
}

// Text returns the string embedded for the paper: title and abstract
// joined by a period.
func (p Paper) Text() string {
	return p.Title + ". " + p.Abstract
}

// Cites returns the citation count, treating unknown as zero.
func (p Paper) Cites() int {
	if p.CitedByCount == nil {
		return 0
	}
	return *p.CitedByCount
}

// VenueKey returns the lower-cased, trimmed venue name used for approved
// venue lookups.
func (p Paper) VenueKey() string {
	return strings.ToLower(strings.TrimSpace(p.Venue))
}

// IndexByExternalID maps external id to paper, skipping papers without one.
// When two papers share an external id the first wins.
func IndexByExternalID(papers []Paper) map[string]Paper {
	out := make(map[string]Paper, len(papers))
	for _, p := range papers {
		if p.ExternalID == "" {
			continue
		}
		if _, ok := out[p.ExternalID]; ok {
			continue
		}
		out[p.ExternalID] = p
	}
	return out
}
