// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest is the boundary to the paper harvester. A Source hands
// back raw paper records for a year range; the rest of the pipeline never
// sees how they were obtained.
package harvest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/citegraph/pkg/types"
)

// ErrUnavailable reports a source that failed its liveness check.
var ErrUnavailable = errors.New("paper source unavailable")

// Range selects papers by publication year, inclusive. Zero bounds are open.
type Range struct {
	FromYear int `json:"from_year" yaml:"from_year"`
	ToYear   int `json:"to_year" yaml:"to_year"`
}

// Contains reports whether year falls inside r.
func (r Range) Contains(year int) bool {
	if r.FromYear > 0 && year < r.FromYear {
		return false
	}
	if r.ToYear > 0 && year > r.ToYear {
		return false
	}
	return true
}

// Source produces harvested papers.
type Source interface {
	// Ping checks that the source can be read. Failures wrap ErrUnavailable.
	Ping(ctx context.Context) error

	// FetchPapers returns the papers published within r.
	FetchPapers(ctx context.Context, r Range) ([]types.Paper, error)
}

// author accepts either a bare name or an object with a name field.
type author string

func (a *author) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = author(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*a = author(obj.Name)
	return nil
}

// record is the harvester's wire format. Both the harvester's camelCase
// names and citegraph's own snake_case names are accepted.
type record struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Abs             string   `json:"abs"`
	Abstract        string   `json:"abstract"`
	Year            int      `json:"year"`
	Venue           string   `json:"venue"`
	PDFURL          string   `json:"pdfUrl"`
	PDFURLSnake     string   `json:"pdf_url"`
	Authors         []author `json:"authors"`
	DOI             *string  `json:"doi"`
	OpenAlexID      *string  `json:"openAlexId"`
	ExternalID      string   `json:"external_id"`
	CitedByCount    *int     `json:"citedByCount"`
	CitedBySnake    *int     `json:"cited_by_count"`
	ReferencedWorks []string `json:"referencedWorks"`
	ReferencedSnake []string `json:"referenced_works"`
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r record) paper() types.Paper {
	p := types.Paper{
		ID:              r.ID,
		Title:           strings.TrimSpace(r.Title),
		Abstract:        strings.TrimSpace(firstNonEmpty(r.Abs, r.Abstract)),
		Year:            r.Year,
		Venue:           r.Venue,
		PDFURL:          firstNonEmpty(r.PDFURL, r.PDFURLSnake),
		DOI:             deref(r.DOI),
		ExternalID:      firstNonEmpty(deref(r.OpenAlexID), r.ExternalID),
		CitedByCount:    r.CitedByCount,
		ReferencedWorks: r.ReferencedWorks,
	}
	if p.CitedByCount == nil {
		p.CitedByCount = r.CitedBySnake
	}
	if p.ReferencedWorks == nil {
		p.ReferencedWorks = r.ReferencedSnake
	}
	for _, a := range r.Authors {
		if name := strings.TrimSpace(string(a)); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	return p
}

// Decode reads papers from r, which holds either one JSON array or a
// stream of JSON objects (JSON Lines). Records without an id or title are
// skipped.
func Decode(r io.Reader) ([]types.Paper, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading papers: %w", err)
	}

	var recs []record
	dec := json.NewDecoder(br)
	if first == '[' {
		if err := dec.Decode(&recs); err != nil {
			return nil, fmt.Errorf("decoding paper array: %w", err)
		}
	} else {
		for line := 1; ; line++ {
			var rec record
			err := dec.Decode(&rec)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("decoding paper record %d: %w", line, err)
			}
			recs = append(recs, rec)
		}
	}

	papers := make([]types.Paper, 0, len(recs))
	for _, rec := range recs {
		p := rec.paper()
		if p.ID == "" || p.Title == "" {
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

func inRange(papers []types.Paper, r Range) []types.Paper {
	out := papers[:0]
	for _, p := range papers {
		if r.Contains(p.Year) {
			out = append(out, p)
		}
	}
	return out
}

// FileSource reads papers from a JSON or JSON Lines file.
type FileSource struct {
	Path string
}

// NewFileSource returns a source backed by path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Ping checks that the file exists and is a regular file.
func (s *FileSource) Ping(_ context.Context) error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrUnavailable, s.Path)
	}
	return nil
}

// FetchPapers decodes the file and keeps papers within r.
func (s *FileSource) FetchPapers(ctx context.Context, r Range) ([]types.Paper, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Path, err)
	}
	defer f.Close()

	papers, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	return inRange(papers, r), nil
}
