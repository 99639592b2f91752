// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/citegraph/internal/httputil"
	"github.com/pdiddy/citegraph/pkg/types"
)

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

// workFields limits OpenAlex responses to what enrichment stores.
const workFields = "id,doi,cited_by_count,referenced_works"

// maxPerPage is the OpenAlex page size ceiling; chunks never exceed it.
const maxPerPage = 200

// ErrNotFound reports that OpenAlex has no work for a DOI.
var ErrNotFound = errors.New("work not found")

// StatusError reports a final non-success HTTP status from OpenAlex.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("OpenAlex API returned HTTP %d", e.Code)
}

// Oversized reports whether the status means the request was too large
// to be served and should be split rather than retried.
func (e *StatusError) Oversized() bool {
	switch e.Code {
	case http.StatusBadRequest,
		http.StatusRequestEntityTooLarge,
		http.StatusRequestURITooLong,
		http.StatusRequestHeaderFieldsTooLarge:
		return true
	}
	return false
}

// Client queries the OpenAlex Works API by DOI.
type Client struct {
	HTTP *http.Client

	// Email is sent as mailto parameter for polite pool access.
	Email     string
	UserAgent string

	// Policy governs retries and rate limiting for every request.
	Policy httputil.Policy
}

// NewClient builds a client with a shared token-bucket limiter and the
// configured retry bound.
func NewClient(httpClient *http.Client, cfg types.EnrichmentConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		HTTP:      httpClient,
		Email:     cfg.Email,
		UserAgent: cfg.UserAgent,
		Policy: httputil.Policy{
			MaxAttempts: cfg.MaxAttempts,
			Limiter:     httputil.NewLimiter(cfg.PermitsPerSecond, cfg.Burst),
		},
	}
}

// openAlexWork is the subset of an OpenAlex work enrichment reads.
type openAlexWork struct {
	ID              string   `json:"id"`
	DOI             string   `json:"doi"`
	CitedByCount    *int     `json:"cited_by_count"`
	ReferencedWorks []string `json:"referenced_works"`
}

type openAlexPage struct {
	Results []json.RawMessage `json:"results"`
}

// batchResponse holds the usable records of one batch reply and the count
// of results that could not be turned into records.
type batchResponse struct {
	Records   []Record
	Malformed int
}

// BatchURL returns the request URL for a chunk of canonical DOIs.
func (c *Client) BatchURL(dois []string) string {
	params := url.Values{
		"filter":   {"doi:" + strings.Join(dois, "|")},
		"per_page": {strconv.Itoa(maxPerPage)},
		"select":   {workFields},
	}
	if c.Email != "" {
		params.Set("mailto", c.Email)
	}
	return openAlexWorksBase + "?" + params.Encode()
}

// singleURL returns the lookup URL for one canonical DOI.
func (c *Client) singleURL(doi string) string {
	segments := strings.Split(doi, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := openAlexWorksBase + "/doi:" + strings.Join(segments, "/")

	params := url.Values{"select": {workFields}}
	if c.Email != "" {
		params.Set("mailto", c.Email)
	}
	return u + "?" + params.Encode()
}

// LookupBatch fetches the works for a chunk of canonical DOIs in one
// request. A final non-200 status is returned as *StatusError.
func (c *Client) LookupBatch(ctx context.Context, dois []string) (batchResponse, error) {
	resp, err := c.get(ctx, c.BatchURL(dois))
	if err != nil {
		return batchResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return batchResponse{}, &StatusError{Code: resp.StatusCode}
	}

	var page openAlexPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return batchResponse{}, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	var out batchResponse
	for _, raw := range page.Results {
		var w openAlexWork
		if err := json.Unmarshal(raw, &w); err != nil {
			out.Malformed++
			continue
		}
		r, ok := w.record()
		if !ok {
			out.Malformed++
			continue
		}
		out.Records = append(out.Records, r)
	}
	return out, nil
}

// LookupOne fetches a single work by canonical DOI. It returns ErrNotFound
// for 404 and for replies without a usable work id.
func (c *Client) LookupOne(ctx context.Context, doi string) (Record, error) {
	resp, err := c.get(ctx, c.singleURL(doi))
	if err != nil {
		return Record{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Record{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, resp.Body)
		return Record{}, &StatusError{Code: resp.StatusCode}
	}

	var w openAlexWork
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return Record{}, fmt.Errorf("parsing OpenAlex work: %w", err)
	}
	if w.DOI == "" {
		// Single lookups are addressed by DOI, so a missing echo is fine.
		w.DOI = doi
	}
	r, ok := w.record()
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (c *Client) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.Policy.Do(ctx, c.HTTP, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	return resp, nil
}

// record converts a work into a Record keyed by its canonical DOI.
// Works without a DOI or id are rejected.
func (w openAlexWork) record() (Record, bool) {
	doi, ok := CanonicalDOI(w.DOI)
	if !ok {
		return Record{}, false
	}
	id := shortID(w.ID)
	if id == "" {
		return Record{}, false
	}

	var refs []string
	for _, ref := range w.ReferencedWorks {
		if s := shortID(ref); s != "" {
			refs = append(refs, s)
		}
	}
	return Record{
		DOI:             doi,
		ExternalID:      id,
		CitedByCount:    w.CitedByCount,
		ReferencedWorks: refs,
	}, true
}
