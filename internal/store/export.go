// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Export is the serialized view of one run: its summary and every
// selection list.
type Export struct {
	Run        Run                   `json:"run" yaml:"run"`
	Selections map[string][]Selected `json:"selections" yaml:"selections"`
}

// Export collects the run and its selection lists.
func (s *Store) Export(ctx context.Context, runID int64, lists ...string) (Export, error) {
	if len(lists) == 0 {
		lists = []string{ListCurated, ListDiversified, ListTop}
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		return Export{}, fmt.Errorf("loading run %d: %w", runID, err)
	}

	out := Export{Run: r, Selections: make(map[string][]Selected, len(lists))}
	for _, list := range lists {
		sel, err := s.Selection(ctx, runID, list)
		if err != nil {
			return Export{}, err
		}
		out.Selections[list] = sel
	}
	return out, nil
}

// WriteYAML writes e as YAML.
func (e Export) WriteYAML(w io.Writer) error {
	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteJSON writes e as indented JSON.
func (e Export) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
