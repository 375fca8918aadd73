// Package csvio holds the small CSV-reading conventions shared by the
// land-use table and seed store loaders: header row skipped, one record per
// data row, ragged rows tolerated so callers can apply their own
// column-count policy.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
)

// ReadRows opens path and returns its data rows (the header row is skipped).
// Rows may have differing field counts — FieldsPerRecord is disabled so the
// caller can decide whether to drop a ragged row or treat it as fatal.
func ReadRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[1:], nil
}
