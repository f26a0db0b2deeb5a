// Package export writes the match table as CSV and uploads exports to object storage.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cschnabel/svtracker/internal/model"
	"github.com/cschnabel/svtracker/internal/records"
)

// BOM lets spreadsheet software detect UTF-8.
const BOM = "\uFEFF"

// WriteCSV writes a BOM, the canonical header and one line per record.
func WriteCSV(w io.Writer, t model.Table) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(model.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range t {
		if err := cw.Write(records.Serialize(r)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
