package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"mealweek/internal/shared"
)

// Columns is the stable on-disk column order for catalog CSV files.
var Columns = []string{"Recipe", "Ingredient", "Quantity", "Unit"}

// ParseCSV reads uploaded tabular rows into catalog lines. The header must
// contain all required columns (any order, case-insensitive); otherwise the
// whole import is rejected with a SchemaError. Cell values are never trusted
// to be numeric.
func ParseCSV(r io.Reader) ([]Line, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &shared.SchemaError{Missing: Columns}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := index[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &shared.SchemaError{Missing: missing}
	}

	field := func(record []string, col string) string {
		i := index[strings.ToLower(col)]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	var lines []Line
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		lines = append(lines, Line{
			Recipe:     field(record, "Recipe"),
			Ingredient: field(record, "Ingredient"),
			Quantity:   field(record, "Quantity"),
			Unit:       field(record, "Unit"),
		})
	}
	return lines, nil
}

// ExportCSV serializes the full catalog with the stable column order.
// The output round-trips through ParseCSV + ImportBulk.
func (c *Catalog) ExportCSV() ([]byte, error) {
	return EncodeCSV(c.lines)
}

// EncodeCSV serializes catalog lines with the stable column order.
func EncodeCSV(lines []Line) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, l := range lines {
		if err := w.Write([]string{l.Recipe, l.Ingredient, l.Quantity, l.Unit}); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
