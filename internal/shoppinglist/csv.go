package shoppinglist

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"mealweek/internal/shared"
)

// ExportCSV serializes the composed list with the stable columns
// Ingredient, Quantity, Unit, plus Notes when any item carries one.
func ExportCSV(items []Item) ([]byte, error) {
	withNotes := false
	for _, item := range items {
		if item.Notes != "" {
			withNotes = true
			break
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Ingredient", "Quantity", "Unit"}
	if withNotes {
		header = append(header, "Notes")
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, item := range items {
		record := []string{item.Ingredient, item.Quantity, item.Unit}
		if withNotes {
			record = append(record, item.Notes)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseCSV reads an uploaded external shopping list. Ingredient, Quantity
// and Unit columns are required; Notes is optional. Types are never
// trusted: every cell stays text.
func ParseCSV(r io.Reader) ([]Item, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &shared.SchemaError{Missing: []string{"Ingredient", "Quantity", "Unit"}}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, col := range []string{"Ingredient", "Quantity", "Unit"} {
		if _, ok := index[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &shared.SchemaError{Missing: missing}
	}

	field := func(record []string, col string) string {
		i, ok := index[strings.ToLower(col)]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var items []Item
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		items = append(items, Item{
			Ingredient: field(record, "Ingredient"),
			Quantity:   field(record, "Quantity"),
			Unit:       field(record, "Unit"),
			Notes:      field(record, "Notes"),
		})
	}
	return items, nil
}
