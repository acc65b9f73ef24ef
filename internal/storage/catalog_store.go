// Package storage provides the file-backed persistence providers: the
// recipe catalog as a CSV file and the meal plan as a JSON document. Every
// save is a blocking full overwrite with no locking; when two sessions
// share a file the last writer wins silently.
package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"mealweek/internal/catalog"
)

// CatalogStore persists the recipe catalog as a CSV file with the columns
// Recipe, Ingredient, Quantity, Unit.
type CatalogStore struct {
	path string
}

// NewCatalogStore creates a CatalogStore and ensures its directory exists.
func NewCatalogStore(path string) (*CatalogStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory for %s: %w", path, err)
	}
	return &CatalogStore{path: path}, nil
}

// Load reads the full catalog. A missing file is an empty catalog, not an
// error, so a fresh install starts clean.
func (s *CatalogStore) Load() ([]catalog.Line, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	lines, err := catalog.ParseCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", s.path, err)
	}
	return lines, nil
}

// Save overwrites the file with the full catalog.
func (s *CatalogStore) Save(lines []catalog.Line) error {
	data, err := catalog.EncodeCSV(lines)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
