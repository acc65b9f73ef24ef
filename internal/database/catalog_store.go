package database

import (
	"database/sql"
	"fmt"

	"mealweek/internal/catalog"
)

// CatalogStore persists the recipe catalog in SQLite. Save replaces the
// whole table inside one transaction, mirroring the full-overwrite
// semantics of the CSV provider.
type CatalogStore struct {
	db *sql.DB
}

// NewCatalogStore creates a CatalogStore over an existing connection.
func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// Load reads the full catalog in stored order.
func (s *CatalogStore) Load() ([]catalog.Line, error) {
	rows, err := s.db.Query(`
		SELECT recipe, ingredient, quantity, unit
		FROM recipe_lines
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe lines: %w", err)
	}
	defer rows.Close()

	var lines []catalog.Line
	for rows.Next() {
		var l catalog.Line
		if err := rows.Scan(&l.Recipe, &l.Ingredient, &l.Quantity, &l.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan recipe line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe lines: %w", err)
	}
	return lines, nil
}

// Save replaces the stored catalog with the given lines.
func (s *CatalogStore) Save(lines []catalog.Line) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM recipe_lines`); err != nil {
		return fmt.Errorf("failed to clear recipe lines: %w", err)
	}
	for i, l := range lines {
		_, err := tx.Exec(`
			INSERT INTO recipe_lines (position, recipe, ingredient, quantity, unit)
			VALUES (?, ?, ?, ?, ?)
		`, i, l.Recipe, l.Ingredient, l.Quantity, l.Unit)
		if err != nil {
			return fmt.Errorf("failed to insert recipe line: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipe lines: %w", err)
	}
	return nil
}
