package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"mealweek/internal/plan"
)

// PlanStore persists the meal plan as a single JSON document row.
type PlanStore struct {
	db *sql.DB
}

// NewPlanStore creates a PlanStore over an existing connection.
func NewPlanStore(db *sql.DB) *PlanStore {
	return &PlanStore{db: db}
}

// Load reads the persisted assignments. No row yet means an empty plan.
func (s *PlanStore) Load() (plan.Assignments, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM meal_plan WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load meal plan: %w", err)
	}

	var a plan.Assignments
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal plan: %w", err)
	}
	return a, nil
}

// Save overwrites the stored plan document.
func (s *PlanStore) Save(a plan.Assignments) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal meal plan: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO meal_plan (id, data) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, string(data))
	if err != nil {
		return fmt.Errorf("failed to save meal plan: %w", err)
	}
	return nil
}
