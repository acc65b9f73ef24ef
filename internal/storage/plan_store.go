package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mealweek/internal/plan"
)

// PlanStore persists the meal plan as an indented JSON document of the
// form {day: {meal: recipe}}. JSON keeps UTF-8 recipe names lossless.
type PlanStore struct {
	path string
}

// NewPlanStore creates a PlanStore and ensures its directory exists.
func NewPlanStore(path string) (*PlanStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory for %s: %w", path, err)
	}
	return &PlanStore{path: path}, nil
}

// Load reads the persisted assignments. A missing file is an empty plan.
func (s *PlanStore) Load() (plan.Assignments, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var a plan.Assignments
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan file %s: %w", s.path, err)
	}
	return a, nil
}

// Save overwrites the file with the full assignment structure.
func (s *PlanStore) Save(a plan.Assignments) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}
