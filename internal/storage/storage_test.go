package storage

import (
	"path/filepath"
	"reflect"
	"testing"

	"mealweek/internal/catalog"
	"mealweek/internal/plan"
)

func TestCatalogStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.csv")
	store, err := NewCatalogStore(path)
	if err != nil {
		t.Fatalf("Failed to create CatalogStore: %v", err)
	}

	t.Run("MissingFileIsEmptyCatalog", func(t *testing.T) {
		lines, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(lines) != 0 {
			t.Errorf("Expected empty catalog, got %+v", lines)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		want := []catalog.Line{
			{Recipe: "Pasta", Ingredient: "Tomato", Quantity: "200", Unit: "g"},
			{Recipe: "Soup", Ingredient: "Salt", Quantity: "to taste", Unit: ""},
			{Recipe: "Curry", Ingredient: "Crème fraîche", Quantity: "100", Unit: "ml"},
		}
		if err := store.Save(want); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Round trip changed lines:\nwant %+v\ngot  %+v", want, got)
		}
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		// Two independent sessions write to the same file with no locking:
		// the backing store holds exactly the second save's content.
		first := []catalog.Line{{Recipe: "Pasta", Ingredient: "Tomato", Quantity: "200", Unit: "g"}}
		second := []catalog.Line{{Recipe: "Soup", Ingredient: "Stock", Quantity: "500", Unit: "ml"}}

		sessionA, _ := NewCatalogStore(path)
		sessionB, _ := NewCatalogStore(path)
		if err := sessionA.Save(first); err != nil {
			t.Fatalf("First save failed: %v", err)
		}
		if err := sessionB.Save(second); err != nil {
			t.Fatalf("Second save failed: %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !reflect.DeepEqual(got, second) {
			t.Errorf("Expected last writer to win:\nwant %+v\ngot  %+v", second, got)
		}
	})
}

func TestPlanStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	store, err := NewPlanStore(path)
	if err != nil {
		t.Fatalf("Failed to create PlanStore: %v", err)
	}

	t.Run("MissingFileIsEmptyPlan", func(t *testing.T) {
		a, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if a != nil {
			t.Errorf("Expected nil assignments, got %+v", a)
		}
	})

	t.Run("RoundTripKeepsUTF8", func(t *testing.T) {
		want := plan.Assignments{
			"Monday":  {"Breakfast": "Porridge", "Lunch": ""},
			"Tuesday": {"Breakfast": "Œufs brouillés", "Lunch": "味噌汁"},
		}
		if err := store.Save(want); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Round trip changed assignments:\nwant %+v\ngot  %+v", want, got)
		}
	})
}
