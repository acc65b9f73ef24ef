package aggregate

import (
	"math/rand"
	"reflect"
	"testing"

	"mealweek/internal/catalog"
)

func TestAggregateScenario(t *testing.T) {
	lines := []catalog.Line{
		{Recipe: "Pasta", Ingredient: "Tomato", Quantity: "200", Unit: "g"},
		{Recipe: "Pasta", Ingredient: "Pasta", Quantity: "250", Unit: "g"},
		{Recipe: "Soup", Ingredient: "Tomato", Quantity: "100", Unit: "g"},
	}
	selected := map[string]bool{"Pasta": true, "Soup": true}

	got, report := Aggregate(lines, selected)
	want := []Ingredient{
		{Name: "pasta", Unit: "g", Quantity: 250},
		{Name: "tomato", Unit: "g", Quantity: 300},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if report.CoercionFailures != 0 {
		t.Errorf("Expected no coercion failures, got %d", report.CoercionFailures)
	}
	if report.LinesMatched != 3 {
		t.Errorf("Expected 3 matched lines, got %d", report.LinesMatched)
	}
}

func TestAggregateNonNumericQuantity(t *testing.T) {
	lines := []catalog.Line{
		{Recipe: "Soup", Ingredient: "Salt", Quantity: "to taste", Unit: ""},
	}

	got, report := Aggregate(lines, map[string]bool{"Soup": true})
	want := []Ingredient{{Name: "salt", Unit: "", Quantity: 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if report.CoercionFailures != 1 {
		t.Errorf("Expected 1 coercion failure, got %d", report.CoercionFailures)
	}
}

func TestAggregateEmptyQuantityIsNotAFailure(t *testing.T) {
	lines := []catalog.Line{
		{Recipe: "Soup", Ingredient: "Parsley", Quantity: "", Unit: ""},
	}

	_, report := Aggregate(lines, map[string]bool{"Soup": true})
	if report.CoercionFailures != 0 {
		t.Errorf("Expected empty quantity not to count as a failure, got %d", report.CoercionFailures)
	}
}

func TestAggregateOrphanedSelection(t *testing.T) {
	lines := []catalog.Line{
		{Recipe: "Pasta", Ingredient: "Tomato", Quantity: "200", Unit: "g"},
	}

	// A selected recipe that no longer exists contributes nothing.
	got, report := Aggregate(lines, map[string]bool{"Pasta": true, "Deleted Pie": true})
	if len(got) != 1 {
		t.Errorf("Expected only Pasta ingredients, got %+v", got)
	}
	if report.LinesMatched != 1 {
		t.Errorf("Expected 1 matched line, got %d", report.LinesMatched)
	}
}

func TestAggregateNormalizedGrouping(t *testing.T) {
	lines := []catalog.Line{
		{Recipe: "Pasta", Ingredient: "Tomato", Quantity: "200", Unit: "g"},
		{Recipe: "Soup", Ingredient: " tomato ", Quantity: "100", Unit: "G"},
	}

	got, _ := Aggregate(lines, map[string]bool{"Pasta": true, "Soup": true})
	want := []Ingredient{{Name: "tomato", Unit: "g", Quantity: 300}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected case and whitespace variants to merge, got %+v", got)
	}
}

func TestAggregateExactRecipeMatch(t *testing.T) {
	// Recipe-name matching is exact: a casing mismatch silently excludes
	// the line. This is the documented sharp edge of the selection filter.
	lines := []catalog.Line{
		{Recipe: "pasta", Ingredient: "Tomato", Quantity: "200", Unit: "g"},
	}

	got, report := Aggregate(lines, map[string]bool{"Pasta": true})
	if len(got) != 0 || report.LinesMatched != 0 {
		t.Errorf("Expected no match for differently-cased recipe name, got %+v", got)
	}
}

func TestAggregateSumInvariant(t *testing.T) {
	lines := []catalog.Line{
		{Recipe: "Pasta", Ingredient: "Tomato", Quantity: "200", Unit: "g"},
		{Recipe: "Pasta", Ingredient: "Tomato", Quantity: "50", Unit: "g"},
		{Recipe: "Soup", Ingredient: "Tomato", Quantity: "100", Unit: "g"},
		{Recipe: "Soup", Ingredient: "Tomato", Quantity: "1", Unit: "tin"},
		{Recipe: "Curry", Ingredient: "Tomato", Quantity: "400", Unit: "g"},
		{Recipe: "Soup", Ingredient: "Salt", Quantity: "to taste", Unit: ""},
	}
	selected := map[string]bool{"Pasta": true, "Soup": true}

	// The total for (tomato, g) must equal the exact sum of the selected
	// lines' coerced quantities, independent of line order.
	rng := rand.New(rand.NewSource(1))
	baseline, _ := Aggregate(lines, selected)
	for i := 0; i < 20; i++ {
		shuffled := make([]catalog.Line, len(lines))
		copy(shuffled, lines)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, _ := Aggregate(shuffled, selected)
		if !reflect.DeepEqual(got, baseline) {
			t.Fatalf("Aggregation depends on line order:\nwant %+v\ngot  %+v", baseline, got)
		}
	}

	for _, ing := range baseline {
		if ing.Name == "tomato" && ing.Unit == "g" {
			if ing.Quantity != 350 {
				t.Errorf("Expected (tomato, g) total 350, got %v", ing.Quantity)
			}
		}
	}
}

func TestAggregateDoesNotMutateInputs(t *testing.T) {
	lines := []catalog.Line{
		{Recipe: "Pasta", Ingredient: "Tomato", Quantity: "to taste", Unit: "g"},
	}
	before := make([]catalog.Line, len(lines))
	copy(before, lines)

	_, _ = Aggregate(lines, map[string]bool{"Pasta": true})
	if !reflect.DeepEqual(before, lines) {
		t.Errorf("Aggregate mutated its input: %+v", lines)
	}
}

func TestAggregateEmptySelection(t *testing.T) {
	lines := []catalog.Line{
		{Recipe: "Pasta", Ingredient: "Tomato", Quantity: "200", Unit: "g"},
	}

	got, report := Aggregate(lines, nil)
	if len(got) != 0 {
		t.Errorf("Expected empty result for empty selection, got %+v", got)
	}
	if report.LinesMatched != 0 {
		t.Errorf("Expected no matched lines, got %d", report.LinesMatched)
	}
}
