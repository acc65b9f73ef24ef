package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"mealweek/internal/catalog"
	"mealweek/internal/config"
	"mealweek/internal/plan"
	"mealweek/internal/shoppinglist"
	"mealweek/internal/storage"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	catalogStore, err := storage.NewCatalogStore(filepath.Join(dir, "recipes.csv"))
	if err != nil {
		t.Fatalf("Failed to create catalog store: %v", err)
	}
	cat, err := catalog.New(catalogStore)
	if err != nil {
		t.Fatalf("Failed to create catalog: %v", err)
	}

	planStore, err := storage.NewPlanStore(filepath.Join(dir, "plan.json"))
	if err != nil {
		t.Fatalf("Failed to create plan store: %v", err)
	}
	grid, err := plan.NewGrid(planStore, plan.FirstDays(3), plan.DefaultMeals)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}

	cfg := &config.Config{DataDir: dir, StorageBackend: config.BackendFiles}
	return NewApp(cfg, cat, grid, shoppinglist.NewCompositor(), nil, nil)
}

func TestShoppingList(t *testing.T) {
	a := newTestApp(t)

	_ = a.Catalog.AddLine("Pasta", "Tomato", "200", "g")
	_ = a.Catalog.AddLine("Pasta", "Pasta", "250", "g")
	_ = a.Catalog.AddLine("Soup", "Tomato", "100", "g")
	_ = a.Catalog.AddLine("Soup", "Salt", "to taste", "")

	_ = a.Grid.Set("Monday", "Tea", "Pasta")
	_ = a.Grid.Set("Tuesday", "Lunch", "Soup")

	items, report := a.ShoppingList()
	if len(items) != 3 {
		t.Fatalf("Expected 3 aggregated items, got %d: %+v", len(items), items)
	}
	if report.CoercionFailures != 1 {
		t.Errorf("Expected 1 coercion failure for 'to taste', got %d", report.CoercionFailures)
	}

	// pasta, salt, tomato in case-insensitive ascending order.
	if items[0].Ingredient != "pasta" || items[1].Ingredient != "salt" || items[2].Ingredient != "tomato" {
		t.Errorf("Unexpected order: %+v", items)
	}
	if items[2].Quantity != "300" {
		t.Errorf("Expected tomato total 300, got %s", items[2].Quantity)
	}
}

func TestShoppingListWithManualAndImported(t *testing.T) {
	a := newTestApp(t)
	_ = a.Catalog.AddLine("Pasta", "Tomato", "200", "g")
	_ = a.Grid.Set("Monday", "Tea", "Pasta")

	if _, err := a.Compositor.AddManual("Bin bags", "1", "roll", ""); err != nil {
		t.Fatalf("AddManual failed: %v", err)
	}
	n, err := a.ImportShoppingCSV(strings.NewReader("Ingredient,Quantity,Unit\nCat food,3,tins\n"))
	if err != nil {
		t.Fatalf("ImportShoppingCSV failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 imported item, got %d", n)
	}

	items, _ := a.ShoppingList()
	if len(items) != 3 {
		t.Fatalf("Expected 3 items (1 derived, 1 manual, 1 imported), got %d", len(items))
	}
	if items[1].Source != shoppinglist.SourceManual || items[2].Source != shoppinglist.SourceImported {
		t.Errorf("Unexpected source ordering: %+v", items)
	}
}

func TestImportRecipesCSV(t *testing.T) {
	a := newTestApp(t)

	csvData := "Recipe,Ingredient,Quantity,Unit\nPasta,Tomato,200,g\nPasta,Tomato,200,g\n"
	n, err := a.ImportRecipesCSV(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportRecipesCSV failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 rows read, got %d", n)
	}
	if a.Catalog.Len() != 1 {
		t.Errorf("Expected 1 line after dedup, got %d", a.Catalog.Len())
	}
}

func TestClipRecipeUnconfigured(t *testing.T) {
	a := newTestApp(t)
	if _, err := a.ClipRecipe(context.Background(), "https://example.com/pie"); err == nil {
		t.Fatal("Expected error when clipper is not configured")
	}
}

func TestCountUnparsable(t *testing.T) {
	rows := []catalog.Line{
		{Quantity: "200"},
		{Quantity: "to taste"},
		{Quantity: ""},
		{Quantity: " 2.5 "},
		{Quantity: "a pinch"},
	}
	if got := countUnparsable(rows); got != 2 {
		t.Errorf("Expected 2 unparsable quantities, got %d", got)
	}
}
