// Package app ties the catalog, plan grid and shopping list together into
// the operations the presentation surfaces call. Every operation is one
// synchronous read-mutate-persist-recompute pass; callers decide when to
// re-fetch views.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"mealweek/internal/aggregate"
	"mealweek/internal/catalog"
	"mealweek/internal/clipper"
	"mealweek/internal/config"
	"mealweek/internal/metrics"
	"mealweek/internal/plan"
	"mealweek/internal/shoppinglist"
)

// App holds the application's dependencies. Clipper and Metrics are
// optional; operations needing them fail with an explanatory error when
// they are absent.
type App struct {
	cfg        *config.Config
	Catalog    *catalog.Catalog
	Grid       *plan.Grid
	Compositor *shoppinglist.Compositor
	Clipper    *clipper.Clipper
	Metrics    *metrics.Store
}

// NewApp creates and initializes a new App instance.
func NewApp(
	cfg *config.Config,
	cat *catalog.Catalog,
	grid *plan.Grid,
	compositor *shoppinglist.Compositor,
	clip *clipper.Clipper,
	metricsStore *metrics.Store,
) *App {
	return &App{
		cfg:        cfg,
		Catalog:    cat,
		Grid:       grid,
		Compositor: compositor,
		Clipper:    clip,
		Metrics:    metricsStore,
	}
}

// ShoppingList aggregates the currently planned recipes and composes them
// with the session's manual and imported items. The report carries the
// coercion-failure count for display.
func (a *App) ShoppingList() ([]shoppinglist.Item, aggregate.Report) {
	aggregated, report := aggregate.Aggregate(a.Catalog.Lines(), a.Grid.SelectedRecipes())
	return a.Compositor.Compose(aggregated), report
}

// ImportRecipesCSV bulk-imports catalog rows from an uploaded CSV stream.
// It returns the number of rows read from the file (the catalog may grow
// by fewer after dedup).
func (a *App) ImportRecipesCSV(ctx context.Context, r io.Reader) (int, error) {
	start := time.Now()
	rows, err := catalog.ParseCSV(r)
	if err != nil {
		return 0, err
	}
	if err := a.Catalog.ImportBulk(rows); err != nil {
		return 0, err
	}
	a.recordImport(ctx, "csv", rows, start)
	return len(rows), nil
}

// ClipRecipe imports a recipe from a web page via the LLM-backed clipper.
func (a *App) ClipRecipe(ctx context.Context, url string) ([]catalog.Line, error) {
	if a.Clipper == nil {
		return nil, fmt.Errorf("recipe clipping is not configured (set GEMINI_API_KEY)")
	}
	start := time.Now()
	lines, err := a.Clipper.ClipURL(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := a.Catalog.ImportBulk(lines); err != nil {
		return nil, err
	}
	a.recordImport(ctx, "clip", lines, start)
	return lines, nil
}

// ImportShoppingCSV loads an external shopping list into the compositor's
// imported-items section, replacing any previous upload.
func (a *App) ImportShoppingCSV(r io.Reader) (int, error) {
	items, err := shoppinglist.ParseCSV(r)
	if err != nil {
		return 0, err
	}
	a.Compositor.SetImported(items)
	return len(items), nil
}

// recordImport writes a diagnostics event when a metrics store is wired.
func (a *App) recordImport(ctx context.Context, source string, rows []catalog.Line, start time.Time) {
	if a.Metrics == nil {
		return
	}
	event := metrics.ImportEvent{
		Source:           source,
		RowsImported:     len(rows),
		CoercionFailures: countUnparsable(rows),
		LatencyMS:        time.Since(start).Milliseconds(),
	}
	if err := a.Metrics.Record(ctx, event); err != nil {
		log.Printf("Warning: failed to record import event: %v", err)
	}
}

// countUnparsable counts rows whose quantity is non-empty free text. Those
// rows will aggregate to zero, so imports surface the count up front.
func countUnparsable(rows []catalog.Line) int {
	n := 0
	for _, row := range rows {
		q := strings.TrimSpace(row.Quantity)
		if q == "" {
			continue
		}
		if _, err := strconv.ParseFloat(q, 64); err != nil {
			n++
		}
	}
	return n
}
