package catalog

import (
	"strings"

	"mealweek/internal/shared"
)

// Line is one row of the recipe catalog: a single ingredient of a recipe.
// Quantity is stored exactly as entered and may be free text ("to taste");
// numeric coercion happens only at aggregation time.
type Line struct {
	Recipe     string `json:"recipe"`
	Ingredient string `json:"ingredient"`
	Quantity   string `json:"quantity"`
	Unit       string `json:"unit"`
}

// Store persists the full catalog. Every Save is a full overwrite of the
// backing store; there is no locking, so the last writer wins.
type Store interface {
	Load() ([]Line, error)
	Save(lines []Line) error
}

// Catalog owns the set of recipe lines. All mutations go through its
// methods, and every mutating method persists the full updated set.
type Catalog struct {
	store Store
	lines []Line
}

// New creates a Catalog backed by the given store and loads its contents.
func New(store Store) (*Catalog, error) {
	lines, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Catalog{store: store, lines: lines}, nil
}

// AddLine appends one recipe line. Recipe and ingredient are required after
// trimming; all four fields are stored trimmed. Exact full-row duplicates
// are removed before persisting.
func (c *Catalog) AddLine(recipe, ingredient, quantity, unit string) error {
	recipe = strings.TrimSpace(recipe)
	ingredient = strings.TrimSpace(ingredient)
	if recipe == "" {
		return &shared.ValidationError{Field: "recipe", Reason: "name must not be empty"}
	}
	if ingredient == "" {
		return &shared.ValidationError{Field: "ingredient", Reason: "name must not be empty"}
	}

	c.lines = append(c.lines, Line{
		Recipe:     recipe,
		Ingredient: ingredient,
		Quantity:   strings.TrimSpace(quantity),
		Unit:       strings.TrimSpace(unit),
	})
	c.lines = dedupe(c.lines)
	return c.save()
}

// EditLine overwrites the line at the given position. Dedup is deliberately
// not re-run: an edit may intentionally create a duplicate row.
func (c *Catalog) EditLine(index int, recipe, ingredient, quantity, unit string) error {
	if index < 0 || index >= len(c.lines) {
		return &shared.ValidationError{Field: "line", Reason: "no such line"}
	}
	c.lines[index] = Line{Recipe: recipe, Ingredient: ingredient, Quantity: quantity, Unit: unit}
	return c.save()
}

// DeleteLine removes the line at the given position. Deleting a line that
// is already absent is a silent no-op.
func (c *Catalog) DeleteLine(index int) error {
	if index >= 0 && index < len(c.lines) {
		c.lines = append(c.lines[:index], c.lines[index+1:]...)
	}
	return c.save()
}

// DeleteRecipe removes every line belonging to the named recipe.
func (c *Catalog) DeleteRecipe(recipe string) error {
	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.Recipe != recipe {
			kept = append(kept, l)
		}
	}
	c.lines = kept
	return c.save()
}

// ImportBulk appends the given rows and removes exact full-row duplicates
// across the entire resulting catalog, so repeated imports of the same file
// do not accumulate rows.
func (c *Catalog) ImportBulk(rows []Line) error {
	c.lines = dedupe(append(c.lines, rows...))
	return c.save()
}

// Lines returns a copy of the catalog in stored order.
func (c *Catalog) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len reports the number of catalog lines.
func (c *Catalog) Len() int {
	return len(c.lines)
}

// RecipeNames returns the distinct recipe names in first-seen catalog
// order. Selection widgets downstream rely on this order being stable.
func (c *Catalog) RecipeNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, l := range c.lines {
		if !seen[l.Recipe] {
			seen[l.Recipe] = true
			names = append(names, l.Recipe)
		}
	}
	return names
}

func (c *Catalog) save() error {
	if err := c.store.Save(c.lines); err != nil {
		// In-memory state keeps the attempted value; see shared.PersistenceError.
		return &shared.PersistenceError{Op: "catalog", Err: err}
	}
	return nil
}

// dedupe removes exact full-row duplicates, keeping the first occurrence.
func dedupe(lines []Line) []Line {
	seen := make(map[Line]bool, len(lines))
	out := lines[:0]
	for _, l := range lines {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
