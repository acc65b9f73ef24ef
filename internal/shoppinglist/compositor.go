// Package shoppinglist merges recipe-derived, manually added and imported
// items into the final user-facing shopping list.
package shoppinglist

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"mealweek/internal/aggregate"
	"mealweek/internal/shared"
)

// Source records where a shopping item came from.
type Source string

const (
	SourceRecipes  Source = "recipes"
	SourceManual   Source = "manual"
	SourceImported Source = "imported"
)

// Item is one line of the shopping list. Quantity is kept as text: derived
// rows carry a formatted total, manual and imported rows whatever was
// entered.
type Item struct {
	ID         string `json:"id"`
	Source     Source `json:"source"`
	Ingredient string `json:"ingredient"`
	Quantity   string `json:"quantity"`
	Unit       string `json:"unit"`
	Notes      string `json:"notes,omitempty"`
	Checked    bool   `json:"checked"`
}

// Compositor holds the session's manual and imported items plus per-item
// check-off state. Recipe-derived items are ephemeral and recomputed on
// every Compose call; manual and imported items live until cleared.
type Compositor struct {
	manual   []Item
	imported []Item
	checked  map[string]bool
}

// NewCompositor creates an empty Compositor.
func NewCompositor() *Compositor {
	return &Compositor{checked: make(map[string]bool)}
}

// Compose concatenates recipe-derived, manual and imported items, in that
// order. Sources are never merged into each other: a manual "tomato, 100 g"
// stays its own line even when an aggregated tomato row exists. An empty
// result is a valid shopping list, not an error.
func (c *Compositor) Compose(aggregated []aggregate.Ingredient) []Item {
	items := make([]Item, 0, len(aggregated)+len(c.manual)+len(c.imported))
	for _, ing := range aggregated {
		items = append(items, Item{
			ID:         derivedID(ing),
			Source:     SourceRecipes,
			Ingredient: ing.Name,
			Quantity:   FormatQuantity(ing.Quantity),
			Unit:       ing.Unit,
		})
	}
	items = append(items, c.manual...)
	items = append(items, c.imported...)

	for i := range items {
		items[i].Checked = c.checked[items[i].ID]
	}
	return items
}

// AddManual adds an ad hoc item. The ingredient name is required; quantity
// is stored exactly as entered, numeric or not.
func (c *Compositor) AddManual(ingredient, quantity, unit, notes string) (Item, error) {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return Item{}, &shared.ValidationError{Field: "ingredient", Reason: "name must not be empty"}
	}
	item := Item{
		ID:         uuid.NewString(),
		Source:     SourceManual,
		Ingredient: ingredient,
		Quantity:   strings.TrimSpace(quantity),
		Unit:       strings.TrimSpace(unit),
		Notes:      strings.TrimSpace(notes),
	}
	c.manual = append(c.manual, item)
	return item, nil
}

// SetImported replaces the imported-items section with the given rows,
// assigning fresh identities.
func (c *Compositor) SetImported(items []Item) {
	c.imported = make([]Item, 0, len(items))
	for _, item := range items {
		item.ID = uuid.NewString()
		item.Source = SourceImported
		c.imported = append(c.imported, item)
	}
}

// ClearManual drops all manually added items.
func (c *Compositor) ClearManual() {
	c.manual = nil
}

// ClearImported drops the imported-items section.
func (c *Compositor) ClearImported() {
	c.imported = nil
}

// ToggleChecked flips an item's check-off state and returns the new state.
// The state is ephemeral; it survives recomputes of derived rows because
// their identity is content-derived.
func (c *Compositor) ToggleChecked(id string) bool {
	c.checked[id] = !c.checked[id]
	return c.checked[id]
}

// FormatQuantity renders an aggregated total without trailing zeros.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// derivedID gives a recipe-derived row a stable content-based identity, so
// check-off state survives re-aggregation as long as the row still exists.
func derivedID(ing aggregate.Ingredient) string {
	return "recipes/" + ing.Name + "|" + ing.Unit
}
