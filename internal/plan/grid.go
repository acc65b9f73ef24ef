package plan

import (
	"strings"

	"mealweek/internal/shared"
)

// Day is one of the seven canonical day names.
type Day string

// Meal is a meal slot within a day. The active set is configurable.
type Meal string

// Days lists the canonical week in order. Resizing the grid to N days
// always takes the first N of these.
var Days = []Day{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DefaultMeals is the meal-slot set used when none is configured.
var DefaultMeals = []Meal{"Breakfast", "Lunch", "Tea", "Snacks"}

// Unassigned is the normalized "no recipe selected" value. The empty string
// and the "-" placeholder shown by selection widgets both normalize to it.
const Unassigned = ""

// Assignments maps day -> meal -> recipe name. It is the grid's persisted
// form: a nested document covering exactly the in-scope cells.
type Assignments map[Day]map[Meal]string

// Store persists the full assignment structure as one document.
type Store interface {
	Load() (Assignments, error)
	Save(a Assignments) error
}

// Grid owns the day x meal-slot assignment of recipes. Recipe names are
// soft references into the catalog: nothing checks they still exist, and a
// dangling name simply aggregates to zero ingredients downstream.
type Grid struct {
	store Store
	days  []Day
	meals []Meal
	cells Assignments
}

// NewGrid loads any persisted assignments and reconciles them to the given
// active days and meal set.
func NewGrid(store Store, days []Day, meals []Meal) (*Grid, error) {
	cells, err := store.Load()
	if err != nil {
		return nil, err
	}
	if cells == nil {
		cells = Assignments{}
	}
	g := &Grid{store: store, cells: cells}
	if err := g.Resize(days, meals); err != nil {
		return nil, err
	}
	return g, nil
}

// Resize recomputes the set of in-scope cells. Cells that remain in scope
// keep their values, newly in-scope cells start unassigned, and cells that
// fall out of scope are dropped. Calling Resize twice with the same
// arguments changes nothing and does not persist.
func (g *Grid) Resize(days []Day, meals []Meal) error {
	next := make(Assignments, len(days))
	changed := false
	for _, day := range days {
		next[day] = make(map[Meal]string, len(meals))
		for _, meal := range meals {
			if v, ok := g.cells[day][meal]; ok {
				next[day][meal] = v
			} else {
				next[day][meal] = Unassigned
				changed = true
			}
		}
	}
	for day, slots := range g.cells {
		for meal := range slots {
			if _, ok := next[day][meal]; !ok {
				changed = true
			}
		}
	}

	g.days = append([]Day(nil), days...)
	g.meals = append([]Meal(nil), meals...)
	g.cells = next
	if !changed {
		return nil
	}
	return g.save()
}

// Set assigns a recipe to a cell. Empty string and "-" both mean
// "unassigned". A write that does not change the stored value is a no-op
// and does not touch the backing store.
func (g *Grid) Set(day Day, meal Meal, recipe string) error {
	slots, ok := g.cells[day]
	if !ok {
		return &shared.ValidationError{Field: "day", Reason: string(day) + " is not in the active plan"}
	}
	current, ok := slots[meal]
	if !ok {
		return &shared.ValidationError{Field: "meal", Reason: string(meal) + " is not in the active meal set"}
	}

	next := normalize(recipe)
	if next == current {
		return nil
	}
	slots[meal] = next
	return g.save()
}

// Get returns the assignment for a cell, or Unassigned if the cell is
// empty or out of scope.
func (g *Grid) Get(day Day, meal Meal) string {
	return g.cells[day][meal]
}

// SelectedRecipes returns the distinct non-empty recipe names assigned
// anywhere in the grid. This set drives ingredient aggregation.
func (g *Grid) SelectedRecipes() map[string]bool {
	selected := make(map[string]bool)
	for _, slots := range g.cells {
		for _, recipe := range slots {
			if recipe != Unassigned {
				selected[recipe] = true
			}
		}
	}
	return selected
}

// ClearAll unassigns every in-scope cell and persists once as a batch.
func (g *Grid) ClearAll() error {
	changed := false
	for _, slots := range g.cells {
		for meal, recipe := range slots {
			if recipe != Unassigned {
				slots[meal] = Unassigned
				changed = true
			}
		}
	}
	if !changed {
		return nil
	}
	return g.save()
}

// Days returns the active days in order.
func (g *Grid) Days() []Day {
	return append([]Day(nil), g.days...)
}

// Meals returns the active meal slots in order.
func (g *Grid) Meals() []Meal {
	return append([]Meal(nil), g.meals...)
}

func (g *Grid) save() error {
	if err := g.store.Save(g.cells); err != nil {
		return &shared.PersistenceError{Op: "meal plan", Err: err}
	}
	return nil
}

func normalize(recipe string) string {
	recipe = strings.TrimSpace(recipe)
	if recipe == "-" {
		return Unassigned
	}
	return recipe
}

// FirstDays returns the first n canonical days, for resizing by day count.
func FirstDays(n int) []Day {
	if n < 0 {
		n = 0
	}
	if n > len(Days) {
		n = len(Days)
	}
	return append([]Day(nil), Days[:n]...)
}
