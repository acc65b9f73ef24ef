// Package aggregate sums ingredient quantities across a recipe selection.
//
// Grouping is normalized: ingredient and unit are trimmed and lowercased
// before grouping, so "Tomato" and "tomato " land in the same row. Recipe
// name matching is deliberately exact; a selected name that does not match
// any catalog line contributes nothing, without error.
package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"mealweek/internal/catalog"
)

// Ingredient is one consolidated row of the shopping list source data.
// Name and Unit are in normalized (lowercase, trimmed) form.
type Ingredient struct {
	Name     string
	Unit     string
	Quantity float64
}

// Report carries aggregation diagnostics. CoercionFailures counts lines
// whose quantity was non-empty but not numeric; those lines still
// contribute a group entry with a zero total, so free-text quantities like
// "to taste" are visible rather than silently dropped.
type Report struct {
	LinesMatched     int
	CoercionFailures int
}

// Aggregate filters the catalog to the selected recipes, coerces
// quantities, groups by normalized (ingredient, unit) and sums each group.
// It is pure: inputs are never mutated and identical inputs produce
// identical output regardless of line order.
func Aggregate(lines []catalog.Line, selected map[string]bool) ([]Ingredient, Report) {
	type key struct {
		name string
		unit string
	}

	var report Report
	totals := make(map[key]float64)
	for _, l := range lines {
		if !selected[l.Recipe] {
			continue
		}
		report.LinesMatched++

		qty, ok := coerce(l.Quantity)
		if !ok {
			report.CoercionFailures++
		}
		k := key{
			name: strings.ToLower(strings.TrimSpace(l.Ingredient)),
			unit: strings.ToLower(strings.TrimSpace(l.Unit)),
		}
		totals[k] += qty
	}

	out := make([]Ingredient, 0, len(totals))
	for k, total := range totals {
		out = append(out, Ingredient{Name: k.name, Unit: k.unit, Quantity: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Unit < out[j].Unit
	})
	return out, report
}

// coerce parses a stored quantity. Unparsable text becomes zero; ok is
// false only for non-empty text, since an empty quantity is a legitimate
// "no amount" rather than a coercion failure.
func coerce(quantity string) (float64, bool) {
	quantity = strings.TrimSpace(quantity)
	if quantity == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(quantity, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
