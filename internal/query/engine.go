// Package query filters and orders property lists.
//
// Everything here is pure: no I/O, no shared state, inputs are never
// mutated. Callers fetch a page of properties from a repository and hand it
// to Run together with the user's Criteria.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

// Run applies criteria to properties and returns a new, ordered slice.
//
// Pipeline order: text, type, price range, bedrooms, bathrooms, sort.
// The sort is stable, so equal keys keep their input order.
func Run(properties []models.Property, c Criteria) []models.Property {
	out := make([]models.Property, 0, len(properties))
	needle := strings.ToLower(strings.TrimSpace(c.Search))
	wantType := models.PropertyType(strings.TrimSpace(c.PropertyType))
	for i := range properties {
		p := &properties[i]
		if needle != "" && !matchesText(p, needle) {
			continue
		}
		if c.HasTypeFilter() && p.Type != wantType {
			continue
		}
		if c.PriceMin != nil && p.Price < *c.PriceMin {
			continue
		}
		if c.PriceMax != nil && p.Price > *c.PriceMax {
			continue
		}
		if c.MinBedrooms != nil && p.Bedrooms < *c.MinBedrooms {
			continue
		}
		if c.MinBathrooms != nil && p.Bathrooms < *c.MinBathrooms {
			continue
		}
		out = append(out, *p)
	}

	if less := comparator(c.Sort); less != nil {
		slices.SortStableFunc(out, less)
	}
	return out
}

func matchesText(p *models.Property, needle string) bool {
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Address), needle) ||
		strings.Contains(strings.ToLower(p.City), needle)
}

// comparator returns nil for an unset or unknown key.
func comparator(key SortKey) func(a, b models.Property) int {
	switch key {
	case SortPriceAsc:
		return func(a, b models.Property) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		return func(a, b models.Property) int { return cmp.Compare(b.Price, a.Price) }
	case SortYearDesc:
		return func(a, b models.Property) int { return cmp.Compare(b.YearBuilt, a.YearBuilt) }
	case SortYearAsc:
		return func(a, b models.Property) int { return cmp.Compare(a.YearBuilt, b.YearBuilt) }
	case SortSqftDesc:
		return func(a, b models.Property) int { return cmp.Compare(b.Sqft, a.Sqft) }
	case SortSqftAsc:
		return func(a, b models.Property) int { return cmp.Compare(a.Sqft, b.Sqft) }
	case SortListedNewest:
		return func(a, b models.Property) int { return cmp.Compare(a.DaysOnMarket, b.DaysOnMarket) }
	case SortListedOldest:
		return func(a, b models.Property) int { return cmp.Compare(b.DaysOnMarket, a.DaysOnMarket) }
	}
	return nil
}
