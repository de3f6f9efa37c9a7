package query

import (
	"slices"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

// MaxComparison is the most properties a ComparisonSet holds.
const MaxComparison = 4

// ComparisonSet is an ordered, capped, duplicate-free selection of
// properties for side-by-side display. The zero value is empty and ready.
// It is not safe for concurrent use.
type ComparisonSet struct {
	items []models.Property
}

// NewComparisonSet adds ps in order, silently skipping duplicates and
// anything past the cap.
func NewComparisonSet(ps ...models.Property) *ComparisonSet {
	s := &ComparisonSet{}
	for _, p := range ps {
		s.Add(p)
	}
	return s
}

// Add appends p and reports whether it was added. It is a no-op when p is
// already present or the set is full.
func (s *ComparisonSet) Add(p models.Property) bool {
	if len(s.items) >= MaxComparison || s.Contains(p.ID) {
		return false
	}
	s.items = append(s.items, p)
	return true
}

// Remove drops the property with the given id and reports whether one was present.
func (s *ComparisonSet) Remove(id int64) bool {
	i := slices.IndexFunc(s.items, func(p models.Property) bool { return p.ID == id })
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

func (s *ComparisonSet) Clear() { s.items = nil }

func (s *ComparisonSet) Len() int { return len(s.items) }

func (s *ComparisonSet) Full() bool { return len(s.items) >= MaxComparison }

func (s *ComparisonSet) Contains(id int64) bool {
	return slices.ContainsFunc(s.items, func(p models.Property) bool { return p.ID == id })
}

// Items returns a copy of the selection in insertion order.
func (s *ComparisonSet) Items() []models.Property {
	return slices.Clone(s.items)
}

// IDs returns the selected property ids in insertion order.
func (s *ComparisonSet) IDs() []int64 {
	ids := make([]int64, len(s.items))
	for i, p := range s.items {
		ids[i] = p.ID
	}
	return ids
}

// ComparisonRow holds the derived figures shown per property.
type ComparisonRow struct {
	Property     models.Property `json:"property"`
	PricePerSqft int64           `json:"price_per_sqft"`
	GrossYield   float64         `json:"gross_yield"`
	// MonthlyCost is HOA fees plus a twelfth of annual property tax.
	MonthlyCost int64 `json:"monthly_cost"`
}

// Highlights names the property id that wins each head-to-head metric.
// A zero id means no property qualified.
type Highlights struct {
	LowestPrice        int64 `json:"lowest_price,omitempty"`
	LowestPricePerSqft int64 `json:"lowest_price_per_sqft,omitempty"`
	LargestSqft        int64 `json:"largest_sqft,omitempty"`
	NewestBuild        int64 `json:"newest_build,omitempty"`
	HighestYield       int64 `json:"highest_yield,omitempty"`
}

// Comparison is the side-by-side table for a ComparisonSet.
type Comparison struct {
	Rows       []ComparisonRow `json:"rows"`
	Highlights Highlights      `json:"highlights"`
}

// Compare derives the comparison table. Ties go to the earlier property.
func Compare(s *ComparisonSet) Comparison {
	out := Comparison{Rows: make([]ComparisonRow, 0, s.Len())}
	var lowPrice, lowPPS, bigSqft, newest, bestYield *ComparisonRow

	for _, p := range s.items {
		row := ComparisonRow{
			Property:     p,
			PricePerSqft: p.PricePerSqft(),
			GrossYield:   p.GrossYield(),
			MonthlyCost:  monthlyCost(&p),
		}
		out.Rows = append(out.Rows, row)
	}

	for i := range out.Rows {
		r := &out.Rows[i]
		if lowPrice == nil || r.Property.Price < lowPrice.Property.Price {
			lowPrice = r
		}
		if r.PricePerSqft > 0 && (lowPPS == nil || r.PricePerSqft < lowPPS.PricePerSqft) {
			lowPPS = r
		}
		if bigSqft == nil || r.Property.Sqft > bigSqft.Property.Sqft {
			bigSqft = r
		}
		if r.Property.YearBuilt > 0 && (newest == nil || r.Property.YearBuilt > newest.Property.YearBuilt) {
			newest = r
		}
		if r.GrossYield > 0 && (bestYield == nil || r.GrossYield > bestYield.GrossYield) {
			bestYield = r
		}
	}

	out.Highlights = Highlights{
		LowestPrice:        rowID(lowPrice),
		LowestPricePerSqft: rowID(lowPPS),
		LargestSqft:        rowID(bigSqft),
		NewestBuild:        rowID(newest),
		HighestYield:       rowID(bestYield),
	}
	return out
}

func monthlyCost(p *models.Property) int64 {
	var total int64
	if p.HOAFee != nil {
		total += *p.HOAFee
	}
	if p.PropertyTax != nil {
		total += (*p.PropertyTax + 6) / 12
	}
	return total
}

func rowID(r *ComparisonRow) int64 {
	if r == nil {
		return 0
	}
	return r.Property.ID
}
