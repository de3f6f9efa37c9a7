package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

// AnyType is the property type sentinel meaning "no type constraint".
const AnyType = "any"

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortYearDesc  SortKey = "year-desc"
	SortYearAsc   SortKey = "year-asc"
	SortSqftDesc  SortKey = "sqft-desc"
	SortSqftAsc   SortKey = "sqft-asc"
	// Freshness orderings from the search results page.
	SortListedNewest SortKey = "listed-newest"
	SortListedOldest SortKey = "listed-oldest"
)

// sortAliases maps the labels the pages send to canonical keys.
var sortAliases = map[string]SortKey{
	"price-low":          SortPriceAsc,
	"price-high":         SortPriceDesc,
	"newest":             SortYearDesc,
	"oldest":             SortYearAsc,
	"sqft-large":         SortSqftDesc,
	"sqft-small":         SortSqftAsc,
	"price: low to high": SortPriceAsc,
	"price: high to low": SortPriceDesc,
	"newest first":       SortListedNewest,
	"oldest first":       SortListedOldest,
}

// Valid reports whether k is a recognised sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortPriceAsc, SortPriceDesc, SortYearDesc, SortYearAsc, SortSqftDesc, SortSqftAsc,
		SortListedNewest, SortListedOldest:
		return true
	}
	return false
}

// ParseSortKey resolves a canonical key or one of the page labels.
// Unknown input yields "" (keep input order).
func ParseSortKey(s string) SortKey {
	s = strings.TrimSpace(s)
	if k := SortKey(s); k.Valid() {
		return k
	}
	if k, ok := sortAliases[strings.ToLower(s)]; ok {
		return k
	}
	return ""
}

// Criteria is the user-chosen set of filter and sort parameters.
// A nil pointer or empty string means "no constraint".
type Criteria struct {
	Search       string   `json:"q,omitempty"`
	PropertyType string   `json:"type,omitempty"`
	PriceMin     *int64   `json:"price_min,omitempty"`
	PriceMax     *int64   `json:"price_max,omitempty"`
	MinBedrooms  *int     `json:"min_bedrooms,omitempty"`
	MinBathrooms *float64 `json:"min_bathrooms,omitempty"`
	Sort         SortKey  `json:"sort,omitempty"`
}

// Defaults holds the values a "clear all filters" action resets to.
type Defaults struct {
	// PriceMax of 0 leaves the upper bound open.
	PriceMax int64
	Sort     SortKey
}

// Reset returns the criteria a "clear all filters" action produces.
func (d Defaults) Reset() Criteria {
	c := Criteria{PropertyType: AnyType, Sort: d.Sort}
	if d.PriceMax > 0 {
		zero := int64(0)
		max := d.PriceMax
		c.PriceMin = &zero
		c.PriceMax = &max
	}
	return c
}

// HasTypeFilter reports whether the type filter is active.
func (c Criteria) HasTypeFilter() bool {
	t := strings.TrimSpace(c.PropertyType)
	return t != "" && t != AnyType
}

// IsUnconstrained reports whether no filter step would remove anything.
func (c Criteria) IsUnconstrained() bool {
	return strings.TrimSpace(c.Search) == "" &&
		!c.HasTypeFilter() &&
		(c.PriceMin == nil || *c.PriceMin <= 0) &&
		c.PriceMax == nil &&
		c.MinBedrooms == nil &&
		c.MinBathrooms == nil
}

// Normalize returns a canonical copy: trimmed search text, the "any" type
// sentinel for an empty type, canonical sort key, negative bounds dropped.
// Equal normalized criteria always produce equal results.
func (c Criteria) Normalize() Criteria {
	n := c
	n.Search = strings.TrimSpace(c.Search)
	n.PropertyType = strings.TrimSpace(c.PropertyType)
	if n.PropertyType == "" {
		n.PropertyType = AnyType
	}
	n.Sort = ParseSortKey(string(c.Sort))
	if c.PriceMin != nil && *c.PriceMin < 0 {
		n.PriceMin = nil
	}
	if c.PriceMax != nil && *c.PriceMax < 0 {
		n.PriceMax = nil
	}
	if c.MinBedrooms != nil && *c.MinBedrooms <= 0 {
		n.MinBedrooms = nil
	}
	if c.MinBathrooms != nil && *c.MinBathrooms <= 0 {
		n.MinBathrooms = nil
	}
	return n
}

// FromValues seeds criteria from URL query parameters, starting from defaults.
// Recognised keys: q, type, price (range token), price_min, price_max,
// beds, baths, sort. Malformed values are ignored.
func FromValues(v url.Values, d Defaults) Criteria {
	c := d.Reset()

	if q := v.Get("q"); q != "" {
		c.Search = q
	}
	if t, ok := parseTypeParam(v.Get("type")); ok {
		c.PropertyType = t
	}
	if token := v.Get("price"); token != "" {
		if min, max, ok := ParsePriceRange(token); ok {
			c.PriceMin = min
			c.PriceMax = max
		}
	}
	if n, ok := parseInt64(v.Get("price_min")); ok {
		c.PriceMin = &n
	}
	if n, ok := parseInt64(v.Get("price_max")); ok {
		c.PriceMax = &n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get("beds"))); err == nil && n > 0 {
		c.MinBedrooms = &n
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(v.Get("baths")), 64); err == nil && f > 0 {
		c.MinBathrooms = &f
	}
	if s := v.Get("sort"); s != "" {
		if k := ParseSortKey(s); k != "" {
			c.Sort = k
		}
	}
	return c
}

// ParsePriceRange reads a price token such as "500000-1000000",
// "$500,000 - $1,000,000", "$3M+" or "Any Price". A missing upper bound
// leaves max nil. ok is false for "any" tokens and malformed input.
func ParsePriceRange(token string) (min, max *int64, ok bool) {
	token = strings.TrimSpace(token)
	if token == "" || strings.EqualFold(token, "any price") || strings.EqualFold(token, "any") {
		return nil, nil, false
	}
	lo, hi, found := strings.Cut(token, "-")
	minVal, okMin := parseMoney(lo)
	if !okMin {
		return nil, nil, false
	}
	min = &minVal
	if found {
		if maxVal, okMax := parseMoney(hi); okMax {
			max = &maxVal
		}
	}
	return min, max, true
}

// parseMoney reads "$1,250,000", "750k" or "1.5M". Decimals are honoured
// before the multiplier is applied.
func parseMoney(s string) (int64, bool) {
	s = moneyNoise.Replace(strings.ToUpper(strings.TrimSpace(s)))
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "M"):
		mult, s = 1_000_000, strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		mult, s = 1_000, strings.TrimSuffix(s, "K")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int64(math.Round(f * mult)), true
}

var moneyNoise = strings.NewReplacer("$", "", ",", "", " ", "", "+", "")

func parseInt64(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// anyTypeTokens are the "no constraint" values the search forms send.
var anyTypeTokens = map[string]bool{
	AnyType:     true,
	"all":       true,
	"all types": true,
	"any type":  true,
}

// parseTypeParam accepts a canonical type or a display label. Unknown
// values report ok=false and leave the type unconstrained.
func parseTypeParam(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || anyTypeTokens[strings.ToLower(raw)] {
		return AnyType, raw != ""
	}
	if t, ok := models.ParsePropertyType(raw); ok {
		return string(t), true
	}
	return "", false
}

// TypeLabel is the display label used in result descriptions.
func (c Criteria) TypeLabel() string {
	return models.PropertyType(c.PropertyType).Label()
}
