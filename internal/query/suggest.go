package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

// DefaultSuggestionLimit caps the live suggestion list.
const DefaultSuggestionLimit = 6

// extraSuggestions are curated phrases offered alongside catalog locations.
var extraSuggestions = []string{
	"Luxury Properties",
	"Oceanview Properties",
	"Mountain View Properties",
	"New Construction",
	"Investment Properties",
}

// SuggestionCorpus builds the phrase list suggestions are drawn from:
// distinct "City, ST" locations in catalog order, then type labels, then
// curated phrases.
func SuggestionCorpus(properties []models.Property) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}
	for _, p := range properties {
		city := strings.TrimSpace(p.City)
		if city == "" {
			continue
		}
		if st := strings.TrimSpace(p.State); st != "" {
			city += ", " + st
		}
		add(city)
	}
	for _, t := range models.PropertyTypes {
		add(t.Label())
	}
	for _, s := range extraSuggestions {
		add(s)
	}
	return out
}

// Suggest returns up to limit corpus entries containing q, case-insensitively.
// A blank q yields nothing. limit <= 0 falls back to DefaultSuggestionLimit.
func Suggest(corpus []string, q string, limit int) []string {
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	out := make([]string, 0, limit)
	for _, s := range corpus {
		if strings.Contains(strings.ToLower(s), needle) {
			out = append(out, s)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Describe summarises a result set, e.g.
// `3 properties found for "malibu" in Condominiums in $500,000 - $1,000,000 price range`.
func Describe(c Criteria, n int) string {
	var b strings.Builder
	noun := "properties"
	if n == 1 {
		noun = "property"
	}
	fmt.Fprintf(&b, "%d %s found", n, noun)
	if q := strings.TrimSpace(c.Search); q != "" {
		fmt.Fprintf(&b, " for %q", q)
	}
	if c.HasTypeFilter() {
		fmt.Fprintf(&b, " in %s", c.TypeLabel())
	}
	if r := priceRangeLabel(c); r != "" {
		fmt.Fprintf(&b, " in %s price range", r)
	}
	return b.String()
}

func priceRangeLabel(c Criteria) string {
	hasMin := c.PriceMin != nil && *c.PriceMin > 0
	switch {
	case c.PriceMax != nil:
		min := int64(0)
		if c.PriceMin != nil {
			min = *c.PriceMin
		}
		return FormatUSD(min) + " - " + FormatUSD(*c.PriceMax)
	case hasMin:
		return FormatUSD(*c.PriceMin) + "+"
	}
	return ""
}

// FormatUSD renders whole dollars with thousands separators, e.g. $1,250,000.
func FormatUSD(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}
