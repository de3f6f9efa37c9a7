package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

func TestSuggestionCorpus(t *testing.T) {
	corpus := SuggestionCorpus(catalog())

	assert.Equal(t, []string{"Los Angeles", "Malibu", "Pasadena", "Burbank"}, corpus[:4])
	assert.Contains(t, corpus, "Condominiums")
	assert.Contains(t, corpus, "Luxury Properties")

	withState := SuggestionCorpus([]models.Property{{City: "Malibu", State: "CA"}, {City: "malibu", State: "ca"}})
	assert.Equal(t, "Malibu, CA", withState[0])
	assert.NotContains(t, withState[1:], "malibu, ca")
}

func TestSuggest(t *testing.T) {
	corpus := []string{
		"Beverly Hills, CA", "Santa Monica, CA", "Malibu, CA", "Hollywood, CA",
		"Pasadena, CA", "Manhattan Beach, CA", "Venice, CA", "West Hollywood, CA",
	}

	assert.Equal(t, []string{"Hollywood, CA", "West Hollywood, CA"}, Suggest(corpus, "HOLLY", 6))
	assert.Len(t, Suggest(corpus, "ca", 6), 6)
	assert.Len(t, Suggest(corpus, "ca", 0), DefaultSuggestionLimit)
	assert.Equal(t, []string{"Beverly Hills, CA", "Santa Monica, CA"}, Suggest(corpus, ", ca", 2))
	assert.Empty(t, Suggest(corpus, "  ", 6))
	assert.Empty(t, Suggest(corpus, "zzz", 6))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		n    int
		want string
	}{
		{"bare", Criteria{}, 12, "12 properties found"},
		{"singular", Criteria{PropertyType: AnyType}, 1, "1 property found"},
		{"query", Criteria{Search: " malibu "}, 2, `2 properties found for "malibu"`},
		{"type", Criteria{PropertyType: "condo"}, 3, "3 properties found in Condominiums"},
		{
			"range",
			Criteria{Search: "beach", PriceMin: i64(500000), PriceMax: i64(1000000)},
			0,
			`0 properties found for "beach" in $500,000 - $1,000,000 price range`,
		},
		{"open ended", Criteria{PriceMin: i64(3000000)}, 4, "4 properties found in $3,000,000+ price range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.c, tt.n))
		})
	}
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$0", FormatUSD(0))
	assert.Equal(t, "$950", FormatUSD(950))
	assert.Equal(t, "$1,000", FormatUSD(1000))
	assert.Equal(t, "$5,500,000", FormatUSD(5500000))
	assert.Equal(t, "-$12,345", FormatUSD(-12345))
}
