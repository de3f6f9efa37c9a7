package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

func TestComparisonSet_Cap(t *testing.T) {
	var s ComparisonSet
	for id := int64(1); id <= 5; id++ {
		s.Add(models.Property{ID: id})
	}
	assert.Equal(t, 4, s.Len())
	assert.True(t, s.Full())
	assert.False(t, s.Contains(5))
	assert.Equal(t, []int64{1, 2, 3, 4}, s.IDs())
}

func TestComparisonSet_NoDuplicates(t *testing.T) {
	var s ComparisonSet
	assert.True(t, s.Add(models.Property{ID: 7}))
	assert.False(t, s.Add(models.Property{ID: 7}))
	assert.Equal(t, 1, s.Len())
}

func TestComparisonSet_RemoveAndClear(t *testing.T) {
	s := NewComparisonSet(models.Property{ID: 1}, models.Property{ID: 2}, models.Property{ID: 3})

	assert.False(t, s.Remove(42), "absent id is a no-op")
	assert.Equal(t, 3, s.Len())

	assert.True(t, s.Remove(2))
	assert.Equal(t, []int64{1, 3}, s.IDs())

	assert.True(t, s.Add(models.Property{ID: 9}))
	assert.Equal(t, []int64{1, 3, 9}, s.IDs())

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Items())
}

func TestComparisonSet_ItemsIsACopy(t *testing.T) {
	s := NewComparisonSet(models.Property{ID: 1, Title: "a"})
	items := s.Items()
	items[0].Title = "b"
	assert.Equal(t, "a", s.Items()[0].Title)
}

func TestCompare(t *testing.T) {
	rent := func(n int64) *int64 { return &n }
	s := NewComparisonSet(
		models.Property{ID: 1, Price: 2850000, Sqft: 3200, YearBuilt: 2018, RentEstimate: rent(15000), HOAFee: rent(0), PropertyTax: rent(35625)},
		models.Property{ID: 2, Price: 1250000, Sqft: 2800, YearBuilt: 1995, RentEstimate: rent(6500)},
		models.Property{ID: 3, Price: 899000, Sqft: 1450, YearBuilt: 2020, RentEstimate: rent(4200), HOAFee: rent(350), PropertyTax: rent(11238)},
	)
	cmpTable := Compare(s)
	require.Len(t, cmpTable.Rows, 3)

	assert.Equal(t, int64(891), cmpTable.Rows[0].PricePerSqft)
	assert.InDelta(t, 0.0632, cmpTable.Rows[0].GrossYield, 0.0001)
	assert.Equal(t, int64(2969), cmpTable.Rows[0].MonthlyCost)
	assert.Equal(t, int64(350+937), cmpTable.Rows[2].MonthlyCost)

	assert.Equal(t, Highlights{
		LowestPrice:        3,
		LowestPricePerSqft: 2,
		LargestSqft:        1,
		NewestBuild:        3,
		HighestYield:       1,
	}, cmpTable.Highlights)
}

func TestCompare_Empty(t *testing.T) {
	out := Compare(&ComparisonSet{})
	assert.Empty(t, out.Rows)
	assert.Equal(t, Highlights{}, out.Highlights)
}
