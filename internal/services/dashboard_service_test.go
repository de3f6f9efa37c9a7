package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

func TestDashboardService_Load(t *testing.T) {
	repo := NewMemoryPropertyRepository([]models.Property{
		{ID: 1, OwnerID: "u1", Views: 10},
		{ID: 2, OwnerID: "u2", Views: 99},
		{ID: 3, OwnerID: "u1", Views: 5},
	})
	favs := new(MockFavoriteService)
	favs.On("CountsForProperties", mock.Anything, []int64{1, 3}).Return(map[int64]int64{1: 4}, nil)
	favs.On("List", mock.Anything, "u1").Return([]models.Property{{ID: 2}}, nil)

	svc := NewDashboardService(NewListingService(repo, nil, nil, nil), favs)
	dash, err := svc.Load(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, dash.Listings, 2)
	assert.Equal(t, int64(4), dash.Listings[0].FavoriteCount)
	assert.Equal(t, int64(0), dash.Listings[1].FavoriteCount)
	assert.Equal(t, DashboardTotals{Listings: 2, Views: 15, Favorites: 4}, dash.Totals)
	assert.Equal(t, []int64{2}, propertyIDs(dash.Favorites))
	favs.AssertExpectations(t)
}

func TestDashboardService_Load_Error(t *testing.T) {
	favs := new(MockFavoriteService)
	favs.On("CountsForProperties", mock.Anything, mock.Anything).Return(map[int64]int64{}, nil)
	favs.On("List", mock.Anything, "u1").Return(nil, errors.New("db down"))

	svc := NewDashboardService(NewListingService(NewMemoryPropertyRepository(nil), nil, nil, nil), favs)
	_, err := svc.Load(context.Background(), "u1")
	assert.EqualError(t, err, "db down")
}
