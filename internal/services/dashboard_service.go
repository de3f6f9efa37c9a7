package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

// DashboardListing is one of the user's own listings with its engagement.
type DashboardListing struct {
	models.Property
	FavoriteCount int64 `json:"favorite_count"`
}

// DashboardTotals sums engagement across the user's listings.
type DashboardTotals struct {
	Listings  int   `json:"listings"`
	Views     int64 `json:"views"`
	Favorites int64 `json:"favorites"`
}

// Dashboard is the signed-in user's overview page.
type Dashboard struct {
	Listings  []DashboardListing `json:"listings"`
	Favorites []models.Property  `json:"favorites"`
	Totals    DashboardTotals    `json:"totals"`
}

// IDashboardService builds the user dashboard.
type IDashboardService interface {
	Load(ctx context.Context, userID string) (*Dashboard, error)
}

type dashboardService struct {
	listings  IListingService
	favorites IFavoriteService
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(listings IListingService, favorites IFavoriteService) IDashboardService {
	return &dashboardService{listings: listings, favorites: favorites}
}

// Load fetches own listings and saved favorites concurrently.
func (s *dashboardService) Load(ctx context.Context, userID string) (*Dashboard, error) {
	var (
		own    []DashboardListing
		saved  []models.Property
		totals DashboardTotals
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		props, err := s.listings.ListByOwner(gctx, userID)
		if err != nil {
			return err
		}
		ids := make([]int64, len(props))
		for i, p := range props {
			ids[i] = p.ID
		}
		counts, err := s.favorites.CountsForProperties(gctx, ids)
		if err != nil {
			return err
		}
		own = make([]DashboardListing, len(props))
		for i, p := range props {
			own[i] = DashboardListing{Property: p, FavoriteCount: counts[p.ID]}
			totals.Views += int64(p.Views)
			totals.Favorites += counts[p.ID]
		}
		totals.Listings = len(props)
		return nil
	})

	g.Go(func() error {
		favs, err := s.favorites.List(gctx, userID)
		if err != nil {
			return err
		}
		saved = favs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Dashboard{Listings: own, Favorites: saved, Totals: totals}, nil
}
