package services

import (
	"context"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/query"
)

// ComparisonView is the side-by-side table plus what can still be added.
type ComparisonView struct {
	query.Comparison
	// Candidates are the user's favorites not in the comparison.
	Candidates []models.Property `json:"candidates"`
	// Skipped lists requested ids that are not favorites, repeat an
	// earlier id, or arrived after the set was full.
	Skipped []int64 `json:"skipped"`
	Full    bool    `json:"full"`
}

// IComparisonService compares properties drawn from a user's favorites.
type IComparisonService interface {
	Compare(ctx context.Context, userID string, ids []int64) (*ComparisonView, error)
}

type comparisonService struct {
	favorites IFavoriteService
}

// NewComparisonService creates a new ComparisonService.
func NewComparisonService(favorites IFavoriteService) IComparisonService {
	return &comparisonService{favorites: favorites}
}

// Compare adds ids to a fresh comparison set in request order.
func (s *comparisonService) Compare(ctx context.Context, userID string, ids []int64) (*ComparisonView, error) {
	favs, err := s.favorites.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Property, len(favs))
	for _, p := range favs {
		byID[p.ID] = p
	}

	set := query.NewComparisonSet()
	skipped := []int64{}
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || !set.Add(p) {
			skipped = append(skipped, id)
		}
	}

	candidates := []models.Property{}
	for _, p := range favs {
		if !set.Contains(p.ID) {
			candidates = append(candidates, p)
		}
	}
	return &ComparisonView{
		Comparison: query.Compare(set),
		Candidates: candidates,
		Skipped:    skipped,
		Full:       set.Full(),
	}, nil
}
