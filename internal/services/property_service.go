package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/cache"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/config"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/query"
)

// SearchResult is one evaluated search. ResetCriteria is set when nothing
// matched, so clients can offer a one-click "clear all filters".
type SearchResult struct {
	Properties    []models.Property `json:"properties"`
	Total         int               `json:"total"`
	Description   string            `json:"description"`
	Criteria      query.Criteria    `json:"criteria"`
	ResetCriteria *query.Criteria   `json:"reset_criteria,omitempty"`
}

// IPropertyService serves catalog reads.
type IPropertyService interface {
	Defaults() query.Defaults
	Search(ctx context.Context, criteria query.Criteria) (*SearchResult, error)
	Get(ctx context.Context, id int64) (*models.Property, error)
	Featured(ctx context.Context) ([]models.Property, error)
	Suggest(ctx context.Context, q string) ([]string, error)
	// Invalidate makes every cached search stale after a catalog write.
	Invalidate(ctx context.Context) error
	FlushCache(ctx context.Context) (int, error)
}

type propertyService struct {
	repo     IPropertyRepository
	cache    cache.ISearchCache
	cfg      *config.Config
	defaults query.Defaults
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(repo IPropertyRepository, searchCache cache.ISearchCache, cfg *config.Config) IPropertyService {
	if searchCache == nil {
		searchCache = cache.NewSearchCache(nil, 0)
	}
	return &propertyService{
		repo:  repo,
		cache: searchCache,
		cfg:   cfg,
		defaults: query.Defaults{
			PriceMax: cfg.DefaultPriceMax,
			Sort:     query.ParseSortKey(cfg.DefaultSort),
		},
	}
}

func (s *propertyService) Defaults() query.Defaults { return s.defaults }

// Search fetches the active catalog and runs the query engine over it.
// Cache failures are logged and never fail the search.
func (s *propertyService) Search(ctx context.Context, criteria query.Criteria) (*SearchResult, error) {
	c := criteria.Normalize()

	// The key is fixed before the catalog is read; see ISearchCache.
	key, err := s.cache.Key(ctx, c)
	if err != nil {
		zap.L().Warn("search cache key failed", zap.Error(err))
		key = ""
	}
	if key != "" {
		var cached SearchResult
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			zap.L().Warn("search cache read failed", zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	all, err := s.repo.List(ctx, PropertyFilter{Status: models.ListingStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	matched := query.Run(all, c)

	res := &SearchResult{
		Properties:  matched,
		Total:       len(matched),
		Description: query.Describe(c, len(matched)),
		Criteria:    c,
	}
	if len(matched) == 0 {
		reset := s.defaults.Reset()
		res.ResetCriteria = &reset
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, res); err != nil {
			zap.L().Warn("search cache write failed", zap.Error(err))
		}
	}
	return res, nil
}

// Get returns a property and counts the view.
func (s *propertyService) Get(ctx context.Context, id int64) (*models.Property, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		zap.L().Warn("failed to record property view", zap.Int64("property_id", id), zap.Error(err))
	} else {
		p.Views++
	}
	return p, nil
}

func (s *propertyService) Featured(ctx context.Context) ([]models.Property, error) {
	props, err := s.repo.List(ctx, PropertyFilter{Featured: true, Status: models.ListingStatusActive, Limit: s.cfg.FeaturedLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to load featured properties: %w", err)
	}
	return props, nil
}

func (s *propertyService) Suggest(ctx context.Context, q string) ([]string, error) {
	all, err := s.repo.List(ctx, PropertyFilter{Status: models.ListingStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return query.Suggest(query.SuggestionCorpus(all), q, s.cfg.SuggestionLimit), nil
}

func (s *propertyService) Invalidate(ctx context.Context) error {
	if err := s.cache.BumpVersion(ctx); err != nil {
		return fmt.Errorf("failed to invalidate search cache: %w", err)
	}
	return nil
}

func (s *propertyService) FlushCache(ctx context.Context) (int, error) {
	n, err := s.cache.Flush(ctx)
	if err != nil {
		return n, err
	}
	zap.L().Info("search cache flushed", zap.Int("entries", n))
	return n, nil
}
