package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/cache"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/config"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/query"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/seed"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() *config.Config {
	return &config.Config{
		FeaturedLimit:   3,
		SuggestionLimit: query.DefaultSuggestionLimit,
	}
}

func seedRepo(t *testing.T) IPropertyRepository {
	t.Helper()
	props, err := seed.Properties()
	require.NoError(t, err)
	return NewMemoryPropertyRepository(props)
}

func propertyIDs(ps []models.Property) []int64 {
	out := make([]int64, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func i64(v int64) *int64 { return &v }

func TestPropertyService_Search(t *testing.T) {
	svc := NewPropertyService(seedRepo(t), cache.NewSearchCache(nil, 0), testConfig())
	ctx := context.Background()

	res, err := svc.Search(ctx, query.Criteria{PropertyType: "condo"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 8, 12}, propertyIDs(res.Properties))
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, "3 properties found in Condominiums", res.Description)
	assert.Nil(t, res.ResetCriteria)

	res, err = svc.Search(ctx, query.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 13, res.Total)
	assert.Equal(t, query.AnyType, res.Criteria.PropertyType)

	res, err = svc.Search(ctx, query.Criteria{Search: "  malibu ", Sort: "price-desc"})
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 5}, propertyIDs(res.Properties))
	assert.Equal(t, "malibu", res.Criteria.Search)
	assert.Equal(t, query.SortPriceDesc, res.Criteria.Sort)
}

func TestPropertyService_Search_NoMatchOffersReset(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultPriceMax = 2_000_000
	svc := NewPropertyService(seedRepo(t), nil, cfg)

	res, err := svc.Search(context.Background(), query.Criteria{PriceMin: i64(10_000_000)})
	require.NoError(t, err)
	assert.Empty(t, res.Properties)
	assert.Equal(t, 0, res.Total)
	require.NotNil(t, res.ResetCriteria)
	assert.Equal(t, query.AnyType, res.ResetCriteria.PropertyType)
	require.NotNil(t, res.ResetCriteria.PriceMax)
	assert.Equal(t, int64(2_000_000), *res.ResetCriteria.PriceMax)
}

func TestPropertyService_Search_SkipsInactive(t *testing.T) {
	repo := seedRepo(t)
	ctx := context.Background()
	sold, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	sold.Status = models.ListingStatusSold
	require.NoError(t, repo.Upsert(ctx, sold))

	svc := NewPropertyService(repo, nil, testConfig())
	res, err := svc.Search(ctx, query.Criteria{PropertyType: "condo"})
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 12}, propertyIDs(res.Properties))
}

func TestPropertyService_Search_CacheHit(t *testing.T) {
	mc := new(MockSearchCache)
	cached := SearchResult{Properties: []models.Property{{ID: 99}}, Total: 1, Description: "1 property found"}
	mc.On("Key", mock.Anything, mock.Anything).Return("search:v0:hit", nil)
	mc.On("Get", mock.Anything, "search:v0:hit", mock.AnythingOfType("*services.SearchResult")).
		Run(func(args mock.Arguments) { *args.Get(2).(*SearchResult) = cached }).
		Return(true, nil)

	svc := NewPropertyService(NewMemoryPropertyRepository(nil), mc, testConfig())
	res, err := svc.Search(context.Background(), query.Criteria{Search: "anything"})
	require.NoError(t, err)
	assert.Equal(t, []int64{99}, propertyIDs(res.Properties))
	mc.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestPropertyService_Search_CacheFailuresAreIgnored(t *testing.T) {
	mc := new(MockSearchCache)
	mc.On("Key", mock.Anything, mock.Anything).Return("search:v0:land", nil)
	mc.On("Get", mock.Anything, "search:v0:land", mock.Anything).Return(false, errors.New("redis down"))
	mc.On("Set", mock.Anything, "search:v0:land", mock.Anything).Return(errors.New("redis down"))

	svc := NewPropertyService(seedRepo(t), mc, testConfig())
	res, err := svc.Search(context.Background(), query.Criteria{PropertyType: "land"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	mc.AssertExpectations(t)

	unkeyed := new(MockSearchCache)
	unkeyed.On("Key", mock.Anything, mock.Anything).Return("", errors.New("redis down"))
	svc = NewPropertyService(seedRepo(t), unkeyed, testConfig())
	_, err = svc.Search(context.Background(), query.Criteria{})
	require.NoError(t, err)
	unkeyed.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	unkeyed.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

// listHookRepo runs onList before delegating, to interleave writes with a
// search in progress.
type listHookRepo struct {
	IPropertyRepository
	onList func()
}

func (r *listHookRepo) List(ctx context.Context, filter PropertyFilter) ([]models.Property, error) {
	if r.onList != nil {
		r.onList()
	}
	return r.IPropertyRepository.List(ctx, filter)
}

func TestPropertyService_Search_InvalidatedMidSearchKeepsOldKey(t *testing.T) {
	ctx := context.Background()
	mc := new(MockSearchCache)
	mc.On("Key", mock.Anything, mock.Anything).Return("search:v0:condo", nil).Once()
	mc.On("Get", mock.Anything, "search:v0:condo", mock.Anything).Return(false, nil)
	mc.On("BumpVersion", mock.Anything).Return(nil).Once()
	mc.On("Set", mock.Anything, "search:v0:condo", mock.Anything).Return(nil).Once()

	repo := &listHookRepo{IPropertyRepository: seedRepo(t)}
	svc := NewPropertyService(repo, mc, testConfig())
	repo.onList = func() { require.NoError(t, svc.Invalidate(ctx)) }

	_, err := svc.Search(ctx, query.Criteria{PropertyType: "condo"})
	require.NoError(t, err)
	mc.AssertExpectations(t)
	mc.AssertNumberOfCalls(t, "Key", 1)
}

func TestPropertyService_GetCountsViews(t *testing.T) {
	repo := seedRepo(t)
	svc := NewPropertyService(repo, nil, testConfig())
	ctx := context.Background()

	p, err := svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Views)
	p, err = svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Views)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestPropertyService_FeaturedAndSuggest(t *testing.T) {
	svc := NewPropertyService(seedRepo(t), nil, testConfig())
	ctx := context.Background()

	featured, err := svc.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 5}, propertyIDs(featured))

	got, err := svc.Suggest(ctx, "mal")
	require.NoError(t, err)
	assert.Equal(t, []string{"Malibu, CA"}, got)

	got, err = svc.Suggest(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPropertyService_InvalidateAndFlush(t *testing.T) {
	mc := new(MockSearchCache)
	mc.On("BumpVersion", mock.Anything).Return(nil).Once()
	mc.On("Flush", mock.Anything).Return(7, nil).Once()
	svc := NewPropertyService(NewMemoryPropertyRepository(nil), mc, testConfig())
	ctx := context.Background()

	require.NoError(t, svc.Invalidate(ctx))
	n, err := svc.FlushCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	mc.AssertExpectations(t)

	failing := new(MockSearchCache)
	failing.On("BumpVersion", mock.Anything).Return(errors.New("boom"))
	svc = NewPropertyService(NewMemoryPropertyRepository(nil), failing, testConfig())
	assert.Error(t, svc.Invalidate(ctx))
}
