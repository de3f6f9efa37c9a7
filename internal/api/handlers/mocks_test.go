package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/query"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
)

// --- Mocks ---

type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) Defaults() query.Defaults {
	return query.Defaults{Sort: query.SortPriceAsc}
}

func (m *MockPropertyService) Search(ctx context.Context, criteria query.Criteria) (*services.SearchResult, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SearchResult), args.Error(1)
}

func (m *MockPropertyService) Get(ctx context.Context, id int64) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) Featured(ctx context.Context) ([]models.Property, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyService) Suggest(ctx context.Context, q string) ([]string, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPropertyService) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPropertyService) FlushCache(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, reg services.Registration) (*services.Session, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*services.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockUserService) FindByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockFavoriteService struct {
	mock.Mock
}

func (m *MockFavoriteService) List(ctx context.Context, userID string) ([]models.Property, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockFavoriteService) Add(ctx context.Context, userID string, propertyID int64) error {
	return m.Called(ctx, userID, propertyID).Error(0)
}

func (m *MockFavoriteService) Remove(ctx context.Context, userID string, propertyID int64) error {
	return m.Called(ctx, userID, propertyID).Error(0)
}

func (m *MockFavoriteService) CountForProperty(ctx context.Context, propertyID int64) (int64, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFavoriteService) CountsForProperties(ctx context.Context, propertyIDs []int64) (map[int64]int64, error) {
	args := m.Called(ctx, propertyIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

type MockComparisonService struct {
	mock.Mock
}

func (m *MockComparisonService) Compare(ctx context.Context, userID string, ids []int64) (*services.ComparisonView, error) {
	args := m.Called(ctx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ComparisonView), args.Error(1)
}

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Submit(ctx context.Context, ownerID string, draft *models.ListingDraft) (*models.Property, error) {
	args := m.Called(ctx, ownerID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockListingService) ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockListingService) RequestImageUpload(ctx context.Context, ownerID string, propertyID int64, filename, contentType string) (*services.UploadTicket, error) {
	args := m.Called(ctx, ownerID, propertyID, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UploadTicket), args.Error(1)
}

func (m *MockListingService) CompleteImageUpload(ctx context.Context, ownerID string, propertyID int64, key string) error {
	return m.Called(ctx, ownerID, propertyID, key).Error(0)
}

func (m *MockListingService) AttachImage(ctx context.Context, propertyID int64, key string) error {
	return m.Called(ctx, propertyID, key).Error(0)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Load(ctx context.Context, userID string) (*services.Dashboard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Dashboard), args.Error(1)
}

type MockPropertyInfoService struct {
	mock.Mock
}

func (m *MockPropertyInfoService) Lookup(ctx context.Context, address string) (*models.PropertyInfo, *models.PropertyInfoStatus, error) {
	args := m.Called(ctx, address)
	var info *models.PropertyInfo
	if v := args.Get(0); v != nil {
		info = v.(*models.PropertyInfo)
	}
	var status *models.PropertyInfoStatus
	if v := args.Get(1); v != nil {
		status = v.(*models.PropertyInfoStatus)
	}
	return info, status, args.Error(2)
}

func (m *MockPropertyInfoService) Enrich(ctx context.Context, address string) (*models.PropertyInfo, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyInfo), args.Error(1)
}
