package services

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/storage"
)

// --- Mocks ---

type MockSearchCache struct {
	mock.Mock
}

func (m *MockSearchCache) Key(ctx context.Context, criteria any) (string, error) {
	args := m.Called(ctx, criteria)
	return args.String(0), args.Error(1)
}
func (m *MockSearchCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}
func (m *MockSearchCache) Set(ctx context.Context, key string, value any) error {
	return m.Called(ctx, key, value).Error(0)
}
func (m *MockSearchCache) BumpVersion(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
func (m *MockSearchCache) Flush(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, ownerID string, propertyID int64, filename, contentType string) (string, string, error) {
	args := m.Called(ctx, ownerID, propertyID, filename, contentType)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *MockS3Storage) GetObject(ctx context.Context, key string) (*storage.Object, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Object), args.Error(1)
}
func (m *MockS3Storage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}
func (m *MockS3Storage) ObjectURL(key string) string {
	return m.Called(key).String(0)
}

type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
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

// memoryInfoRepository is an in-process IPropertyInfoRepository.
type memoryInfoRepository struct {
	items   map[string]models.PropertyInfo
	upserts int
}

func newMemoryInfoRepository() *memoryInfoRepository {
	return &memoryInfoRepository{items: map[string]models.PropertyInfo{}}
}

func (r *memoryInfoRepository) FindByAddress(_ context.Context, address string) (*models.PropertyInfo, error) {
	info, ok := r.items[address]
	if !ok {
		return nil, ErrPropertyInfoNotFound
	}
	return &info, nil
}

func (r *memoryInfoRepository) Upsert(_ context.Context, info *models.PropertyInfo) error {
	r.upserts++
	if info.ID == 0 {
		info.ID = int64(len(r.items) + 1)
	}
	r.items[info.Address] = *info
	return nil
}
