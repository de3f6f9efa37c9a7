package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/queue"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/storage"
)

var (
	// ErrNotListingOwner is returned when a user touches someone else's listing.
	ErrNotListingOwner = errors.New("listing belongs to another user")
	// ErrUnsupportedImage is returned for uploads that are not images.
	ErrUnsupportedImage = errors.New("only image uploads are accepted")
	// ErrInvalidImageKey is returned when a completed upload key was not issued for the listing.
	ErrInvalidImageKey = errors.New("image key does not belong to this listing")
)

// UploadTicket is a presigned S3 upload slot.
type UploadTicket struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// IListingService handles listing submission and photos.
type IListingService interface {
	Submit(ctx context.Context, ownerID string, draft *models.ListingDraft) (*models.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error)
	RequestImageUpload(ctx context.Context, ownerID string, propertyID int64, filename, contentType string) (*UploadTicket, error)
	CompleteImageUpload(ctx context.Context, ownerID string, propertyID int64, key string) error
	AttachImage(ctx context.Context, propertyID int64, key string) error
}

type listingService struct {
	repo       IPropertyRepository
	properties IPropertyService
	storage    storage.IS3Storage
	taskClient queue.IAsynqClient
	now        func() time.Time
}

// NewListingService creates a new ListingService. storage and taskClient may
// be nil when photo uploads are not configured.
func NewListingService(repo IPropertyRepository, properties IPropertyService, store storage.IS3Storage, taskClient queue.IAsynqClient) IListingService {
	return &listingService{
		repo:       repo,
		properties: properties,
		storage:    store,
		taskClient: taskClient,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates the draft and stores it as an active listing.
func (s *listingService) Submit(ctx context.Context, ownerID string, draft *models.ListingDraft) (*models.Property, error) {
	p, err := draft.ToProperty(ownerID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	zap.L().Info("listing submitted", zap.Int64("property_id", p.ID), zap.String("owner_id", ownerID))
	return p, nil
}

func (s *listingService) ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error) {
	return s.repo.List(ctx, PropertyFilter{OwnerID: ownerID})
}

func (s *listingService) ownedProperty(ctx context.Context, ownerID string, propertyID int64) (*models.Property, error) {
	p, err := s.repo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, ErrNotListingOwner
	}
	return p, nil
}

func (s *listingService) RequestImageUpload(ctx context.Context, ownerID string, propertyID int64, filename, contentType string) (*UploadTicket, error) {
	if s.storage == nil {
		return nil, errors.New("image storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedImage
	}
	if _, err := s.ownedProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}
	url, key, err := s.storage.GeneratePresignedPutURL(ctx, ownerID, propertyID, filename, contentType)
	if err != nil {
		return nil, err
	}
	return &UploadTicket{URL: url, Key: key}, nil
}

// CompleteImageUpload queues the uploaded object for processing. The image
// is attached to the listing once the worker has normalised it.
func (s *listingService) CompleteImageUpload(ctx context.Context, ownerID string, propertyID int64, key string) error {
	if s.taskClient == nil {
		return errors.New("task queue is not configured")
	}
	if _, err := s.ownedProperty(ctx, ownerID, propertyID); err != nil {
		return err
	}
	prefix := "listings/" + ownerID + "/" + strconv.FormatInt(propertyID, 10) + "/"
	if !strings.HasPrefix(key, prefix) || strings.Contains(key, "..") {
		return ErrInvalidImageKey
	}
	task, err := queue.NewImageProcessTask(queue.ImageTaskPayload{S3Key: key, PropertyID: propertyID})
	if err != nil {
		return err
	}
	if _, err := s.taskClient.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue image processing for %s: %w", key, err)
	}
	return nil
}

func (s *listingService) AttachImage(ctx context.Context, propertyID int64, key string) error {
	if err := s.repo.AppendImage(ctx, propertyID, key); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *listingService) invalidate(ctx context.Context) {
	if s.properties == nil {
		return
	}
	if err := s.properties.Invalidate(ctx); err != nil {
		zap.L().Warn("search cache invalidation failed", zap.Error(err))
	}
}
