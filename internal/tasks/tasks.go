package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // registers the PNG decoder for image.Decode

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/config"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/queue"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/services"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/storage"
)

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg                 *config.Config
	storageService      storage.IS3Storage
	listingService      services.IListingService
	propertyInfoService services.IPropertyInfoService
}

// NewTaskProcessor wires handler dependencies. propertyInfoService may be
// nil when no property-info database is configured.
func NewTaskProcessor(
	cfg *config.Config,
	storageService storage.IS3Storage,
	listingService services.IListingService,
	propertyInfoService services.IPropertyInfoService,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:                 cfg,
		storageService:      storageService,
		listingService:      listingService,
		propertyInfoService: propertyInfoService,
	}
}

// SetupServer configures an Asynq server and the handler mux for it. The
// caller runs the server so it can shut it down with the rest of the process.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		queue.RedisOpt(rdb),
		asynq.Config{
			Queues: map[string]int{
				queue.QueueImages:  5,
				queue.QueueDefault: 3,
			},
			Logger: zap.S(),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				zap.L().Error("task failed",
					zap.String("type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err))
			}),
		},
	)

	mux := asynq.NewServeMux()
	if processor.storageService != nil {
		mux.HandleFunc(queue.TypeImageProcess, processor.HandleImageProcessTask)
	} else {
		zap.L().Warn("S3 is not configured, image tasks will not be processed")
	}
	if processor.propertyInfoService != nil {
		mux.HandleFunc(queue.TypePropertyEnrich, processor.HandlePropertyEnrichTask)
	} else {
		zap.L().Warn("DATABASE_URL is not set, enrichment tasks will not be processed")
	}
	return srv, mux
}

// --- Task Handlers ---

// HandleImageProcessTask normalises an uploaded listing photo: oversized
// images are scaled down to IMAGE_MAX_DIMENSION and re-encoded as JPEG in
// place, then the key is attached to the listing.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.S3Key == "" || payload.PropertyID <= 0 {
		return fmt.Errorf("incomplete image task payload: %w", asynq.SkipRetry)
	}
	log := zap.L().With(zap.String("s3_key", payload.S3Key), zap.Int64("property_id", payload.PropertyID))

	obj, err := p.storageService.GetObject(ctx, payload.S3Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			log.Warn("uploaded object not found, upload likely failed")
			return fmt.Errorf("s3 object not found: %w", asynq.SkipRetry)
		}
		return fmt.Errorf("failed to download image from S3: %w", err)
	}

	maxSizeBytes := int64(p.cfg.ImageMaxSizeMB) * 1024 * 1024
	if int64(len(obj.Data)) > maxSizeBytes {
		log.Warn("image exceeds max size", zap.Int("bytes", len(obj.Data)), zap.Int64("max_bytes", maxSizeBytes))
		return fmt.Errorf("image exceeds max size: %w", asynq.SkipRetry)
	}

	img, format, err := image.Decode(bytes.NewReader(obj.Data))
	if err != nil {
		log.Warn("image could not be decoded", zap.Error(err))
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}

	maxDim := uint(p.cfg.ImageMaxDimension)
	if uint(img.Bounds().Dx()) > maxDim || uint(img.Bounds().Dy()) > maxDim {
		resized := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
			return fmt.Errorf("failed to re-encode resized image: %w", err)
		}
		if int64(buf.Len()) > maxSizeBytes {
			return fmt.Errorf("resized image still exceeds max size: %w", asynq.SkipRetry)
		}
		if err := p.storageService.PutObject(ctx, payload.S3Key, buf.Bytes(), "image/jpeg"); err != nil {
			return err
		}
		log.Info("resized image",
			zap.String("format", format),
			zap.Int("width", resized.Bounds().Dx()),
			zap.Int("height", resized.Bounds().Dy()))
	}

	if err := p.listingService.AttachImage(ctx, payload.PropertyID, payload.S3Key); err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			return fmt.Errorf("listing %d no longer exists: %w", payload.PropertyID, asynq.SkipRetry)
		}
		return err
	}
	log.Info("image attached to listing")
	return nil
}

// HandlePropertyEnrichTask fills the property info record for an address.
func (p *TaskProcessor) HandlePropertyEnrichTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.EnrichTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal enrich task payload: %v: %w", err, asynq.SkipRetry)
	}
	if _, err := p.propertyInfoService.Enrich(ctx, payload.Address); err != nil {
		if errors.Is(err, services.ErrNoSourceData) {
			zap.L().Info("no source data for address", zap.String("address", payload.Address))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}
