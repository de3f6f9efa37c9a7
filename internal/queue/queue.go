// Package queue defines the background task types and how they are enqueued.
// Handlers live in package tasks.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Task types.
const (
	TypeImageProcess   = "image:process"
	TypePropertyEnrich = "property:enrich"
)

// Queue names and their asynq priorities.
const (
	QueueDefault = "default"
	QueueImages  = "images"
)

// IAsynqClient is the subset of *asynq.Client the services use.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewClient returns an asynq client sharing the Redis connection settings of rdb.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(RedisOpt(rdb))
}

// RedisOpt converts a go-redis client's options for asynq.
func RedisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// ImageTaskPayload asks a worker to normalise an uploaded listing photo.
type ImageTaskPayload struct {
	S3Key      string `json:"s3_key"`
	PropertyID int64  `json:"property_id"`
}

// EnrichTaskPayload asks a worker to fill the property info record for an address.
type EnrichTaskPayload struct {
	Address string `json:"address"`
}

func NewImageProcessTask(p ImageTaskPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image task: %w", err)
	}
	return asynq.NewTask(TypeImageProcess, b, asynq.Queue(QueueImages), asynq.MaxRetry(5)), nil
}

// NewPropertyEnrichTask deduplicates on address for a minute so repeated
// lookups while a fetch is pending do not pile up.
func NewPropertyEnrichTask(p EnrichTaskPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode enrich task: %w", err)
	}
	return asynq.NewTask(TypePropertyEnrich, b,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Unique(time.Minute),
	), nil
}
