package db

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Operation inserts a document. Operations that allocate keys must pick a
// fresh key on every call, or a retry collides again.
type Operation func() error

// IsDuplicateKeyError reports whether err is a unique index violation.
type IsDuplicateKeyError func(err error) bool

const (
	DefaultMaxRetries = 3
	retryBackoffStep  = 50 * time.Millisecond
)

// Try runs op with DefaultMaxRetries against Mongo duplicate key errors.
func Try(op Operation) error {
	return WithRetries(op, DefaultMaxRetries, IsMongoDuplicateKeyError)
}

// WithRetries runs op once plus up to maxRetries more times while it keeps
// failing with a duplicate key error. Any other error is returned at once.
func WithRetries(op Operation, maxRetries int, isDuplicateKey IsDuplicateKeyError) error {
	err := op()
	for attempt := 1; err != nil && attempt <= maxRetries && isDuplicateKey(err); attempt++ {
		zap.L().Debug("key collision, allocating again", zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(time.Duration(attempt) * retryBackoffStep)
		err = op()
	}
	return err
}

// IsMongoDuplicateKeyError matches duplicate key failures from single and
// bulk writes, including wrapped ones.
func IsMongoDuplicateKeyError(err error) bool {
	return err != nil && mongo.IsDuplicateKeyError(err)
}
