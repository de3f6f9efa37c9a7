package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/config"
)

// ErrObjectNotFound is returned when the requested key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Object is a downloaded blob.
type Object struct {
	Data        []byte
	ContentType string
}

// IS3Storage defines the interface for S3 operations.
type IS3Storage interface {
	GeneratePresignedPutURL(ctx context.Context, ownerID string, propertyID int64, filename, contentType string) (url string, key string, err error)
	GetObject(ctx context.Context, key string) (*Object, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	ObjectURL(key string) string
}

// s3Storage implements IS3Storage.
type s3Storage struct {
	cfg           *config.Config
	s3Client      *s3.Client
	presignClient *s3.PresignClient
}

// NewS3Storage creates a new S3 storage service.
func NewS3Storage(cfg *config.Config) (IS3Storage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)
	return &s3Storage{
		cfg:           cfg,
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
	}, nil
}

// ObjectKey builds listings/<owner>/<property>/<uuid>_<name>. The filename
// is reduced to its base name with spaces replaced.
func ObjectKey(ownerID string, propertyID int64, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("listings/%s/%d/%s_%s", ownerID, propertyID, uuid.NewString(), name)
}

// GeneratePresignedPutURL creates a pre-signed URL for uploading a listing photo.
// It returns the URL and the generated S3 object key.
func (s *s3Storage) GeneratePresignedPutURL(ctx context.Context, ownerID string, propertyID int64, filename, contentType string) (string, string, error) {
	objectKey := ObjectKey(ownerID, propertyID, filename)

	presignParams := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}

	presignedReq, err := s.presignClient.PresignPutObject(ctx, presignParams, s3.WithPresignExpires(s.cfg.UploadURLTTL))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate presigned PUT URL for key %s: %w", objectKey, err)
	}

	zap.L().Debug("generated presigned upload URL", zap.String("key", objectKey))
	return presignedReq.URL, objectKey, nil
}

func (s *s3Storage) GetObject(ctx context.Context, key string) (*Object, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.AwsS3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return &Object{Data: data, ContentType: aws.ToString(out.ContentType)}, nil
}

func (s *s3Storage) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// ObjectURL is the public URL for key under IMAGE_BASE_S3_URL.
func (s *s3Storage) ObjectURL(key string) string {
	if s.cfg.ImageBaseS3URL == "" {
		return key
	}
	return strings.TrimRight(s.cfg.ImageBaseS3URL, "/") + "/" + key
}
