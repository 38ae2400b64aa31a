// Package storage hands out presigned S3 URLs for profile images so clients
// upload straight to the bucket. Only the resulting URL is stored on the user.
package storage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/oggyb/matchbox/internal/config"
	svcErr "github.com/oggyb/matchbox/internal/errors"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Upload is a presigned upload slot for one image.
type Upload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	ViewURL   string    `json:"viewUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ImageStore struct {
	bucket    string
	ttl       time.Duration
	presigner *s3.PresignClient
}

// NewImageStore returns nil when no bucket is configured; callers treat a nil
// store as "uploads disabled".
func NewImageStore(cfg *config.Config) *ImageStore {
	if cfg.Storage.Bucket == "" {
		return nil
	}

	awsCfg := aws.Config{
		Region: cfg.Storage.Region,
	}
	if cfg.Storage.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKeyID, cfg.Storage.SecretAccessKey, "")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := cfg.Storage.PresignTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ImageStore{
		bucket:    cfg.Storage.Bucket,
		ttl:       ttl,
		presigner: s3.NewPresignClient(client),
	}
}

// PresignUpload reserves a fresh key under profile-images/<userID>/ and
// returns a PUT URL plus a GET URL for the same object.
func (s *ImageStore) PresignUpload(ctx context.Context, userID, contentType string) (*Upload, error) {
	if s == nil {
		return nil, svcErr.External("image uploads are not configured", nil)
	}
	if userID == "" {
		return nil, svcErr.Validation("userId is required")
	}
	ext, ok := extensions[contentType]
	if !ok {
		return nil, svcErr.Validation("unsupported content type %q", contentType)
	}

	key := "profile-images/" + userID + "/" + uuid.NewString() + ext
	put, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, err
	}

	view, err := s.PresignView(ctx, key)
	if err != nil {
		return nil, err
	}

	return &Upload{
		Key:       key,
		UploadURL: put.URL,
		ViewURL:   view,
		ExpiresAt: time.Now().Add(s.ttl),
	}, nil
}

// PresignView returns a time-limited GET URL for key.
func (s *ImageStore) PresignView(ctx context.Context, key string) (string, error) {
	if s == nil {
		return "", svcErr.External("image uploads are not configured", nil)
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
