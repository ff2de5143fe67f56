package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/streambox/backend/internal/config"
)

// PresignExpiry bounds how long a presigned upload URL stays valid.
const PresignExpiry = 15 * time.Minute

// PresignedUpload is the S3 counterpart of an upload grant: a time-boxed URL
// the client PUTs the media bytes to, plus the object key to report back.
type PresignedUpload struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// S3Gateway implements Gateway against an S3-compatible object store. Video
// public ids map directly to object keys.
type S3Gateway struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	baseURL string
}

// NewS3Gateway configures a client targeting the provided object store.
func NewS3Gateway(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Gateway, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 gateway: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if strings.TrimSpace(cfg.Endpoint) != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Gateway{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Destroy removes the object for the provided public id from the bucket.
// S3 DeleteObject is idempotent, so a missing object succeeds.
func (g *S3Gateway) Destroy(ctx context.Context, publicID string) error {
	key := strings.TrimLeft(publicID, "/")
	if key == "" {
		return fmt.Errorf("s3 gateway: empty key")
	}

	_, err := g.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}

	return nil
}

// PresignPut issues a presigned PUT URL for a fresh object key inside the
// caller's folder.
func (g *S3Gateway) PresignPut(ctx context.Context, ownerEmail string) (PresignedUpload, error) {
	key := fmt.Sprintf("%s/%s", UploadFolder(ownerEmail), uuid.NewString())

	req, err := g.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("presign put %s: %w", key, err)
	}

	return PresignedUpload{
		URL:       req.URL,
		Key:       key,
		ExpiresAt: time.Now().UTC().Add(PresignExpiry),
	}, nil
}

// PublicURL maps an object key to its public address when a base URL is
// configured.
func (g *S3Gateway) PublicURL(key string) string {
	if g.baseURL == "" {
		return key
	}
	return fmt.Sprintf("%s/%s", g.baseURL, strings.TrimLeft(key, "/"))
}

var _ Gateway = (*S3Gateway)(nil)
