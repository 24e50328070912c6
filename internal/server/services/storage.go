package services

import (
	"context"
	"fmt"
	"mime"
	"time"

	sc "github.com/dmitrijs2005/gophshare/internal/server/config"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStorage holds file contents. Clients move bytes through presigned
// URLs; the server only signs them and removes objects.
type ObjectStorage interface {
	PresignPut(ctx context.Context, key, contentType string) (string, time.Time, error)
	PresignGet(ctx context.Context, key, fileName string) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
)

// S3Storage talks to an S3-compatible backend such as MinIO.
type S3Storage struct {
	config *sc.Config
	now    func() time.Time
}

func NewS3Storage(cfg *sc.Config) *S3Storage {
	return &S3Storage{config: cfg, now: time.Now}
}

// NewStorageKey returns a unique object key under the owner's prefix.
func NewStorageKey(ownerID int64, at time.Time) string {
	return fmt.Sprintf("users/%d/%d/%02d/%02d/%v", ownerID, at.Year(), at.Month(), at.Day(), uuid.New())
}

func (s *S3Storage) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *S3Storage) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return newS3PresignClient(client), nil
}

func (s *S3Storage) PresignPut(ctx context.Context, key, contentType string) (string, time.Time, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", time.Time{}, err
	}

	bucket := s.config.S3Bucket
	in := &s3.PutObjectInput{Bucket: &bucket, Key: &key}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	expires := s.now().Add(s.config.PresignTTL)
	req, err := presignPutObject(presignClient, ctx, in, s3.WithPresignExpires(s.config.PresignTTL))
	if err != nil {
		return "", time.Time{}, err
	}
	return req.URL, expires, nil
}

func (s *S3Storage) PresignGet(ctx context.Context, key, fileName string) (string, time.Time, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", time.Time{}, err
	}

	bucket := s.config.S3Bucket
	in := &s3.GetObjectInput{Bucket: &bucket, Key: &key}
	if fileName != "" {
		in.ResponseContentDisposition = aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	}

	expires := s.now().Add(s.config.PresignTTL)
	req, err := presignGetObject(presignClient, ctx, in, s3.WithPresignExpires(s.config.PresignTTL))
	if err != nil {
		return "", time.Time{}, err
	}
	return req.URL, expires, nil
}

func (s *S3Storage) DeleteObject(ctx context.Context, key string) error {
	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}
	bucket := s.config.S3Bucket
	if _, err := deleteObject(client, ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key}); err != nil {
		return fmt.Errorf("error deleting object %s: %w", key, err)
	}
	return nil
}
