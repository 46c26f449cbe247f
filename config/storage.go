package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client        *s3.Client
	BucketName    string
	Region        string
	PublicBaseURL string
}

// NewS3Config initializes the S3 client from cfg. Credentials come from the
// default AWS chain. A custom endpoint (MinIO, LocalStack) switches to
// path-style addressing.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME is not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Config{
		Client:        client,
		BucketName:    cfg.S3Bucket,
		Region:        cfg.S3Region,
		PublicBaseURL: publicBaseURL(cfg),
	}, nil
}

func publicBaseURL(cfg *Config) string {
	switch {
	case cfg.S3PublicBaseURL != "":
		return cfg.S3PublicBaseURL
	case cfg.S3Endpoint != "":
		return fmt.Sprintf("%s/%s", cfg.S3Endpoint, cfg.S3Bucket)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
}

// PublicURL is the address an uploaded object is served from.
func (s *S3Config) PublicURL(objectKey string) string {
	return s.PublicBaseURL + "/" + (&url.URL{Path: objectKey}).EscapedPath()
}

// GeneratePresignedURL generates a presigned URL for the given object key with the specified expiration time
func (s *S3Config) GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.Client)
	presignedURL, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectKey, err)
	}
	return presignedURL.URL, nil
}
